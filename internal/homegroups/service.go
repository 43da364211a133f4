package homegroups

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
)

// Service describes home group management capabilities.
type Service interface {
	Create(ctx context.Context, input GroupInput) (*domain.HomeGroup, error)
	Update(ctx context.Context, id uuid.UUID, input GroupInput) (*domain.HomeGroup, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.HomeGroup, error)
	List(ctx context.Context, churchID uuid.UUID, req domain.PageRequest) (domain.Page[*domain.HomeGroup], error)
}

// GroupInput carries the editable home group attributes.
type GroupInput struct {
	ChurchID    uuid.UUID
	Name        string
	Description string
	LeaderID    *uuid.UUID
	StateID     int64
	CityID      int64
	Latitude    *float64
	Longitude   *float64
}

// PersonLookup resolves the group leader.
type PersonLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Person, error)
}

// GeoLookup resolves catalog entries.
type GeoLookup interface {
	GetState(ctx context.Context, id int64) (*domain.State, error)
	GetCity(ctx context.Context, id int64) (*domain.City, error)
}

var (
	ErrGroupRepositoryRequired = errors.New("homegroups: repository required")
	ErrGroupChurchRequired     = errors.New("homegroups: church is required")
	ErrGroupNameRequired       = errors.New("homegroups: name is required")
	ErrGroupNotFound           = errors.New("homegroups: group not found")
	ErrLeaderNotFound          = errors.New("homegroups: leader not found")
	ErrCoordinatesIncomplete   = errors.New("homegroups: latitude and longitude must be set together")
	ErrCityNotInState          = errors.New("homegroups: city does not belong to state")
)

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides group ID generation.
func WithIDGenerator(fn func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if fn != nil {
			s.id = fn
		}
	}
}

// WithPersonLookup enables leader resolution.
func WithPersonLookup(lookup PersonLookup) ServiceOption {
	return func(s *service) {
		s.people = lookup
	}
}

// WithGeoLookup enables state and city resolution.
func WithGeoLookup(lookup GeoLookup) ServiceOption {
	return func(s *service) {
		s.geo = lookup
	}
}

type service struct {
	repo   GroupRepository
	people PersonLookup
	geo    GeoLookup
	id     func() uuid.UUID
	now    func() time.Time
}

// NewService constructs a home group service instance.
func NewService(repo GroupRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrGroupRepositoryRequired)
	}
	s := &service{repo: repo, id: uuid.New, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, input GroupInput) (*domain.HomeGroup, error) {
	if input.ChurchID == uuid.Nil {
		return nil, ErrGroupChurchRequired
	}
	now := s.now().UTC()
	record := &domain.HomeGroup{ID: s.id(), ChurchID: input.ChurchID, CreatedAt: now, UpdatedAt: now}
	if err := s.apply(ctx, record, input); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, record)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input GroupInput) (*domain.HomeGroup, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	record := cloneGroup(existing)
	if err := s.apply(ctx, record, input); err != nil {
		return nil, err
	}
	record.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*domain.HomeGroup, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return group, nil
}

func (s *service) List(ctx context.Context, churchID uuid.UUID, req domain.PageRequest) (domain.Page[*domain.HomeGroup], error) {
	if churchID == uuid.Nil {
		return domain.Page[*domain.HomeGroup]{}, ErrGroupChurchRequired
	}
	return s.repo.ListByChurch(ctx, churchID, req)
}

func (s *service) apply(ctx context.Context, record *domain.HomeGroup, input GroupInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrGroupNameRequired
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return ErrCoordinatesIncomplete
	}

	record.Name = name
	record.Description = strings.TrimSpace(input.Description)
	record.Latitude, record.Longitude = nil, nil
	if input.Latitude != nil {
		lat, lng := *input.Latitude, *input.Longitude
		record.Latitude, record.Longitude = &lat, &lng
	}

	record.Leader = nil
	if input.LeaderID != nil && *input.LeaderID != uuid.Nil {
		record.Leader = &domain.PersonRef{ID: *input.LeaderID}
		if s.people != nil {
			person, err := s.people.Get(ctx, *input.LeaderID)
			if err != nil {
				return ErrLeaderNotFound
			}
			record.Leader = person.Ref()
		}
	}

	record.State, record.City = nil, nil
	if input.StateID > 0 {
		record.State = &domain.State{ID: input.StateID}
		if s.geo != nil {
			state, err := s.geo.GetState(ctx, input.StateID)
			if err != nil {
				return err
			}
			record.State = state
		}
	}
	if input.CityID > 0 {
		city := &domain.City{ID: input.CityID, StateID: input.StateID}
		if s.geo != nil {
			resolved, err := s.geo.GetCity(ctx, input.CityID)
			if err != nil {
				return err
			}
			city = resolved
		}
		if city.StateID != input.StateID {
			return ErrCityNotInState
		}
		record.City = city
	}
	return nil
}

func translateRepoError(err error) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return ErrGroupNotFound
	}
	return err
}

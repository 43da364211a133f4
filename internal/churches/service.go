package churches

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/identity"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// Service describes church management capabilities.
type Service interface {
	Create(ctx context.Context, input CreateChurchInput) (*domain.Church, error)
	Update(ctx context.Context, input UpdateChurchInput) (*domain.Church, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Church, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Church, error)
	List(ctx context.Context, req domain.PageRequest) (domain.Page[*domain.Church], error)
}

// ChurchFields are the editable church attributes.
type ChurchFields struct {
	Name           string
	Email          string
	Phone          string
	Address        string
	FoundationDate *time.Time
	PastorID       *uuid.UUID
	StateID        int64
	CityID         int64
	Latitude       *float64
	Longitude      *float64
}

// CreateChurchInput registers a church.
type CreateChurchInput struct {
	ChurchFields
}

// UpdateChurchInput replaces the editable attributes of a church.
type UpdateChurchInput struct {
	ID uuid.UUID
	ChurchFields
}

// PastorLookup resolves the person referenced as pastor.
type PastorLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Person, error)
}

// GeoLookup resolves catalog entries.
type GeoLookup interface {
	GetState(ctx context.Context, id int64) (*domain.State, error)
	GetCity(ctx context.Context, id int64) (*domain.City, error)
}

var (
	ErrChurchRepositoryRequired = errors.New("churches: repository required")
	ErrChurchIDRequired         = errors.New("churches: id is required")
	ErrChurchNameRequired       = errors.New("churches: name is required")
	ErrChurchSlugInvalid        = errors.New("churches: name does not produce a valid slug")
	ErrChurchSlugExists         = errors.New("churches: slug already exists")
	ErrChurchNotFound           = errors.New("churches: church not found")
	ErrCoordinatesIncomplete    = errors.New("churches: latitude and longitude must be set together")
	ErrCityWithoutState         = errors.New("churches: city requires a state")
	ErrCityNotInState           = errors.New("churches: city does not belong to state")
	ErrPastorNotFound           = errors.New("churches: pastor not found")
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

// WithIDGenerator overrides church ID generation.
func WithIDGenerator(fn func(slug string) uuid.UUID) ServiceOption {
	return func(s *service) {
		if fn != nil {
			s.id = fn
		}
	}
}

// WithPastorLookup enables pastor resolution.
func WithPastorLookup(lookup PastorLookup) ServiceOption {
	return func(s *service) {
		s.pastors = lookup
	}
}

// WithGeoLookup enables state and city resolution.
func WithGeoLookup(lookup GeoLookup) ServiceOption {
	return func(s *service) {
		s.geo = lookup
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

type service struct {
	repo    ChurchRepository
	pastors PastorLookup
	geo     GeoLookup
	id      func(slug string) uuid.UUID
	now     func() time.Time
	logger  interfaces.Logger
}

// NewService constructs a church service instance.
func NewService(repo ChurchRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrChurchRepositoryRequired)
	}
	s := &service{
		repo:   repo,
		id:     identity.ChurchUUID,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, input CreateChurchInput) (*domain.Church, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrChurchNameRequired
	}
	churchSlug, err := slug.Normalize(name)
	if err != nil || churchSlug == "" || !slug.IsValid(churchSlug) {
		return nil, ErrChurchSlugInvalid
	}
	if existing, err := s.repo.GetBySlug(ctx, churchSlug); err == nil && existing != nil {
		return nil, ErrChurchSlugExists
	} else if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
	}

	now := s.now().UTC()
	record := &domain.Church{
		ID:        s.id(churchSlug),
		Slug:      churchSlug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(ctx, record, input.ChurchFields); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("church.created", "church_id", created.ID.String(), "slug", created.Slug)
	return created, nil
}

func (s *service) Update(ctx context.Context, input UpdateChurchInput) (*domain.Church, error) {
	if input.ID == uuid.Nil {
		return nil, ErrChurchIDRequired
	}
	existing, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrChurchNameRequired
	}

	record := cloneChurch(existing)
	if err := s.apply(ctx, record, input.ChurchFields); err != nil {
		return nil, err
	}
	record.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, translateRepoError(err)
	}
	s.logger.Info("church.updated", "church_id", updated.ID.String())
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrChurchIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err)
	}
	s.logger.Info("church.deleted", "church_id", id.String())
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*domain.Church, error) {
	church, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return church, nil
}

func (s *service) GetBySlug(ctx context.Context, value string) (*domain.Church, error) {
	church, err := s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		return nil, translateRepoError(err)
	}
	return church, nil
}

func (s *service) List(ctx context.Context, req domain.PageRequest) (domain.Page[*domain.Church], error) {
	return s.repo.List(ctx, req)
}

func (s *service) apply(ctx context.Context, record *domain.Church, fields ChurchFields) error {
	if (fields.Latitude == nil) != (fields.Longitude == nil) {
		return ErrCoordinatesIncomplete
	}
	if fields.CityID > 0 && fields.StateID <= 0 {
		return ErrCityWithoutState
	}

	record.Name = strings.TrimSpace(fields.Name)
	record.Email = strings.TrimSpace(fields.Email)
	record.Phone = strings.TrimSpace(fields.Phone)
	record.Address = strings.TrimSpace(fields.Address)
	record.FoundationDate = cloneTime(fields.FoundationDate)
	record.Latitude = cloneFloat(fields.Latitude)
	record.Longitude = cloneFloat(fields.Longitude)

	record.Pastor = nil
	if fields.PastorID != nil && *fields.PastorID != uuid.Nil {
		ref := &domain.PersonRef{ID: *fields.PastorID}
		if s.pastors != nil {
			person, err := s.pastors.Get(ctx, *fields.PastorID)
			if err != nil {
				return ErrPastorNotFound
			}
			ref = person.Ref()
		}
		record.Pastor = ref
	}

	record.State, record.City = nil, nil
	if fields.StateID > 0 {
		state := &domain.State{ID: fields.StateID}
		if s.geo != nil {
			resolved, err := s.geo.GetState(ctx, fields.StateID)
			if err != nil {
				return err
			}
			state = resolved
		}
		record.State = state
	}
	if fields.CityID > 0 {
		city := &domain.City{ID: fields.CityID, StateID: fields.StateID}
		if s.geo != nil {
			resolved, err := s.geo.GetCity(ctx, fields.CityID)
			if err != nil {
				return err
			}
			city = resolved
		}
		if city.StateID != fields.StateID {
			return ErrCityNotInState
		}
		record.City = city
	}
	return nil
}

func translateRepoError(err error) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return ErrChurchNotFound
	}
	return err
}

package people

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/identity"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// Service describes person management capabilities.
type Service interface {
	Create(ctx context.Context, input PersonInput) (*domain.Person, error)
	Update(ctx context.Context, id uuid.UUID, input PersonInput) (*domain.Person, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Person, error)
	List(ctx context.Context, filter Filter, req domain.PageRequest) (domain.Page[*domain.Person], error)
	ListByChurch(ctx context.Context, churchID uuid.UUID) ([]*domain.Person, error)
}

// PersonInput carries the editable person attributes.
type PersonInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	BirthDate *time.Time
	ChurchID  *uuid.UUID
	Role      domain.PersonRole
}

var (
	ErrPersonRepositoryRequired = errors.New("people: repository required")
	ErrPersonIDRequired         = errors.New("people: id is required")
	ErrFirstNameRequired        = errors.New("people: first name is required")
	ErrLastNameRequired         = errors.New("people: last name is required")
	ErrEmailInvalid             = errors.New("people: email is invalid")
	ErrRoleInvalid              = errors.New("people: role is invalid")
	ErrBirthDateInFuture        = errors.New("people: birth date is in the future")
	ErrPersonNotFound           = errors.New("people: person not found")
	ErrPersonExists             = errors.New("people: person already registered")
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

// WithIDGenerator overrides person ID generation.
func WithIDGenerator(fn func(email string) uuid.UUID) ServiceOption {
	return func(s *service) {
		if fn != nil {
			s.id = fn
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

type service struct {
	repo   PersonRepository
	id     func(email string) uuid.UUID
	now    func() time.Time
	logger interfaces.Logger
}

// NewService constructs a person service instance.
func NewService(repo PersonRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrPersonRepositoryRequired)
	}
	s := &service{
		repo:   repo,
		id:     defaultPersonID,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultPersonID(email string) uuid.UUID {
	if email == "" {
		return uuid.New()
	}
	return identity.PersonUUID(email)
}

func (s *service) Create(ctx context.Context, input PersonInput) (*domain.Person, error) {
	now := s.now().UTC()
	record := &domain.Person{CreatedAt: now, UpdatedAt: now}
	if err := s.apply(record, input, now); err != nil {
		return nil, err
	}
	record.ID = s.id(record.Email)
	if existing, err := s.repo.GetByID(ctx, record.ID); err == nil && existing != nil {
		return nil, ErrPersonExists
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("person.created", "person_id", created.ID.String(), "role", string(created.Role))
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input PersonInput) (*domain.Person, error) {
	if id == uuid.Nil {
		return nil, ErrPersonIDRequired
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	now := s.now().UTC()
	record := clonePerson(existing)
	if err := s.apply(record, input, now); err != nil {
		return nil, err
	}
	record.UpdatedAt = now

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrPersonIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*domain.Person, error) {
	person, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return person, nil
}

func (s *service) List(ctx context.Context, filter Filter, req domain.PageRequest) (domain.Page[*domain.Person], error) {
	return s.repo.List(ctx, filter, req)
}

// ListByChurch returns every person of a church ordered by name.
func (s *service) ListByChurch(ctx context.Context, churchID uuid.UUID) ([]*domain.Person, error) {
	page, err := s.repo.List(ctx, Filter{ChurchID: &churchID}, domain.PageRequest{})
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

func (s *service) apply(record *domain.Person, input PersonInput, now time.Time) error {
	first := strings.TrimSpace(input.FirstName)
	if first == "" {
		return ErrFirstNameRequired
	}
	last := strings.TrimSpace(input.LastName)
	if last == "" {
		return ErrLastNameRequired
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email != "" {
		if err := is.EmailFormat.Validate(email); err != nil {
			return ErrEmailInvalid
		}
	}
	role := input.Role
	if role == "" {
		role = domain.RoleMember
	}
	switch role {
	case domain.RolePastor, domain.RoleLeader, domain.RoleMember:
	default:
		return ErrRoleInvalid
	}
	if input.BirthDate != nil && input.BirthDate.After(now) {
		return ErrBirthDateInFuture
	}

	record.FirstName = first
	record.LastName = last
	record.Email = email
	record.Phone = strings.TrimSpace(input.Phone)
	record.Role = role
	record.BirthDate = nil
	if input.BirthDate != nil {
		v := input.BirthDate.UTC()
		record.BirthDate = &v
	}
	record.ChurchID = nil
	if input.ChurchID != nil && *input.ChurchID != uuid.Nil {
		v := *input.ChurchID
		record.ChurchID = &v
	}
	return nil
}

func translateRepoError(err error) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return ErrPersonNotFound
	}
	return err
}

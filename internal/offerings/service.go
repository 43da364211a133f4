package offerings

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// Service describes offering capabilities.
type Service interface {
	Register(ctx context.Context, input OfferingInput) (*domain.Offering, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Offering, error)
	Total(ctx context.Context, meetingID uuid.UUID) (float64, error)
	Types(ctx context.Context) ([]*domain.OfferingType, error)
	RegisterType(ctx context.Context, id int64, name string) (*domain.OfferingType, error)
}

// OfferingInput registers an offering during a meeting.
type OfferingInput struct {
	MeetingID uuid.UUID
	TypeID    int64
	Amount    float64
	PersonID  *uuid.UUID
	Notes     string
}

// MeetingLookup checks that a meeting exists.
type MeetingLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Meeting, error)
}

// PersonLookup resolves the giver.
type PersonLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Person, error)
}

var (
	ErrOfferingRepositoryRequired = errors.New("offerings: repository required")
	ErrTypeRepositoryRequired     = errors.New("offerings: type repository required")
	ErrMeetingRequired            = errors.New("offerings: meeting is required")
	ErrMeetingNotFound            = errors.New("offerings: meeting not found")
	ErrAmountInvalid              = errors.New("offerings: amount must be greater than zero")
	ErrTypeRequired               = errors.New("offerings: type is required")
	ErrTypeNotFound               = errors.New("offerings: type not found")
	ErrTypeNameRequired           = errors.New("offerings: type name is required")
	ErrPersonNotFound             = errors.New("offerings: person not found")
	ErrOfferingNotFound           = errors.New("offerings: offering not found")
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

// WithIDGenerator overrides offering ID generation.
func WithIDGenerator(fn func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if fn != nil {
			s.id = fn
		}
	}
}

// WithMeetingLookup enables meeting existence checks.
func WithMeetingLookup(lookup MeetingLookup) ServiceOption {
	return func(s *service) {
		s.meetings = lookup
	}
}

// WithPersonLookup enables giver resolution.
func WithPersonLookup(lookup PersonLookup) ServiceOption {
	return func(s *service) {
		s.people = lookup
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

type service struct {
	offerings OfferingRepository
	types     TypeRepository
	meetings  MeetingLookup
	people    PersonLookup
	id        func() uuid.UUID
	now       func() time.Time
	logger    interfaces.Logger
}

// NewService constructs an offering service instance.
func NewService(offerings OfferingRepository, types TypeRepository, opts ...ServiceOption) Service {
	if offerings == nil {
		panic(ErrOfferingRepositoryRequired)
	}
	if types == nil {
		panic(ErrTypeRepositoryRequired)
	}
	s := &service{
		offerings: offerings,
		types:     types,
		id:        uuid.New,
		now:       time.Now,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Register(ctx context.Context, input OfferingInput) (*domain.Offering, error) {
	if input.MeetingID == uuid.Nil {
		return nil, ErrMeetingRequired
	}
	if input.Amount <= 0 || math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) {
		return nil, ErrAmountInvalid
	}
	if input.TypeID <= 0 {
		return nil, ErrTypeRequired
	}
	offeringType, err := s.types.Get(ctx, input.TypeID)
	if err != nil {
		return nil, translateRepoError(err, ErrTypeNotFound)
	}
	if s.meetings != nil {
		if _, err := s.meetings.Get(ctx, input.MeetingID); err != nil {
			return nil, ErrMeetingNotFound
		}
	}

	record := &domain.Offering{
		ID:        s.id(),
		MeetingID: input.MeetingID,
		Type:      offeringType,
		Amount:    math.Round(input.Amount*100) / 100,
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: s.now().UTC(),
	}
	if input.PersonID != nil && *input.PersonID != uuid.Nil {
		record.Person = &domain.PersonRef{ID: *input.PersonID}
		if s.people != nil {
			person, err := s.people.Get(ctx, *input.PersonID)
			if err != nil {
				return nil, ErrPersonNotFound
			}
			record.Person = person.Ref()
		}
	}

	created, err := s.offerings.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("offering.registered", "offering_id", created.ID.String(), "meeting_id", created.MeetingID.String(), "amount", created.Amount)
	return created, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.offerings.Delete(ctx, id); err != nil {
		return translateRepoError(err, ErrOfferingNotFound)
	}
	return nil
}

func (s *service) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Offering, error) {
	if meetingID == uuid.Nil {
		return nil, ErrMeetingRequired
	}
	return s.offerings.ListByMeeting(ctx, meetingID)
}

// Total sums the offerings of a meeting, rounded to cents.
func (s *service) Total(ctx context.Context, meetingID uuid.UUID) (float64, error) {
	offerings, err := s.ListByMeeting(ctx, meetingID)
	if err != nil {
		return 0, err
	}
	var cents int64
	for _, o := range offerings {
		cents += int64(math.Round(o.Amount * 100))
	}
	return float64(cents) / 100, nil
}

func (s *service) Types(ctx context.Context) ([]*domain.OfferingType, error) {
	return s.types.List(ctx)
}

func (s *service) RegisterType(ctx context.Context, id int64, name string) (*domain.OfferingType, error) {
	if id <= 0 {
		return nil, ErrTypeRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTypeNameRequired
	}
	return s.types.Save(ctx, &domain.OfferingType{ID: id, Name: name})
}

func translateRepoError(err error, fallback error) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return fallback
	}
	return err
}

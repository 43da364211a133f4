package meetings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/identity"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// Service describes meeting and attendance capabilities.
type Service interface {
	Create(ctx context.Context, input MeetingInput) (*domain.Meeting, error)
	Update(ctx context.Context, id uuid.UUID, input MeetingInput) (*domain.Meeting, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Meeting, error)
	List(ctx context.Context, filter Filter, req domain.PageRequest) (domain.Page[*domain.Meeting], error)
	Attendance(ctx context.Context, meetingID uuid.UUID) ([]domain.Attendance, error)
	SetAttendance(ctx context.Context, meetingID, personID uuid.UUID, attended bool) (*domain.Attendance, error)
}

// MeetingInput carries the editable meeting attributes.
type MeetingInput struct {
	ChurchID    uuid.UUID
	GroupID     *uuid.UUID
	Type        domain.MeetingType
	Name        string
	Description string
	Date        time.Time
}

// RosterSource lists the people expected at a church's meetings.
type RosterSource interface {
	ListByChurch(ctx context.Context, churchID uuid.UUID) ([]*domain.Person, error)
}

var (
	ErrMeetingRepositoryRequired    = errors.New("meetings: repository required")
	ErrAttendanceRepositoryRequired = errors.New("meetings: attendance repository required")
	ErrMeetingChurchRequired        = errors.New("meetings: church is required")
	ErrMeetingNameRequired          = errors.New("meetings: name is required")
	ErrMeetingDateRequired          = errors.New("meetings: date is required")
	ErrMeetingTypeInvalid           = errors.New("meetings: type is invalid")
	ErrMeetingGroupRequired         = errors.New("meetings: group meetings require a group")
	ErrMeetingNotFound              = errors.New("meetings: meeting not found")
	ErrPersonRequired               = errors.New("meetings: person is required")
	ErrPersonNotInRoster            = errors.New("meetings: person is not part of the church")
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

// WithIDGenerator overrides meeting ID generation.
func WithIDGenerator(fn func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if fn != nil {
			s.id = fn
		}
	}
}

// WithRoster enables attendance rosters built from church members.
func WithRoster(roster RosterSource) ServiceOption {
	return func(s *service) {
		s.roster = roster
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

type service struct {
	meetings   MeetingRepository
	attendance AttendanceRepository
	roster     RosterSource
	id         func() uuid.UUID
	now        func() time.Time
	logger     interfaces.Logger
}

// NewService constructs a meeting service instance.
func NewService(meetings MeetingRepository, attendance AttendanceRepository, opts ...ServiceOption) Service {
	if meetings == nil {
		panic(ErrMeetingRepositoryRequired)
	}
	if attendance == nil {
		panic(ErrAttendanceRepositoryRequired)
	}
	s := &service{
		meetings:   meetings,
		attendance: attendance,
		id:         uuid.New,
		now:        time.Now,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, input MeetingInput) (*domain.Meeting, error) {
	if input.ChurchID == uuid.Nil {
		return nil, ErrMeetingChurchRequired
	}
	now := s.now().UTC()
	record := &domain.Meeting{ID: s.id(), ChurchID: input.ChurchID, CreatedAt: now, UpdatedAt: now}
	if err := apply(record, input); err != nil {
		return nil, err
	}
	created, err := s.meetings.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("meeting.created", "meeting_id", created.ID.String(), "type", string(created.Type))
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input MeetingInput) (*domain.Meeting, error) {
	existing, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	record := cloneMeeting(existing)
	if err := apply(record, input); err != nil {
		return nil, err
	}
	record.UpdatedAt = s.now().UTC()
	updated, err := s.meetings.Update(ctx, record)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.meetings.Delete(ctx, id); err != nil {
		return translateRepoError(err)
	}
	return s.attendance.DeleteByMeeting(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	meeting, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return meeting, nil
}

func (s *service) List(ctx context.Context, filter Filter, req domain.PageRequest) (domain.Page[*domain.Meeting], error) {
	return s.meetings.List(ctx, filter, req)
}

// Attendance returns the attendance list of a meeting. With a roster every
// church member is listed and unmarked members appear as absent.
func (s *service) Attendance(ctx context.Context, meetingID uuid.UUID) ([]domain.Attendance, error) {
	meeting, err := s.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	marks, err := s.attendance.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	byPerson := make(map[uuid.UUID]*domain.Attendance, len(marks))
	for _, mark := range marks {
		byPerson[mark.PersonID] = mark
	}

	if s.roster == nil {
		out := make([]domain.Attendance, 0, len(marks))
		for _, mark := range marks {
			out = append(out, *mark)
		}
		return out, nil
	}

	people, err := s.roster.ListByChurch(ctx, meeting.ChurchID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Attendance, 0, len(people))
	for _, person := range people {
		if mark, ok := byPerson[person.ID]; ok {
			entry := *mark
			entry.Person = person.Ref()
			out = append(out, entry)
			continue
		}
		out = append(out, domain.Attendance{
			ID:        identity.AttendanceUUID(meetingID, person.ID),
			MeetingID: meetingID,
			PersonID:  person.ID,
			Person:    person.Ref(),
		})
	}
	return out, nil
}

func (s *service) SetAttendance(ctx context.Context, meetingID, personID uuid.UUID, attended bool) (*domain.Attendance, error) {
	if personID == uuid.Nil {
		return nil, ErrPersonRequired
	}
	meeting, err := s.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	record := &domain.Attendance{
		ID:        identity.AttendanceUUID(meetingID, personID),
		MeetingID: meetingID,
		PersonID:  personID,
		Attended:  attended,
		UpdatedAt: s.now().UTC(),
	}
	if s.roster != nil {
		people, err := s.roster.ListByChurch(ctx, meeting.ChurchID)
		if err != nil {
			return nil, err
		}
		for _, person := range people {
			if person.ID == personID {
				record.Person = person.Ref()
				break
			}
		}
		if record.Person == nil {
			return nil, ErrPersonNotInRoster
		}
	}

	saved, err := s.attendance.Upsert(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("meeting.attendance.set", "meeting_id", meetingID.String(), "person_id", personID.String(), "attended", attended)
	return saved, nil
}

func apply(record *domain.Meeting, input MeetingInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ErrMeetingNameRequired
	}
	if input.Date.IsZero() {
		return ErrMeetingDateRequired
	}
	kind := input.Type
	if kind == "" {
		kind = domain.MeetingWorship
	}
	switch kind {
	case domain.MeetingWorship:
	case domain.MeetingGroup:
		if input.GroupID == nil || *input.GroupID == uuid.Nil {
			return ErrMeetingGroupRequired
		}
	default:
		return ErrMeetingTypeInvalid
	}

	record.Type = kind
	record.Name = name
	record.Description = strings.TrimSpace(input.Description)
	record.Date = input.Date.UTC()
	record.GroupID = nil
	if input.GroupID != nil && *input.GroupID != uuid.Nil {
		v := *input.GroupID
		record.GroupID = &v
	}
	return nil
}

func translateRepoError(err error) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return ErrMeetingNotFound
	}
	return err
}

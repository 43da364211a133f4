package meetings

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
)

// Filter narrows meeting listings.
type Filter struct {
	ChurchID *uuid.UUID
	GroupID  *uuid.UUID
	Type     domain.MeetingType
}

// MeetingRepository exposes persistence operations for meetings.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *domain.Meeting) (*domain.Meeting, error)
	Update(ctx context.Context, meeting *domain.Meeting) (*domain.Meeting, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error)
	List(ctx context.Context, filter Filter, req domain.PageRequest) (domain.Page[*domain.Meeting], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AttendanceRepository stores attendance marks.
type AttendanceRepository interface {
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Attendance, error)
	Upsert(ctx context.Context, attendance *domain.Attendance) (*domain.Attendance, error)
	DeleteByMeeting(ctx context.Context, meetingID uuid.UUID) error
}

// NotFoundError is returned when a meeting cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (f Filter) matches(m *domain.Meeting) bool {
	if f.ChurchID != nil && m.ChurchID != *f.ChurchID {
		return false
	}
	if f.GroupID != nil && (m.GroupID == nil || *m.GroupID != *f.GroupID) {
		return false
	}
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	return true
}

func cloneMeeting(m *domain.Meeting) *domain.Meeting {
	if m == nil {
		return nil
	}
	cloned := *m
	if m.GroupID != nil {
		v := *m.GroupID
		cloned.GroupID = &v
	}
	return &cloned
}

func cloneAttendance(a *domain.Attendance) *domain.Attendance {
	if a == nil {
		return nil
	}
	cloned := *a
	if a.Person != nil {
		v := *a.Person
		cloned.Person = &v
	}
	return &cloned
}

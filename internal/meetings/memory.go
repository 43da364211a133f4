package meetings

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
)

type memoryMeetingRepository struct {
	mu       sync.RWMutex
	meetings map[uuid.UUID]*domain.Meeting
}

// NewMemoryMeetingRepository constructs an in-memory meeting repository.
func NewMemoryMeetingRepository() MeetingRepository {
	return &memoryMeetingRepository{meetings: make(map[uuid.UUID]*domain.Meeting)}
}

func (m *memoryMeetingRepository) Create(_ context.Context, meeting *domain.Meeting) (*domain.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cloned := cloneMeeting(meeting)
	m.meetings[cloned.ID] = cloned
	return cloneMeeting(cloned), nil
}

func (m *memoryMeetingRepository) Update(_ context.Context, meeting *domain.Meeting) (*domain.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.meetings[meeting.ID]; !ok {
		return nil, &NotFoundError{Resource: "meeting", Key: meeting.ID.String()}
	}
	cloned := cloneMeeting(meeting)
	m.meetings[cloned.ID] = cloned
	return cloneMeeting(cloned), nil
}

func (m *memoryMeetingRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Meeting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meeting, ok := m.meetings[id]
	if !ok {
		return nil, &NotFoundError{Resource: "meeting", Key: id.String()}
	}
	return cloneMeeting(meeting), nil
}

func (m *memoryMeetingRepository) List(_ context.Context, filter Filter, req domain.PageRequest) (domain.Page[*domain.Meeting], error) {
	m.mu.RLock()
	out := make([]*domain.Meeting, 0)
	for _, meeting := range m.meetings {
		if filter.matches(meeting) {
			out = append(out, cloneMeeting(meeting))
		}
	}
	m.mu.RUnlock()

	// newest first unless a name sort is requested
	sort.SliceStable(out, func(i, j int) bool {
		if req.SortField == "name" && req.SortDir != domain.SortNone {
			a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
			if req.SortDir == domain.SortDesc {
				return b < a
			}
			return a < b
		}
		if req.SortField == "date" && req.SortDir == domain.SortAsc {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Date.After(out[j].Date)
	})
	return domain.Paginate(out, req), nil
}

func (m *memoryMeetingRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.meetings[id]; !ok {
		return &NotFoundError{Resource: "meeting", Key: id.String()}
	}
	delete(m.meetings, id)
	return nil
}

type memoryAttendanceRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*domain.Attendance
}

// NewMemoryAttendanceRepository constructs an in-memory attendance repository.
func NewMemoryAttendanceRepository() AttendanceRepository {
	return &memoryAttendanceRepository{records: make(map[uuid.UUID]*domain.Attendance)}
}

func (m *memoryAttendanceRepository) ListByMeeting(_ context.Context, meetingID uuid.UUID) ([]*domain.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Attendance, 0)
	for _, a := range m.records {
		if a.MeetingID == meetingID {
			out = append(out, cloneAttendance(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PersonID.String() < out[j].PersonID.String() })
	return out, nil
}

func (m *memoryAttendanceRepository) Upsert(_ context.Context, attendance *domain.Attendance) (*domain.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cloned := cloneAttendance(attendance)
	m.records[cloned.ID] = cloned
	return cloneAttendance(cloned), nil
}

func (m *memoryAttendanceRepository) DeleteByMeeting(_ context.Context, meetingID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.records {
		if a.MeetingID == meetingID {
			delete(m.records, id)
		}
	}
	return nil
}

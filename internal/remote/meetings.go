package remote

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/meetings"
)

// MeetingRepository reads and writes meetings through the backend API.
type MeetingRepository struct {
	client *Client
}

var _ meetings.MeetingRepository = (*MeetingRepository)(nil)

func NewMeetingRepository(client *Client) *MeetingRepository {
	return &MeetingRepository{client: client}
}

func (r *MeetingRepository) Create(ctx context.Context, meeting *domain.Meeting) (*domain.Meeting, error) {
	created, err := send[domain.Meeting](ctx, r.client, http.MethodPost, "meetings", nil, meeting)
	if err != nil {
		return nil, meetingError(err, meeting.Name)
	}
	return &created, nil
}

func (r *MeetingRepository) Update(ctx context.Context, meeting *domain.Meeting) (*domain.Meeting, error) {
	updated, err := send[domain.Meeting](ctx, r.client, http.MethodPut, "meeting", idParam(meeting.ID), meeting)
	if err != nil {
		return nil, meetingError(err, meeting.ID.String())
	}
	return &updated, nil
}

func (r *MeetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	meeting, err := get[domain.Meeting](ctx, r.client, "meeting", idParam(id), nil)
	if err != nil {
		return nil, meetingError(err, id.String())
	}
	return &meeting, nil
}

func (r *MeetingRepository) List(ctx context.Context, filter meetings.Filter, req domain.PageRequest) (domain.Page[*domain.Meeting], error) {
	query := pageQuery(req)
	if filter.ChurchID != nil {
		query["churchId"] = filter.ChurchID.String()
	}
	if filter.GroupID != nil {
		query["groupId"] = filter.GroupID.String()
	}
	if filter.Type != "" {
		query["type"] = string(filter.Type)
	}
	page, err := get[domain.Page[*domain.Meeting]](ctx, r.client, "meetings", nil, query)
	if err != nil {
		return domain.Page[*domain.Meeting]{}, err
	}
	return normalizePage(page), nil
}

func (r *MeetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := del(ctx, r.client, "meeting", idParam(id)); err != nil {
		return meetingError(err, id.String())
	}
	return nil
}

// AttendanceRepository reads and writes attendance marks through the backend API.
type AttendanceRepository struct {
	client *Client
}

var _ meetings.AttendanceRepository = (*AttendanceRepository)(nil)

func NewAttendanceRepository(client *Client) *AttendanceRepository {
	return &AttendanceRepository{client: client}
}

func (r *AttendanceRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Attendance, error) {
	records, err := get[[]*domain.Attendance](ctx, r.client, "attendance", idParam(meetingID), nil)
	if err != nil {
		return nil, meetingError(err, meetingID.String())
	}
	if records == nil {
		records = []*domain.Attendance{}
	}
	return records, nil
}

func (r *AttendanceRepository) Upsert(ctx context.Context, attendance *domain.Attendance) (*domain.Attendance, error) {
	params := map[string]any{
		"id":       attendance.MeetingID.String(),
		"personId": attendance.PersonID.String(),
	}
	saved, err := send[domain.Attendance](ctx, r.client, http.MethodPut, "attendee", params, attendance)
	if err != nil {
		return nil, meetingError(err, attendance.MeetingID.String())
	}
	return &saved, nil
}

func (r *AttendanceRepository) DeleteByMeeting(ctx context.Context, meetingID uuid.UUID) error {
	err := del(ctx, r.client, "attendance", idParam(meetingID))
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

func meetingError(err error, key string) error {
	if IsNotFound(err) {
		return &meetings.NotFoundError{Resource: "meeting", Key: key}
	}
	return err
}

package meetingcmd

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/meetings"
)

const (
	saveMeetingMessageType   = "viddefe.meetings.save"
	deleteMeetingMessageType = "viddefe.meetings.delete"
	setAttendanceMessageType = "viddefe.meetings.set_attendance"
)

// SaveMeetingCommand creates a meeting when ID is nil and updates it otherwise.
type SaveMeetingCommand struct {
	ID          *uuid.UUID         `json:"id,omitempty"`
	ChurchID    uuid.UUID          `json:"church_id"`
	GroupID     *uuid.UUID         `json:"group_id,omitempty"`
	Kind        domain.MeetingType `json:"type"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Date        time.Time          `json:"date"`
}

// Type implements command.Message.
func (SaveMeetingCommand) Type() string { return saveMeetingMessageType }

// Validate reports field errors keyed by json field name.
func (m SaveMeetingCommand) Validate() error {
	errs := validation.Errors{}
	if m.ChurchID == uuid.Nil {
		errs["church_id"] = validation.NewError("viddefe.meetings.save.church_required", "church is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		errs["name"] = validation.NewError("viddefe.meetings.save.name_required", "name is required")
	}
	switch m.Kind {
	case domain.MeetingWorship:
	case domain.MeetingGroup:
		if m.GroupID == nil || *m.GroupID == uuid.Nil {
			errs["group_id"] = validation.NewError("viddefe.meetings.save.group_required", "group meetings need a home group")
		}
	default:
		errs["type"] = validation.NewError("viddefe.meetings.save.type_invalid", "type must be worship or group")
	}
	if m.Date.IsZero() {
		errs["date"] = validation.NewError("viddefe.meetings.save.date_required", "date is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Input maps the command onto the service input.
func (m SaveMeetingCommand) Input() meetings.MeetingInput {
	return meetings.MeetingInput{
		ChurchID:    m.ChurchID,
		GroupID:     m.GroupID,
		Type:        m.Kind,
		Name:        strings.TrimSpace(m.Name),
		Description: strings.TrimSpace(m.Description),
		Date:        m.Date,
	}
}

// DeleteMeetingCommand removes a meeting and its attendance.
type DeleteMeetingCommand struct {
	ID uuid.UUID `json:"id"`
}

// Type implements command.Message.
func (DeleteMeetingCommand) Type() string { return deleteMeetingMessageType }

// Validate ensures the meeting id is present.
func (m DeleteMeetingCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.By(requiredUUID("viddefe.meetings.delete.id_required"))),
	)
}

// SetAttendanceCommand marks a person present or absent at a meeting.
type SetAttendanceCommand struct {
	MeetingID uuid.UUID `json:"meeting_id"`
	PersonID  uuid.UUID `json:"person_id"`
	Attended  bool      `json:"attended"`
}

// Type implements command.Message.
func (SetAttendanceCommand) Type() string { return setAttendanceMessageType }

// Validate ensures both identifiers are present.
func (m SetAttendanceCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.MeetingID, validation.By(requiredUUID("viddefe.meetings.set_attendance.meeting_required"))),
		validation.Field(&m.PersonID, validation.By(requiredUUID("viddefe.meetings.set_attendance.person_required"))),
	)
}

func requiredUUID(code string) validation.RuleFunc {
	return func(value any) error {
		id, _ := value.(uuid.UUID)
		if id == uuid.Nil {
			return validation.NewError(code, "identifier is required")
		}
		return nil
	}
}

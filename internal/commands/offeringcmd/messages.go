package offeringcmd

import (
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/internal/offerings"
)

const (
	registerOfferingMessageType = "viddefe.offerings.register"
	deleteOfferingMessageType   = "viddefe.offerings.delete"
)

// RegisterOfferingCommand records an offering during a meeting.
type RegisterOfferingCommand struct {
	MeetingID uuid.UUID  `json:"meeting_id"`
	TypeID    int64      `json:"type_id"`
	Amount    float64    `json:"amount"`
	PersonID  *uuid.UUID `json:"person_id,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// Type implements command.Message.
func (RegisterOfferingCommand) Type() string { return registerOfferingMessageType }

// Validate reports field errors keyed by json field name.
func (m RegisterOfferingCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.MeetingID, validation.By(func(value any) error {
			if id, _ := value.(uuid.UUID); id == uuid.Nil {
				return validation.NewError("viddefe.offerings.register.meeting_required", "meeting is required")
			}
			return nil
		})),
		validation.Field(&m.TypeID, validation.Required.ErrorObject(
			validation.NewError("viddefe.offerings.register.type_required", "offering type is required"),
		), validation.Min(int64(1))),
		validation.Field(&m.Amount, validation.By(func(value any) error {
			amount, _ := value.(float64)
			if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
				return validation.NewError("viddefe.offerings.register.amount_invalid", "amount must be greater than zero")
			}
			return nil
		})),
		validation.Field(&m.Notes, validation.RuneLength(0, 500)),
	)
}

// Input maps the command onto the service input.
func (m RegisterOfferingCommand) Input() offerings.OfferingInput {
	return offerings.OfferingInput{
		MeetingID: m.MeetingID,
		TypeID:    m.TypeID,
		Amount:    m.Amount,
		PersonID:  m.PersonID,
		Notes:     strings.TrimSpace(m.Notes),
	}
}

// DeleteOfferingCommand removes an offering.
type DeleteOfferingCommand struct {
	ID        uuid.UUID `json:"id"`
	MeetingID uuid.UUID `json:"meeting_id,omitempty"`
}

// Type implements command.Message.
func (DeleteOfferingCommand) Type() string { return deleteOfferingMessageType }

// Validate ensures the offering id is present.
func (m DeleteOfferingCommand) Validate() error {
	if m.ID == uuid.Nil {
		return validation.Errors{
			"id": validation.NewError("viddefe.offerings.delete.id_required", "id is required"),
		}
	}
	return nil
}

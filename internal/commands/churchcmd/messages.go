package churchcmd

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/internal/churches"
)

const (
	saveChurchMessageType   = "viddefe.churches.save"
	deleteChurchMessageType = "viddefe.churches.delete"
)

// SaveChurchCommand creates a church when ID is nil and updates it otherwise.
type SaveChurchCommand struct {
	ID             *uuid.UUID `json:"id,omitempty"`
	Name           string     `json:"name"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Address        string     `json:"address,omitempty"`
	FoundationDate *time.Time `json:"foundation_date,omitempty"`
	PastorID       *uuid.UUID `json:"pastor_id,omitempty"`
	StateID        int64      `json:"state_id,omitempty"`
	CityID         int64      `json:"city_id,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
}

// Type implements command.Message.
func (SaveChurchCommand) Type() string { return saveChurchMessageType }

// Validate reports field errors keyed by json field name.
func (m SaveChurchCommand) Validate() error {
	err := validation.ValidateStruct(&m,
		validation.Field(&m.Name,
			validation.By(func(value any) error {
				if strings.TrimSpace(value.(string)) == "" {
					return validation.NewError("viddefe.churches.save.name_required", "name is required")
				}
				return nil
			}),
			validation.RuneLength(0, 120),
		),
		validation.Field(&m.Email, is.EmailFormat),
		validation.Field(&m.Phone, validation.RuneLength(0, 32)),
		validation.Field(&m.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&m.Longitude, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&m.StateID, validation.Min(int64(0))),
		validation.Field(&m.CityID, validation.Min(int64(0))),
		validation.Field(&m.FoundationDate, validation.By(notInFuture)),
	)
	errs := validation.Errors{}
	if err != nil {
		fieldErrs, ok := err.(validation.Errors)
		if !ok {
			return err
		}
		errs = fieldErrs
	}
	if (m.Latitude == nil) != (m.Longitude == nil) {
		key := "latitude"
		if m.Longitude == nil {
			key = "longitude"
		}
		if _, exists := errs[key]; !exists {
			errs[key] = validation.NewError("viddefe.churches.save.coordinates_incomplete", "latitude and longitude must be set together")
		}
	}
	if m.CityID > 0 && m.StateID <= 0 {
		if _, exists := errs["state_id"]; !exists {
			errs["state_id"] = validation.NewError("viddefe.churches.save.state_required", "state is required when a city is set")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Fields maps the command onto the service input.
func (m SaveChurchCommand) Fields() churches.ChurchFields {
	return churches.ChurchFields{
		Name:           strings.TrimSpace(m.Name),
		Email:          strings.TrimSpace(m.Email),
		Phone:          strings.TrimSpace(m.Phone),
		Address:        strings.TrimSpace(m.Address),
		FoundationDate: m.FoundationDate,
		PastorID:       m.PastorID,
		StateID:        m.StateID,
		CityID:         m.CityID,
		Latitude:       m.Latitude,
		Longitude:      m.Longitude,
	}
}

// DeleteChurchCommand removes a church.
type DeleteChurchCommand struct {
	ID uuid.UUID `json:"id"`
}

// Type implements command.Message.
func (DeleteChurchCommand) Type() string { return deleteChurchMessageType }

// Validate ensures the church id is present.
func (m DeleteChurchCommand) Validate() error {
	if m.ID == uuid.Nil {
		return validation.Errors{
			"id": validation.NewError("viddefe.churches.delete.id_required", "id is required"),
		}
	}
	return nil
}

func notInFuture(value any) error {
	var date time.Time
	switch v := value.(type) {
	case *time.Time:
		if v == nil {
			return nil
		}
		date = *v
	case time.Time:
		date = v
	default:
		return nil
	}
	if date.After(time.Now()) {
		return validation.NewError("viddefe.churches.save.foundation_date_future", "foundation date cannot be in the future")
	}
	return nil
}

package forms

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/commands/offeringcmd"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/internal/offerings"
	"github.com/viddefe/go-viddefe/internal/permissions"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

var ErrRegisterRequired = errors.New("forms: register offering mutation is required")

// OfferingDraft holds the values typed into the offering modal.
type OfferingDraft struct {
	TypeID   int64
	Amount   string
	PersonID string
	Notes    string
}

// Command converts the draft for meetingID.
func (d OfferingDraft) Command(meetingID uuid.UUID) (offeringcmd.RegisterOfferingCommand, validation.Errors) {
	errs := validation.Errors{}
	cmd := offeringcmd.RegisterOfferingCommand{
		MeetingID: meetingID,
		TypeID:    d.TypeID,
		Notes:     d.Notes,
	}
	raw := strings.ReplaceAll(strings.TrimSpace(d.Amount), ",", ".")
	if raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs["amount"] = validation.NewError("viddefe.forms.offering.amount_invalid", "amount must be a number")
		} else {
			cmd.Amount = amount
		}
	}
	if raw := strings.TrimSpace(d.PersonID); raw != "" {
		person, err := uuid.Parse(raw)
		if err != nil {
			errs["person_id"] = validation.NewError("viddefe.forms.offering.person_invalid", "person is invalid")
		} else {
			cmd.PersonID = &person
		}
	}
	if err := cmd.Validate(); err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			for key, fieldErr := range fieldErrs {
				if _, exists := errs[key]; !exists {
					errs[key] = fieldErr
				}
			}
		} else {
			errs["_"] = err
		}
	}
	if len(errs) == 0 {
		return cmd, nil
	}
	return cmd, errs
}

// OfferingModalConfig carries the collaborators of an OfferingModal.
type OfferingModalConfig struct {
	Offerings    offerings.Service
	Register     interfaces.Mutation[offeringcmd.RegisterOfferingCommand, *domain.Offering]
	Capabilities permissions.Capabilities
	Logger       interfaces.Logger
	OnSaved      func(*domain.Offering)
}

// OfferingModalState is what a renderer needs to draw the modal.
type OfferingModalState struct {
	Open      bool
	MeetingID uuid.UUID
	Types     []*domain.OfferingType
	Draft     OfferingDraft
	Errors    map[string]string
	Saving    bool
}

// OfferingModal registers an offering for one meeting.
type OfferingModal struct {
	cfg    OfferingModalConfig
	logger interfaces.Logger

	mu        sync.Mutex
	gen       uint64
	cancel    context.CancelFunc
	open      bool
	meetingID uuid.UUID
	types     []*domain.OfferingType
	draft     OfferingDraft
	errors    map[string]string
}

// NewOfferingModal builds a closed modal.
func NewOfferingModal(cfg OfferingModalConfig) (*OfferingModal, error) {
	if cfg.Offerings == nil {
		return nil, ErrOfferingServiceRequired
	}
	if cfg.Register == nil {
		return nil, ErrRegisterRequired
	}
	return &OfferingModal{cfg: cfg, logger: logging.Ensure(cfg.Logger), errors: map[string]string{}}, nil
}

// Open loads the offering types and opens an empty draft for meetingID.
// Closing or reopening the modal while the types load cancels the load, and
// Open then returns ErrFormClosed without opening.
func (m *OfferingModal) Open(ctx context.Context, meetingID uuid.UUID) error {
	if err := permissions.Require(m.cfg.Capabilities, permissions.Join(permissions.ResourceOfferings, permissions.ActionCreate)); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	m.mu.Lock()
	m.stopLocked()
	gen := m.gen
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()
	defer cancel()

	types, err := m.cfg.Offerings.Types(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		m.logger.Debug("forms.offering.open_abandoned", "meeting_id", meetingID.String())
		return ErrFormClosed
	}
	m.cancel = nil
	if err != nil {
		return err
	}
	m.open = true
	m.meetingID = meetingID
	m.types = types
	m.draft = OfferingDraft{}
	if len(types) > 0 {
		m.draft.TypeID = types[0].ID
	}
	m.errors = map[string]string{}
	return nil
}

// Update edits the draft. It is ignored while closed.
func (m *OfferingModal) Update(edit func(*OfferingDraft)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open || edit == nil {
		return false
	}
	edit(&m.draft)
	return true
}

// Save validates and submits the draft. Invalid input is reported through
// field errors and returns false without calling the backend.
func (m *OfferingModal) Save(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return false, ErrFormClosed
	}
	cmd, errs := m.draft.Command(m.meetingID)
	if len(errs) > 0 {
		m.errors = map[string]string{}
		for key, err := range errs {
			m.errors[key] = err.Error()
		}
		m.mu.Unlock()
		return false, nil
	}
	m.errors = map[string]string{}
	m.mu.Unlock()

	err := m.cfg.Register.Mutate(ctx, cmd, func(saved *domain.Offering) {
		m.Close()
		if m.cfg.OnSaved != nil {
			m.cfg.OnSaved(saved)
		}
	})
	if err != nil {
		m.logger.Warn("forms.offering.save_failed", "meeting_id", cmd.MeetingID.String(), "error", err)
		return false, err
	}
	m.logger.Debug("forms.offering.saved", "meeting_id", cmd.MeetingID.String(), "amount", formatAmount(cmd.Amount))
	return true, nil
}

// Close discards the draft and abandons a pending Open.
func (m *OfferingModal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	m.open = false
	m.draft = OfferingDraft{}
	m.errors = map[string]string{}
}

// State returns a snapshot for rendering.
func (m *OfferingModal) State() OfferingModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	errs := make(map[string]string, len(m.errors))
	for k, v := range m.errors {
		errs[k] = v
	}
	return OfferingModalState{
		Open:      m.open,
		MeetingID: m.meetingID,
		Types:     append([]*domain.OfferingType(nil), m.types...),
		Draft:     m.draft,
		Errors:    errs,
		Saving:    m.cfg.Register.IsPending(),
	}
}

// stopLocked invalidates any Open in flight. m.mu must be held.
func (m *OfferingModal) stopLocked() {
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

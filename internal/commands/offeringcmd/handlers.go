package offeringcmd

import (
	"context"

	"github.com/google/uuid"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/commands"
	"github.com/viddefe/go-viddefe/internal/offerings"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// Offering events carry the meeting id so meeting screens refetch their totals.
const resource = "offerings"

// RegisterOfferingHandler records offerings through the offering service.
type RegisterOfferingHandler struct {
	service offerings.Service
	bus     interfaces.EventBus
	logger  interfaces.Logger
	opts    []commands.HandlerOption[RegisterOfferingCommand]
}

func NewRegisterOfferingHandler(service offerings.Service, bus interfaces.EventBus, logger interfaces.Logger, opts ...commands.HandlerOption[RegisterOfferingCommand]) *RegisterOfferingHandler {
	logger = commands.EnsureLogger(logger)
	base := []commands.HandlerOption[RegisterOfferingCommand]{
		commands.WithLogger[RegisterOfferingCommand](logger),
		commands.WithOperation[RegisterOfferingCommand]("offerings.register"),
	}
	return &RegisterOfferingHandler{service: service, bus: bus, logger: logger, opts: append(base, opts...)}
}

// Register validates and stores msg.
func (h *RegisterOfferingHandler) Register(ctx context.Context, msg RegisterOfferingCommand) (*domain.Offering, error) {
	var saved *domain.Offering
	exec := func(ctx context.Context, msg RegisterOfferingCommand) error {
		var err error
		saved, err = h.service.Register(ctx, msg.Input())
		return err
	}
	if err := commands.NewHandler(exec, h.opts...).Execute(ctx, msg); err != nil {
		return nil, err
	}
	commands.Notify(ctx, h.bus, h.logger, resource, msg.MeetingID.String(), commands.ActionCreated)
	return saved, nil
}

// Execute satisfies command.Commander[RegisterOfferingCommand].
func (h *RegisterOfferingHandler) Execute(ctx context.Context, msg RegisterOfferingCommand) error {
	_, err := h.Register(ctx, msg)
	return err
}

// DeleteOfferingHandler removes offerings.
type DeleteOfferingHandler struct {
	inner *commands.Handler[DeleteOfferingCommand]
}

func NewDeleteOfferingHandler(service offerings.Service, bus interfaces.EventBus, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteOfferingCommand]) *DeleteOfferingHandler {
	exec := func(ctx context.Context, msg DeleteOfferingCommand) error {
		if err := service.Delete(ctx, msg.ID); err != nil {
			return err
		}
		key := msg.ID.String()
		if msg.MeetingID != uuid.Nil {
			key = msg.MeetingID.String()
		}
		commands.Notify(ctx, bus, logger, resource, key, commands.ActionDeleted)
		return nil
	}
	base := []commands.HandlerOption[DeleteOfferingCommand]{
		commands.WithLogger[DeleteOfferingCommand](logger),
		commands.WithOperation[DeleteOfferingCommand]("offerings.delete"),
	}
	return &DeleteOfferingHandler{inner: commands.NewHandler(exec, append(base, opts...)...)}
}

func (h *DeleteOfferingHandler) Execute(ctx context.Context, msg DeleteOfferingCommand) error {
	return h.inner.Execute(ctx, msg)
}

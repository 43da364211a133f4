package churchcmd

import (
	"context"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/churches"
	"github.com/viddefe/go-viddefe/internal/commands"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

const resource = "churches"

// SaveChurchHandler creates or updates churches through the church service.
type SaveChurchHandler struct {
	service churches.Service
	bus     interfaces.EventBus
	logger  interfaces.Logger
	opts    []commands.HandlerOption[SaveChurchCommand]
}

// NewSaveChurchHandler wires the handler to service. bus may be nil.
func NewSaveChurchHandler(service churches.Service, bus interfaces.EventBus, logger interfaces.Logger, opts ...commands.HandlerOption[SaveChurchCommand]) *SaveChurchHandler {
	logger = commands.EnsureLogger(logger)
	handlerOpts := []commands.HandlerOption[SaveChurchCommand]{
		commands.WithLogger[SaveChurchCommand](logger),
		commands.WithOperation[SaveChurchCommand]("churches.save"),
	}
	return &SaveChurchHandler{
		service: service,
		bus:     bus,
		logger:  logger,
		opts:    append(handlerOpts, opts...),
	}
}

// Save validates and persists msg, returning the stored church.
func (h *SaveChurchHandler) Save(ctx context.Context, msg SaveChurchCommand) (*domain.Church, error) {
	var saved *domain.Church
	exec := func(ctx context.Context, msg SaveChurchCommand) error {
		var err error
		if msg.ID == nil {
			saved, err = h.service.Create(ctx, churches.CreateChurchInput{ChurchFields: msg.Fields()})
		} else {
			saved, err = h.service.Update(ctx, churches.UpdateChurchInput{ID: *msg.ID, ChurchFields: msg.Fields()})
		}
		return err
	}
	if err := commands.NewHandler(exec, h.opts...).Execute(ctx, msg); err != nil {
		return nil, err
	}

	action := commands.ActionUpdated
	if msg.ID == nil {
		action = commands.ActionCreated
	}
	commands.Notify(ctx, h.bus, h.logger, resource, saved.ID.String(), action)
	return saved, nil
}

// Execute satisfies command.Commander[SaveChurchCommand].
func (h *SaveChurchHandler) Execute(ctx context.Context, msg SaveChurchCommand) error {
	_, err := h.Save(ctx, msg)
	return err
}

// DeleteChurchHandler removes churches.
type DeleteChurchHandler struct {
	inner *commands.Handler[DeleteChurchCommand]
}

// NewDeleteChurchHandler wires the handler to service. bus may be nil.
func NewDeleteChurchHandler(service churches.Service, bus interfaces.EventBus, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteChurchCommand]) *DeleteChurchHandler {
	exec := func(ctx context.Context, msg DeleteChurchCommand) error {
		if err := service.Delete(ctx, msg.ID); err != nil {
			return err
		}
		commands.Notify(ctx, bus, logger, resource, msg.ID.String(), commands.ActionDeleted)
		return nil
	}
	handlerOpts := []commands.HandlerOption[DeleteChurchCommand]{
		commands.WithLogger[DeleteChurchCommand](logger),
		commands.WithOperation[DeleteChurchCommand]("churches.delete"),
	}
	return &DeleteChurchHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[DeleteChurchCommand].
func (h *DeleteChurchHandler) Execute(ctx context.Context, msg DeleteChurchCommand) error {
	return h.inner.Execute(ctx, msg)
}

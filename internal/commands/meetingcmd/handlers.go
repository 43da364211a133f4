package meetingcmd

import (
	"context"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/commands"
	"github.com/viddefe/go-viddefe/internal/meetings"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

const (
	meetingResource    = "meetings"
	attendanceResource = "attendance"
)

// SaveMeetingHandler creates or updates meetings.
type SaveMeetingHandler struct {
	service meetings.Service
	bus     interfaces.EventBus
	logger  interfaces.Logger
	opts    []commands.HandlerOption[SaveMeetingCommand]
}

func NewSaveMeetingHandler(service meetings.Service, bus interfaces.EventBus, logger interfaces.Logger, opts ...commands.HandlerOption[SaveMeetingCommand]) *SaveMeetingHandler {
	logger = commands.EnsureLogger(logger)
	base := []commands.HandlerOption[SaveMeetingCommand]{
		commands.WithLogger[SaveMeetingCommand](logger),
		commands.WithOperation[SaveMeetingCommand]("meetings.save"),
	}
	return &SaveMeetingHandler{service: service, bus: bus, logger: logger, opts: append(base, opts...)}
}

// Save validates and persists msg, returning the stored meeting.
func (h *SaveMeetingHandler) Save(ctx context.Context, msg SaveMeetingCommand) (*domain.Meeting, error) {
	var saved *domain.Meeting
	exec := func(ctx context.Context, msg SaveMeetingCommand) error {
		var err error
		if msg.ID == nil {
			saved, err = h.service.Create(ctx, msg.Input())
		} else {
			saved, err = h.service.Update(ctx, *msg.ID, msg.Input())
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
	commands.Notify(ctx, h.bus, h.logger, meetingResource, saved.ID.String(), action)
	return saved, nil
}

// Execute satisfies command.Commander[SaveMeetingCommand].
func (h *SaveMeetingHandler) Execute(ctx context.Context, msg SaveMeetingCommand) error {
	_, err := h.Save(ctx, msg)
	return err
}

// DeleteMeetingHandler removes meetings.
type DeleteMeetingHandler struct {
	inner *commands.Handler[DeleteMeetingCommand]
}

func NewDeleteMeetingHandler(service meetings.Service, bus interfaces.EventBus, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteMeetingCommand]) *DeleteMeetingHandler {
	exec := func(ctx context.Context, msg DeleteMeetingCommand) error {
		if err := service.Delete(ctx, msg.ID); err != nil {
			return err
		}
		commands.Notify(ctx, bus, logger, meetingResource, msg.ID.String(), commands.ActionDeleted)
		return nil
	}
	base := []commands.HandlerOption[DeleteMeetingCommand]{
		commands.WithLogger[DeleteMeetingCommand](logger),
		commands.WithOperation[DeleteMeetingCommand]("meetings.delete"),
	}
	return &DeleteMeetingHandler{inner: commands.NewHandler(exec, append(base, opts...)...)}
}

func (h *DeleteMeetingHandler) Execute(ctx context.Context, msg DeleteMeetingCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SetAttendanceHandler toggles attendance marks. Events are keyed by meeting id
// so attendance lists of that meeting refetch.
type SetAttendanceHandler struct {
	service meetings.Service
	bus     interfaces.EventBus
	logger  interfaces.Logger
	opts    []commands.HandlerOption[SetAttendanceCommand]
}

func NewSetAttendanceHandler(service meetings.Service, bus interfaces.EventBus, logger interfaces.Logger, opts ...commands.HandlerOption[SetAttendanceCommand]) *SetAttendanceHandler {
	logger = commands.EnsureLogger(logger)
	base := []commands.HandlerOption[SetAttendanceCommand]{
		commands.WithLogger[SetAttendanceCommand](logger),
		commands.WithOperation[SetAttendanceCommand]("meetings.set_attendance"),
	}
	return &SetAttendanceHandler{service: service, bus: bus, logger: logger, opts: append(base, opts...)}
}

// Set validates and stores the mark.
func (h *SetAttendanceHandler) Set(ctx context.Context, msg SetAttendanceCommand) (*domain.Attendance, error) {
	var saved *domain.Attendance
	exec := func(ctx context.Context, msg SetAttendanceCommand) error {
		var err error
		saved, err = h.service.SetAttendance(ctx, msg.MeetingID, msg.PersonID, msg.Attended)
		return err
	}
	if err := commands.NewHandler(exec, h.opts...).Execute(ctx, msg); err != nil {
		return nil, err
	}
	commands.Notify(ctx, h.bus, h.logger, attendanceResource, msg.MeetingID.String(), commands.ActionUpdated)
	return saved, nil
}

// Execute satisfies command.Commander[SetAttendanceCommand].
func (h *SetAttendanceHandler) Execute(ctx context.Context, msg SetAttendanceCommand) error {
	_, err := h.Set(ctx, msg)
	return err
}

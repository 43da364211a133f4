package commands

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/viddefe/go-viddefe/internal/commands/churchcmd"
	"github.com/viddefe/go-viddefe/internal/commands/meetingcmd"
	"github.com/viddefe/go-viddefe/internal/commands/offeringcmd"
	"github.com/viddefe/go-viddefe/internal/di"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// ErrUnsupportedHandler is returned by DefaultDispatcher for handlers it cannot subscribe.
var ErrUnsupportedHandler = errors.New("commands: unsupported handler")

// CommandRegistry records command handlers so hosts can expose them via CLI.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	LoggerProvider interfaces.LoggerProvider
}

// RegistrationResult captures the command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Unsubscribe releases every dispatcher subscription.
func (r *RegistrationResult) Unsubscribe() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		sub.Unsubscribe()
	}
	r.Subscriptions = nil
}

// RegisterContainerCommands collects the mutation handlers wired by container
// and optionally registers them with registry and dispatcher integrations.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}
	logger := logging.ModuleLogger(provider, "viddefe.commands")

	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	if container.ChurchService() != nil {
		register(container.SaveChurchHandler())
		register(container.DeleteChurchHandler())
	}
	if container.MeetingService() != nil {
		register(container.SaveMeetingHandler())
		register(container.DeleteMeetingHandler())
		register(container.SetAttendanceHandler())
	}
	if container.OfferingService() != nil {
		register(container.RegisterOfferingHandler())
		register(container.DeleteOfferingHandler())
	}

	logger.Debug("commands.registered", "handlers", len(result.Handlers), "subscriptions", len(result.Subscriptions))

	if len(result.Handlers) == 0 {
		return result, errors.New("no command handlers registered; ensure services are configured")
	}
	return result, errs
}

// DefaultDispatcher subscribes handlers to the go-command global dispatcher,
// retrying failed executions up to MaxRetries times.
type DefaultDispatcher struct {
	MaxRetries int
}

// RegisterCommand satisfies CommandDispatcher.
func (d DefaultDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	opts := []runner.Option{runner.WithMaxRetries(d.MaxRetries)}
	switch h := handler.(type) {
	case *churchcmd.SaveChurchHandler:
		return dispatcher.SubscribeCommand(h, opts...), nil
	case *churchcmd.DeleteChurchHandler:
		return dispatcher.SubscribeCommand(h, opts...), nil
	case *meetingcmd.SaveMeetingHandler:
		return dispatcher.SubscribeCommand(h, opts...), nil
	case *meetingcmd.DeleteMeetingHandler:
		return dispatcher.SubscribeCommand(h, opts...), nil
	case *meetingcmd.SetAttendanceHandler:
		return dispatcher.SubscribeCommand(h, opts...), nil
	case *offeringcmd.RegisterOfferingHandler:
		return dispatcher.SubscribeCommand(h, opts...), nil
	case *offeringcmd.DeleteOfferingHandler:
		return dispatcher.SubscribeCommand(h, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedHandler, handler)
	}
}

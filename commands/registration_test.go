package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command/dispatcher"

	"github.com/viddefe/go-viddefe/commands"
	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/commands/churchcmd"
	"github.com/viddefe/go-viddefe/internal/commands/meetingcmd"
	"github.com/viddefe/go-viddefe/internal/di"
	"github.com/viddefe/go-viddefe/internal/runtimeconfig"
)

// handlerLog is a commands.CommandRegistry that keeps every handler it is given.
type handlerLog struct {
	handlers []any
	err      error
}

func (l *handlerLog) RegisterCommand(handler any) error {
	if l.err != nil {
		return l.err
	}
	l.handlers = append(l.handlers, handler)
	return nil
}

type subscriptionLog struct {
	subs []*loggedSubscription
}

func (l *subscriptionLog) RegisterCommand(handler any) (commands.CommandSubscription, error) {
	sub := &loggedSubscription{handler: handler}
	l.subs = append(l.subs, sub)
	return sub, nil
}

type loggedSubscription struct {
	handler  any
	released bool
}

func (s *loggedSubscription) Unsubscribe() { s.released = true }

func newContainer(t *testing.T) *di.Container {
	t.Helper()
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	return container
}

func TestRegisterContainerCommandsBuildsHandlers(t *testing.T) {
	registry := &handlerLog{}
	recorder := &subscriptionLog{}

	result, err := commands.RegisterContainerCommands(newContainer(t), commands.RegistrationOptions{
		Registry:   registry,
		Dispatcher: recorder,
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	if len(result.Handlers) != 7 {
		t.Fatalf("expected 7 command handlers, got %d", len(result.Handlers))
	}
	if len(result.Handlers) != len(registry.handlers) {
		t.Fatalf("expected registry to record all handlers, got %d of %d", len(registry.handlers), len(result.Handlers))
	}
	if len(result.Subscriptions) != len(recorder.subs) {
		t.Fatalf("expected one subscription per handler, got %d", len(result.Subscriptions))
	}

	var hasAttendance bool
	for _, handler := range result.Handlers {
		if _, ok := handler.(*meetingcmd.SetAttendanceHandler); ok {
			hasAttendance = true
		}
	}
	if !hasAttendance {
		t.Fatal("expected attendance handler to be registered")
	}

	result.Unsubscribe()
	for _, sub := range recorder.subs {
		if !sub.released {
			t.Fatalf("expected subscription for %T to be released", sub.handler)
		}
	}
}

func TestRegisterContainerCommandsWithoutRegistrars(t *testing.T) {
	result, err := commands.RegisterContainerCommands(newContainer(t), commands.RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) == 0 {
		t.Fatal("expected handlers to be built even without registrars")
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no dispatcher subscriptions without dispatcher, got %d", len(result.Subscriptions))
	}
}

func TestRegisterContainerCommandsJoinsRegistrarErrors(t *testing.T) {
	boom := errors.New("registry offline")
	registry := &handlerLog{}
	registry.err = boom

	result, err := commands.RegisterContainerCommands(newContainer(t), commands.RegistrationOptions{Registry: registry})
	if !errors.Is(err, boom) {
		t.Fatalf("expected registry error, got %v", err)
	}
	if len(result.Handlers) == 0 {
		t.Fatal("expected handlers to be returned alongside the error")
	}
}

func TestDefaultDispatcherRoutesCommands(t *testing.T) {
	ctx := context.Background()
	container := newContainer(t)

	result, err := commands.RegisterContainerCommands(container, commands.RegistrationOptions{
		Dispatcher: commands.DefaultDispatcher{MaxRetries: 0},
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	t.Cleanup(result.Unsubscribe)

	if err := dispatcher.Dispatch(ctx, churchcmd.SaveChurchCommand{Name: "Iglesia del Sur"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	page, err := container.ChurchService().List(ctx, domain.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalElements != 1 || page.Content[0].Name != "Iglesia del Sur" {
		t.Fatalf("expected dispatched church to be stored, got %+v", page.Content)
	}
}

func TestDefaultDispatcherRejectsUnknownHandlers(t *testing.T) {
	if _, err := (commands.DefaultDispatcher{}).RegisterCommand(struct{}{}); !errors.Is(err, commands.ErrUnsupportedHandler) {
		t.Fatalf("expected unsupported handler, got %v", err)
	}
}

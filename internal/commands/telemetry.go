package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// TelemetryStatus captures the result category for command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes a command execution outcome.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once after every executed command.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// OutcomeRecorder receives command outcomes, e.g. a metrics collector.
type OutcomeRecorder interface {
	MutationFinished(name string, err error, elapsed time.Duration)
}

// DefaultTelemetry logs command outcomes with logger.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = logging.Ensure(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logger
		if info.Logger != nil {
			entry = info.Logger
		} else if info.Fields != nil {
			entry = logging.WithFields(entry, info.Fields)
		}
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusContextError:
			entry.Error("command.execute.context_error", append(args, "error", info.Error)...)
		default:
			entry.Error("command.execute.failed", append(args, "error", info.Error)...)
		}
	}
}

// RecordingTelemetry logs like DefaultTelemetry and forwards the outcome to recorder.
func RecordingTelemetry[T command.Message](logger interfaces.Logger, recorder OutcomeRecorder) Telemetry[T] {
	base := DefaultTelemetry[T](logger)
	if recorder == nil {
		return base
	}
	return func(ctx context.Context, msg T, info TelemetryInfo) {
		base(ctx, msg, info)
		name := info.Operation
		if name == "" {
			name = info.Command
		}
		recorder.MutationFinished(name, info.Error, info.Duration)
	}
}

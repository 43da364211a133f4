package logging

import (
	"context"
	"strings"

	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

const (
	rootModule      = "viddefe"
	queryModule     = "viddefe.query"
	formsModule     = "viddefe.forms"
	geoModule       = "viddefe.geo"
	remoteModule    = "viddefe.remote"
	eventsModule    = "viddefe.events"
	fixturesModule  = "viddefe.fixtures"
	dependentModule = "viddefe.dependent"
)

const (
	fieldResource = "resource"
	fieldEntityID = "entity_id"
	fieldAction   = "action"
)

// ModuleLogger returns a logger scoped to module. A nil provider yields a
// no-op logger. The module name is attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// QueryLogger returns the logger used by remote entity queries.
func QueryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, queryModule)
}

// FormsLogger returns the logger used by screen controllers.
func FormsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, formsModule)
}

// GeoLogger returns the logger used by the geographic catalog.
func GeoLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, geoModule)
}

// RemoteLogger returns the logger used by the backend HTTP client.
func RemoteLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, remoteModule)
}

// EventsLogger returns the logger used by invalidation buses.
func EventsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, eventsModule)
}

// FixturesLogger returns the logger used while seeding fixtures.
func FixturesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, fixturesModule)
}

// DependentLogger returns the logger used by dependent collections.
func DependentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, dependentModule)
}

// WithEntityContext adds resource, entity id and action fields. Empty values are skipped.
func WithEntityContext(logger interfaces.Logger, resource, id, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(resource); trimmed != "" {
		fields[fieldResource] = trimmed
	}
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		fields[fieldEntityID] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

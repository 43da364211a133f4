package commands

import (
	"strings"

	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// CommandLogger scopes provider to a mutation family such as "churches" or "attendance".
func CommandLogger(provider interfaces.LoggerProvider, family string) interfaces.Logger {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" {
		family = "general"
	}
	logger := logging.ModuleLogger(provider, "viddefe.mutations."+family)
	return logging.WithFields(logger, map[string]any{"mutation_family": family})
}

// EnsureLogger falls back to a no-op logger.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	return logging.Ensure(logger)
}

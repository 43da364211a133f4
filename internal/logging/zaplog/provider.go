// Package zaplog adapts go.uber.org/zap to the logging contracts.
package zaplog

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// Config selects the zap preset and level.
type Config struct {
	Level     string
	Format    string
	AddSource bool
}

// Provider names zap child loggers after modules.
type Provider struct {
	root *zap.Logger
}

// NewProvider builds a zap logger. Format "console" uses the development
// preset, anything else the production JSON preset.
func NewProvider(cfg Config) (*Provider, error) {
	var zcfg zap.Config
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		zcfg = zap.NewProductionConfig()
	case "console", "pretty":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("logging: unsupported zap format %q", cfg.Format)
	}
	if level := strings.TrimSpace(cfg.Level); level != "" {
		parsed, err := zapcore.ParseLevel(normalizeLevel(level))
		if err != nil {
			return nil, fmt.Errorf("logging: invalid zap level %q: %w", cfg.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	zcfg.DisableCaller = !cfg.AddSource

	root, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build zap logger: %w", err)
	}
	return &Provider{root: root}, nil
}

// NewFromLogger wraps an existing zap logger.
func NewFromLogger(root *zap.Logger) *Provider {
	return &Provider{root: root}
}

// GetLogger satisfies interfaces.LoggerProvider.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	logger := p.root
	if name = strings.TrimSpace(name); name != "" {
		logger = logger.Named(name)
	}
	return &adapter{sugar: logger.Sugar()}
}

// Sync flushes buffered entries.
func (p *Provider) Sync() error {
	if p == nil || p.root == nil {
		return nil
	}
	return p.root.Sync()
}

type adapter struct {
	sugar *zap.SugaredLogger
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

// zap has no trace level.
func (l *adapter) Trace(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *adapter) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }
func (l *adapter) Fatal(msg string, args ...any) { l.sugar.Fatalw(msg, args...) }

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	return &adapter{sugar: l.sugar.With(flatten(fields)...)}
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	return l.WithFields(logging.ContextFields(ctx))
}

func flatten(fields map[string]any) []any {
	args := make([]any, 0, len(fields)*2)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "trace":
		return "debug"
	case "warning":
		return "warn"
	default:
		return strings.ToLower(level)
	}
}

package gologger

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

// Namespace prefixes every viddefe module logger name.
const Namespace = "viddefe"

// Config holds the go-logger options exposed through runtime configuration.
// Focus entries may name a module without the namespace ("forms") or a list
// separated by commas.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

var formats = map[string]func() glog.Option{
	"":        glog.WithLoggerTypeJSON,
	"json":    glog.WithLoggerTypeJSON,
	"console": glog.WithLoggerTypeConsole,
	"pretty":  glog.WithLoggerTypePretty,
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// Provider hands out go-logger module loggers. Loggers are built once per
// module name; screens and collections ask for the same names repeatedly.
type Provider struct {
	root    *glog.BaseLogger
	modules sync.Map // module name -> interfaces.Logger
}

// NewProvider builds the go-logger root logger from cfg.
func NewProvider(cfg Config) (*Provider, error) {
	format, ok := formats[key(cfg.Format)]
	if !ok {
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}
	options := []glog.Option{format()}
	if level, ok := levels[key(cfg.Level)]; ok {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	if focus := FocusModules(cfg.Focus); len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

// GetLogger returns the logger for module, or the root for an empty name.
func (p *Provider) GetLogger(module string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	module = strings.TrimSpace(module)
	if module == "" {
		return wrap(p.root)
	}
	if cached, ok := p.modules.Load(module); ok {
		return cached.(interfaces.Logger)
	}
	logger, _ := p.modules.LoadOrStore(module, wrap(p.root.GetLogger(module)))
	return logger.(interfaces.Logger)
}

// FocusModules expands focus entries into module logger names.
func FocusModules(entries []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, entry := range entries {
		for _, name := range strings.Split(entry, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if name != Namespace && !strings.HasPrefix(name, Namespace+".") {
				name = Namespace + "." + name
			}
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func key(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

// adapter forwards to go-logger. Fields come from WithFields and from context
// fields set with logging.ContextWithFields.
type adapter struct {
	inner glog.Logger
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

// WithFields returns the receiver when go-logger cannot carry fields.
func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	with, ok := l.inner.(glog.FieldsLogger)
	if !ok || len(fields) == 0 {
		return l
	}
	return wrap(with.WithFields(maps.Clone(fields)))
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	bound := &adapter{inner: l.inner.WithContext(ctx)}
	return bound.WithFields(logging.ContextFields(ctx))
}

package gologger

import (
	"context"
	"slices"
	"testing"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/viddefe/go-viddefe/internal/logging"
)

func TestNewProviderCreatesLogger(t *testing.T) {
	p, err := NewProvider(Config{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}

	logger := p.GetLogger("viddefe.test")
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
	logger.Debug("adapter.initialised")
}

func TestNewProviderRejectsUnknownFormat(t *testing.T) {
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestAdapterDelegatesToUnderlyingLogger(t *testing.T) {
	stub := &stubLogger{}
	adapted := wrap(stub)

	adapted.Trace("trace", "key", "value")
	adapted.Debug("debug")
	adapted.Info("info")
	adapted.Warn("warn")
	adapted.Error("error")
	adapted.Fatal("fatal")

	fields := map[string]any{"resource": "churches"}
	if child := adapted.(*adapter).WithFields(fields); child == nil {
		t.Fatal("expected WithFields to return logger")
	}

	fields["resource"] = "people"
	if len(stub.fields) != 1 || stub.fields[0]["resource"] != "churches" {
		t.Fatalf("expected cloned fields, got %v", stub.fields)
	}

	ctx := logging.ContextWithFields(context.Background(), map[string]any{"query": "church"})
	adapted.WithContext(ctx)
	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context propagation, got %#v", stub.contexts)
	}
	if len(stub.fields) != 2 || stub.fields[1]["query"] != "church" {
		t.Fatalf("expected context fields lifted, got %v", stub.fields)
	}

	want := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if len(stub.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(stub.calls))
	}
	for i := range want {
		if stub.calls[i] != want[i] {
			t.Fatalf("call %d: expected %q, got %q", i, want[i], stub.calls[i])
		}
	}
}

func TestProviderReusesModuleLoggers(t *testing.T) {
	p, err := NewProvider(Config{Format: "json"})
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	if p.GetLogger("viddefe.forms") != p.GetLogger(" viddefe.forms ") {
		t.Fatal("expected one logger per module name")
	}
	if p.GetLogger("viddefe.forms") == p.GetLogger("viddefe.geo") {
		t.Fatal("expected distinct loggers for distinct modules")
	}
}

func TestFocusModulesExpandsShortNames(t *testing.T) {
	got := FocusModules([]string{"forms, geo", "viddefe.dependent", "", "forms", "viddefe"})
	want := []string{"viddefe.forms", "viddefe.geo", "viddefe.dependent", "viddefe"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNilProviderReturnsNoOp(t *testing.T) {
	var p *Provider
	p.GetLogger("x").Info("dropped")
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.fields = append(s.fields, copied)
	return s
}

package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/viddefe/go-viddefe/internal/runtimeconfig"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidateStorage(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}

	cfg.Storage.DSN = "file::memory:"
	cfg.Storage.Driver = "oracle"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "http"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrBackendURLRequired) {
		t.Fatalf("expected ErrBackendURLRequired, got %v", err)
	}

	cfg.Storage.Provider = "ftp"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}

func TestConfigValidateCoordinateOrder(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Map.CoordinateOrder = "xy"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCoordinateOrderInvalid) {
		t.Fatalf("expected ErrCoordinateOrderInvalid, got %v", err)
	}

	cfg.Map.CoordinateOrder = "LNG_LAT"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected legacy order to validate, got %v", err)
	}
	if !cfg.Map.SwapsCoordinates() {
		t.Fatal("expected lng_lat to swap coordinates")
	}
}

func TestConfigValidateEventsAndLogging(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Events = true
	cfg.Events.Provider = "nats"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrNATSURLRequired) {
		t.Fatalf("expected ErrNATSURLRequired, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}

	cfg.Logging.Provider = "zap"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestConfigValidatePagination(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Pagination.PageSizes = []int{10, 0}
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrPageSizeInvalid) {
		t.Fatalf("expected ErrPageSizeInvalid, got %v", err)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := runtimeconfig.Parse([]byte(`
storage:
  provider: http
backend:
  base_url: https://api.example.org
  timeout: 5s
map:
  coordinate_order: lng_lat
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Storage.Provider != "http" || cfg.Backend.BaseURL != "https://api.example.org" {
		t.Fatalf("unexpected overlay %+v", cfg)
	}
	if cfg.Backend.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.Backend.Timeout)
	}
	if cfg.Pagination.DefaultPageSize != 10 {
		t.Fatalf("expected default page size to survive, got %d", cfg.Pagination.DefaultPageSize)
	}
}

func TestLoaderLayersUserProjectAndExplicitFiles(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	nested := filepath.Join(work, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(home, runtimeconfig.UserConfigDir, runtimeconfig.UserConfigFile), "pagination:\n  default_page_size: 20\nlogging:\n  level: debug\n")
	writeFile(t, filepath.Join(work, runtimeconfig.ProjectConfigFile), "pagination:\n  default_page_size: 50\n")
	explicit := filepath.Join(t.TempDir(), "override.yaml")
	writeFile(t, explicit, "map:\n  default_zoom: 3\n")

	loader := &runtimeconfig.Loader{HomeDir: home, WorkDir: nested}
	cfg, applied, err := loader.Load(explicit)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(applied) != 3 {
		t.Fatalf("expected 3 applied layers, got %v", applied)
	}
	if cfg.Pagination.DefaultPageSize != 50 {
		t.Fatalf("expected project file to win, got %d", cfg.Pagination.DefaultPageSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected user level to survive, got %s", cfg.Logging.Level)
	}
	if cfg.Map.DefaultZoom != 3 {
		t.Fatalf("expected explicit override, got %d", cfg.Map.DefaultZoom)
	}
}

func TestLoaderMissingExplicitFileFails(t *testing.T) {
	loader := &runtimeconfig.Loader{HomeDir: t.TempDir(), WorkDir: t.TempDir()}
	if _, _, err := loader.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit file")
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

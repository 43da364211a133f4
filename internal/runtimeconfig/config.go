package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var (
	ErrStorageProviderUnknown   = errors.New("viddefe config: storage provider is invalid")
	ErrStorageDSNRequired       = errors.New("viddefe config: storage dsn is required for the bun provider")
	ErrStorageDriverUnknown     = errors.New("viddefe config: storage driver is invalid")
	ErrBackendURLRequired       = errors.New("viddefe config: backend base url is required for the http provider")
	ErrCoordinateOrderInvalid   = errors.New("viddefe config: map coordinate order is invalid")
	ErrPageSizeInvalid          = errors.New("viddefe config: page size must be positive")
	ErrEventsProviderUnknown    = errors.New("viddefe config: events provider is invalid")
	ErrNATSURLRequired          = errors.New("viddefe config: nats url is required for the nats events provider")
	ErrCommandRetriesInvalid    = errors.New("viddefe config: command retries must be zero or positive")
	ErrLoggingProviderRequired  = errors.New("viddefe config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown   = errors.New("viddefe config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("viddefe config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("viddefe config: logging format is invalid")
	ErrQueryCapacityInvalid     = errors.New("viddefe config: query cache capacity must be positive")
	ErrMetricsNamespaceRequired = errors.New("viddefe config: metrics namespace is required when metrics are enabled")
)

const (
	StorageMemory = "memory"
	StorageBun    = "bun"
	StorageHTTP   = "http"

	EventsMemory = "memory"
	EventsNATS   = "nats"

	// CoordinateLatLng stores the map latitude in the latitude field.
	CoordinateLatLng = "lat_lng"
	// CoordinateLngLat swaps the axes for backends that persist them reversed.
	CoordinateLngLat = "lng_lat"
)

// Config aggregates runtime settings for the client core.
type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	Storage    StorageConfig    `yaml:"storage"`
	Cache      CacheConfig      `yaml:"cache"`
	Query      QueryConfig      `yaml:"query"`
	Pagination PaginationConfig `yaml:"pagination"`
	Map        MapConfig        `yaml:"map"`
	Commands   CommandsConfig   `yaml:"commands"`
	Events     EventsConfig     `yaml:"events"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Features   Features         `yaml:"features"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// BackendConfig points the http data source at the REST backend.
type BackendConfig struct {
	BaseURL     string         `yaml:"base_url"`
	Timeout     time.Duration  `yaml:"timeout"`
	Token       string         `yaml:"token"`
	RouteConfig *urlkit.Config `yaml:"-"`
}

// StorageConfig selects where entities are read from and written to.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
}

// CacheConfig controls the repository cache used by bun repositories.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// QueryConfig controls remote entity query caching.
type QueryConfig struct {
	StaleTime time.Duration `yaml:"stale_time"`
	Capacity  int           `yaml:"capacity"`
}

// PaginationConfig holds table defaults.
type PaginationConfig struct {
	DefaultPageSize int   `yaml:"default_page_size"`
	PageSizes       []int `yaml:"page_sizes"`
}

// MapConfig holds the map defaults and the coordinate convention.
type MapConfig struct {
	CoordinateOrder string  `yaml:"coordinate_order"`
	DefaultLat      float64 `yaml:"default_lat"`
	DefaultLng      float64 `yaml:"default_lng"`
	DefaultZoom     int     `yaml:"default_zoom"`
}

// CommandsConfig tunes mutation command execution.
type CommandsConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// EventsConfig selects the entity change bus.
type EventsConfig struct {
	Provider string `yaml:"provider"`
	NATSURL  string `yaml:"nats_url"`
	Subject  string `yaml:"subject"`
}

// MetricsConfig toggles prometheus collectors.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// Features toggles optional behaviour.
type Features struct {
	Logger  bool `yaml:"logger"`
	Metrics bool `yaml:"metrics"`
	Events  bool `yaml:"events"`
}

// LoggingConfig captures provider specific logging options.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns an in-memory configuration suitable for tests and demos.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			Timeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			Provider: StorageMemory,
			Driver:   "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Query: QueryConfig{
			StaleTime: 30 * time.Second,
			Capacity:  1024,
		},
		Pagination: PaginationConfig{
			DefaultPageSize: 10,
			PageSizes:       []int{5, 10, 20, 50},
		},
		Map: MapConfig{
			CoordinateOrder: CoordinateLatLng,
			DefaultLat:      4.711,
			DefaultLng:      -74.0721,
			DefaultZoom:     12,
		},
		Commands: CommandsConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 0,
		},
		Events: EventsConfig{
			Provider: EventsMemory,
			Subject:  "viddefe.entities",
		},
		Metrics: MetricsConfig{
			Namespace: "viddefe",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs consistency checks across sections.
func (cfg Config) Validate() error {
	switch normalize(cfg.Storage.Provider) {
	case StorageMemory:
	case StorageBun:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
		if driver := normalize(cfg.Storage.Driver); driver != "sqlite" && driver != "postgres" {
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
		}
	case StorageHTTP:
		if strings.TrimSpace(cfg.Backend.BaseURL) == "" {
			return ErrBackendURLRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	switch normalize(cfg.Map.CoordinateOrder) {
	case "", CoordinateLatLng, CoordinateLngLat:
	default:
		return fmt.Errorf("%w: %s", ErrCoordinateOrderInvalid, cfg.Map.CoordinateOrder)
	}

	if cfg.Pagination.DefaultPageSize <= 0 {
		return ErrPageSizeInvalid
	}
	for _, size := range cfg.Pagination.PageSizes {
		if size <= 0 {
			return fmt.Errorf("%w: %d", ErrPageSizeInvalid, size)
		}
	}
	if cfg.Query.Capacity <= 0 {
		return ErrQueryCapacityInvalid
	}
	if cfg.Commands.MaxRetries < 0 {
		return ErrCommandRetriesInvalid
	}

	if cfg.Features.Events {
		switch normalize(cfg.Events.Provider) {
		case EventsMemory:
		case EventsNATS:
			if strings.TrimSpace(cfg.Events.NATSURL) == "" {
				return ErrNATSURLRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrEventsProviderUnknown, cfg.Events.Provider)
		}
	}

	if cfg.Features.Metrics && strings.TrimSpace(cfg.Metrics.Namespace) == "" {
		return ErrMetricsNamespaceRequired
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider != "console" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// SwapsCoordinates reports whether the legacy lng/lat convention is configured.
func (m MapConfig) SwapsCoordinates() bool {
	return normalize(m.CoordinateOrder) == CoordinateLngLat
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "zap":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

package viddefe

import "github.com/viddefe/go-viddefe/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown   = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrStorageDriverUnknown     = runtimeconfig.ErrStorageDriverUnknown
	ErrBackendURLRequired       = runtimeconfig.ErrBackendURLRequired
	ErrCoordinateOrderInvalid   = runtimeconfig.ErrCoordinateOrderInvalid
	ErrPageSizeInvalid          = runtimeconfig.ErrPageSizeInvalid
	ErrEventsProviderUnknown    = runtimeconfig.ErrEventsProviderUnknown
	ErrNATSURLRequired          = runtimeconfig.ErrNATSURLRequired
	ErrCommandRetriesInvalid    = runtimeconfig.ErrCommandRetriesInvalid
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrQueryCapacityInvalid     = runtimeconfig.ErrQueryCapacityInvalid
	ErrMetricsNamespaceRequired = runtimeconfig.ErrMetricsNamespaceRequired
)

type (
	Config           = runtimeconfig.Config
	BackendConfig    = runtimeconfig.BackendConfig
	StorageConfig    = runtimeconfig.StorageConfig
	CacheConfig      = runtimeconfig.CacheConfig
	QueryConfig      = runtimeconfig.QueryConfig
	PaginationConfig = runtimeconfig.PaginationConfig
	MapConfig        = runtimeconfig.MapConfig
	CommandsConfig   = runtimeconfig.CommandsConfig
	EventsConfig     = runtimeconfig.EventsConfig
	MetricsConfig    = runtimeconfig.MetricsConfig
	Features         = runtimeconfig.Features
	LoggingConfig    = runtimeconfig.LoggingConfig
)

// DefaultConfig returns an in-memory configuration.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig layers the user and project YAML files, then explicit, over the
// defaults. It also returns the files that were read.
func LoadConfig(explicit string) (Config, []string, error) {
	return runtimeconfig.NewLoader().Load(explicit)
}

// Package config defines the global configuration structure for the MCASS
// snow situation dashboard. Configuration is loaded once at process startup
// and is immutable thereafter, in the 12-Factor style of keeping settings
// out of the code.
//
// A variable set in the OS environment always beats the same variable in a
// .env file. Any missing required value or invalid format aborts startup
// immediately. In particular, a data directory that does not exist is a
// startup error, while individual basins missing their export files are not.
package config

import "time"

// Config is the top-level configuration struct for the dashboard. It is
// populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// Process identity
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"OTEL_SERVICE_NAME" default:"mcass-dashboard"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Per-concern sections
	Data          DataConfig
	Server        ServerConfig
	Cache         CacheConfig
	Chart         ChartConfig
	Security      SecurityConfig
	Observability ObservabilityConfig

	// Stamped by the linker, not read from the environment.
	Build BuildInfo
}

// DataConfig locates the snow model's export directory. The directory holds
// one <basin_code>_current.txt and one <basin_code>_climate.txt per basin,
// plus an optional basin metadata file mapping codes to names and rivers.
type DataConfig struct {
	Path         string `envconfig:"MCASS_DATA_PATH" validate:"required"`
	MetadataFile string `envconfig:"MCASS_BASIN_METADATA" default:"basins.txt"`
}

// ServerConfig holds HTTP server tuning parameters.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	// Per-request deadline enforced by middleware, kept below the typical
	// upstream proxy timeout of 30s.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
}

// CacheConfig tunes the in-memory basin dataset cache. The cache is a
// transient accelerator only; disabling it changes latency, never results.
type CacheConfig struct {
	Enabled   bool          `envconfig:"CACHE_ENABLED" default:"true"`
	MaxBasins int           `envconfig:"CACHE_MAX_BASINS" default:"64"`
	TTL       time.Duration `envconfig:"CACHE_TTL" default:"5m"`
}

// ChartConfig holds the pixel dimensions of rendered charts. Bounds keep a
// single request from allocating unreasonable raster buffers.
type ChartConfig struct {
	Width  int `envconfig:"CHART_WIDTH" default:"1024" validate:"min=320,max=4096"`
	Height int `envconfig:"CHART_HEIGHT" default:"400" validate:"min=240,max=2160"`
}

// SecurityConfig holds CORS settings for browser clients embedding charts.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ObservabilityConfig names the Prometheus namespace all dashboard metrics
// are registered under.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"mcass"`
}

// BuildInfo carries the version identifiers the linker stamps into the
// binary. See build.go for the ldflags incantation.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType names the loading stage a startup failure came from.
type ConfigErrorType string

const (
	// ErrValidation means a value was present but violated its validate tag.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing means an environment variable could not be converted to
	// its field's type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrDataDir means the configured data directory is missing or not a
	// directory.
	ErrDataDir ConfigErrorType = "DATA_DIR_INVALID"
)

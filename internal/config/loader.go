// loader.go implements the configuration loading lifecycle for the dashboard.
//
// LoadConfig walks these stages in order:
//  1. Pin the process timezone to UTC.
//  2. Merge a .env file into the environment when one is present.
//  3. Populate the Config struct from envconfig struct tags.
//  4. Stamp BuildInfo from the linker-injected variables.
//  5. Validate the struct with go-playground/validator.
//  6. Verify the data directory exists and is a directory.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError carries a classified ConfigErrorType alongside the message so
// startup failures are attributable to a loading stage at a glance.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadConfig loads and validates the dashboard configuration.
//
// It runs the loading sequence documented at the top of this file. A missing
// or invalid data directory is a fatal startup error. Basins with missing
// export files inside an existing directory are handled per request instead.
func LoadConfig() (*Config, error) {
	// Step 1: pin the timezone. All export file dates are calendar days;
	// mixing local zones would shift them.
	time.Local = time.UTC

	// Step 2: merge a .env file when one exists. godotenv.Load() errors
	// when the file is absent, which is the normal case outside local
	// development, so the error is discarded. Already-set environment
	// variables are never overridden.
	_ = godotenv.Load()

	// Step 3: populate the struct from the environment. The empty prefix
	// makes envconfig read the tag values verbatim, so envconfig:"APP_ENV"
	// reads APP_ENV.
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "cannot parse environment variables into config",
			Err:     err,
		}
	}

	// Step 4: stamp build metadata.
	cfg.Build = NewBuildInfo()

	// Step 5: validate the populated struct.
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "invalid configuration values",
			Err:     err,
		}
	}

	// Step 6: verify the data directory. The dashboard cannot serve anything
	// without it, so a bad path aborts startup rather than failing every
	// request later.
	if err := verifyDataDir(cfg.Data.Path); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// verifyDataDir checks that path exists and is a directory.
func verifyDataDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &ConfigError{
			Type:    ErrDataDir,
			Message: fmt.Sprintf("data directory %q is not accessible", path),
			Err:     err,
		}
	}
	if !info.IsDir() {
		return &ConfigError{
			Type:    ErrDataDir,
			Message: fmt.Sprintf("data path %q is not a directory", path),
		}
	}
	return nil
}

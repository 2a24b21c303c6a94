package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
)

var ErrStorageDriverUnknown = errors.New("spl config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("spl config: storage dsn is required for the sqlite driver")
var ErrLoggingProviderUnknown = errors.New("spl config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("spl config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("spl config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the SPL
// module. Fields use simple types so host applications can extend them.
type Config struct {
	Storage  StorageConfig
	Logging  LoggingConfig
	Features Features
}

// StorageConfig selects the persistence backend. The memory driver keeps
// everything in process and needs no DSN.
type StorageConfig struct {
	Driver string
	DSN    string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
}

// Features toggles module functionality.
type Features struct {
	Documents bool
	Media     bool
}

// DefaultConfig returns defaults suitable for embedding: in-memory
// storage, console logging, everything enabled.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver: "memory",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Features: Features{
			Documents: true,
			Media:     true,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	switch driver {
	case "", "memory":
	case "sqlite":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
	switch provider {
	case "", "console", "gologger", "noop":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

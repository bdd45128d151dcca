// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/mmynk/dtlattendance/internal/storage"
	"github.com/mmynk/dtlattendance/internal/storage/memory"
	"github.com/mmynk/dtlattendance/internal/storage/sqlite"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds settings shared by every command.
type Config struct {
	DBPath         string        `env:"DTL_DB_PATH" envDefault:"./data/attendance.db"`
	StorageBackend string        `env:"DTL_STORAGE_BACKEND" envDefault:"sqlite"`
	HTTPAddr       string        `env:"DTL_HTTP_ADDR" envDefault:":8080"`
	WriteTimeout   time.Duration `env:"DTL_WRITE_TIMEOUT" envDefault:"5s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file from the working directory and then
// parses the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}
	return Parse()
}

// Parse parses the process environment into a Config without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values env tags cannot express.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend %q: must be %s or %s", c.StorageBackend, BackendSQLite, BackendMemory)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %s", c.WriteTimeout)
	}
	return nil
}

// OpenStorage opens the configured persistent store.
func (c Config) OpenStorage() (storage.Store, error) {
	if c.StorageBackend == BackendMemory {
		return memory.New(), nil
	}
	store, err := sqlite.New(c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	return store, nil
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (stores, library source) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the reader.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StoreDriver selects the progress & settings backend: sqlite, postgres, redis or memory.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`

	// Embedded database (SQLite)
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/reader.db"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis)
	RedisURL string `env:"REDIS_URL"`

	// LibrarySource selects where comics come from: dir or drive.
	LibrarySource string `env:"LIBRARY_SOURCE" envDefault:"dir"`
	LibraryDir    string `env:"LIBRARY_DIR"    envDefault:"./library"`

	// Cloud storage (Google Drive)
	DriveRootFolderID   string `env:"DRIVE_ROOT_FOLDER_ID"`
	DriveAPIKey         string `env:"DRIVE_API_KEY"`
	DriveAccessToken    string `env:"DRIVE_ACCESS_TOKEN"`
	DriveCredentialFile string `env:"DRIVE_CREDENTIALS_FILE"`

	// Reader tuning
	PrefetchWindow int   `env:"PREFETCH_WINDOW" envDefault:"3"`
	MaxEntryBytes  int64 `env:"MAX_ENTRY_BYTES" envDefault:"67108864"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the fields each selected backend requires.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case "redis":
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of sqlite, postgres, redis, memory", c.StoreDriver))
	}

	switch c.LibrarySource {
	case "dir":
		if c.LibraryDir == "" {
			errs = append(errs, errors.New("LIBRARY_DIR is required for the dir library source"))
		}
	case "drive":
		if c.DriveRootFolderID == "" {
			errs = append(errs, errors.New("DRIVE_ROOT_FOLDER_ID is required for the drive library source"))
		}
		if c.DriveAPIKey == "" && c.DriveAccessToken == "" && c.DriveCredentialFile == "" {
			errs = append(errs, errors.New("one of DRIVE_API_KEY, DRIVE_ACCESS_TOKEN or DRIVE_CREDENTIALS_FILE is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("LIBRARY_SOURCE %q is not one of dir, drive", c.LibrarySource))
	}

	if c.PrefetchWindow < 0 {
		errs = append(errs, errors.New("PREFETCH_WINDOW cannot be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

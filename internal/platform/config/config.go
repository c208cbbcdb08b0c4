// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

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
  - DI-Friendly: Passed to core components (token store, API client, gateway)
    via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Taskdeck gateway.
type Config struct {

	// Gateway settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"3000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Backend API the client talks to
	BackendBaseURL string `env:"BACKEND_API_BASE_URL" envDefault:"http://localhost:8000"`

	// UseMockBackend serves an in-process fake backend instead of dialing
	// BackendBaseURL. Development convenience only.
	UseMockBackend bool `env:"USE_MOCK_API" envDefault:"false"`

	// MockJWTSecret signs the fake backend's tokens. Development only.
	MockJWTSecret string `env:"MOCK_JWT_SECRET" envDefault:"taskdeck-dev-secret"`

	// Token lifecycle
	TokenLifetime   time.Duration `env:"TOKEN_LIFETIME"             envDefault:"30m"`
	ExpiryThreshold time.Duration `env:"TOKEN_EXPIRATION_THRESHOLD" envDefault:"5m"`

	// Request behaviour
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	RetryAttempts  int           `env:"RETRY_ATTEMPTS"  envDefault:"3"`
	RetryDelay     time.Duration `env:"RETRY_DELAY"     envDefault:"1s"`

	// Credential persistence. TokenStorePath selects the file-backed store;
	// RedisURL (when set) selects the Redis-backed store instead.
	TokenStorePath string `env:"TOKEN_STORE_PATH" envDefault:".taskdeck/credential.json"`
	RedisURL       string `env:"REDIS_URL"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the gateway is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the gateway is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

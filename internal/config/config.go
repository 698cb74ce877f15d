// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

// Package config provides layered configuration loading for Pictonet.
//
// Configuration is resolved from three sources, later layers overriding
// earlier ones:
//  1. Built-in defaults
//  2. An optional YAML config file
//  3. Environment variables
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration for the Pictonet server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Media    MediaConfig    `koanf:"media"`
	NATS     NATSConfig     `koanf:"nats"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production"; production tightens
	// CORS and WebSocket origin checks.
	Environment string `koanf:"environment"`
}

// Addr returns the host:port address to bind.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds the DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Use ":memory:" for an
	// in-memory database (tests).
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory ceiling, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// MediaConfig holds the media store settings.
type MediaConfig struct {
	// Root is the directory where decoded uploads are written.
	Root string `koanf:"root"`

	// MaxBytes is the maximum decoded payload size accepted per upload.
	MaxBytes int64 `koanf:"max_bytes"`
}

// NATSConfig holds the message bus settings for the realtime relay.
type NATSConfig struct {
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server to connect to when EmbeddedServer is false.
	URL string `koanf:"url"`

	// EmbeddedServer runs an in-process NATS server instead of
	// connecting to an external one.
	EmbeddedServer bool `koanf:"embedded_server"`

	// Port for the embedded server listener. -1 picks a random port.
	Port int `koanf:"port"`
}

// APIConfig holds request handling settings.
type APIConfig struct {
	// RateLimitReqs is the number of requests allowed per window per IP.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limit window duration.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled turns off rate limiting entirely.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`

	// CORSOrigins lists the allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must not be negative, got %d", c.Database.Threads)
	}
	if c.Media.Root == "" {
		return fmt.Errorf("media.root must not be empty")
	}
	if c.Media.MaxBytes <= 0 {
		return fmt.Errorf("media.max_bytes must be positive, got %d", c.Media.MaxBytes)
	}
	if c.NATS.Enabled && !c.NATS.EmbeddedServer && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats is enabled without an embedded server")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}

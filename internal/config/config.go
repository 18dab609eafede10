// Package config holds process-level settings read from the environment and
// workspace-level settings read from <data>/.masonry/settings.yaml.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variables consulted by Load.
const (
	EnvLogLevel  = "MASONRY_LOG_LEVEL"
	EnvLogFormat = "MASONRY_LOG_FORMAT"
	EnvWorkers   = "MASONRY_WORKERS"
)

// Config is the process configuration. Zero values are never valid; start
// from Default.
type Config struct {
	LogLevel  string `validate:"required,oneof=debug info warn error"`
	LogFormat string `validate:"required,oneof=text json"`
	// Workers bounds how many certification cells are resolved at once.
	Workers int `validate:"gte=1,lte=64"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() Config {
	return Config{LogLevel: "info", LogFormat: "text", Workers: 4}
}

// Load reads a .env file from the working directory when present, applies
// MASONRY_* variables over Default and validates the result.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a getenv-style lookup.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvLogFormat)); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		cfg.Workers = n
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel onto slog.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string `envconfig:"APP_HOST" default:"0.0.0.0"`
	Port     string `envconfig:"APP_PORT" default:"8080"`
	Env      string `envconfig:"APP_ENV" default:"development"` // "development", "production", "testing"
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// SiteURL is the public base URL used to build product preview links.
	SiteURL string `envconfig:"SITE_URL" default:"http://localhost:8080"`

	// PostgreSQL connection
	DBHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	DBPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	DBUser     string `envconfig:"POSTGRES_USER" default:"landingpress"`
	DBPassword string `envconfig:"POSTGRES_PASSWORD" default:"changeme"`
	DBName     string `envconfig:"POSTGRES_DB" default:"landingpress"`

	// Valkey (Redis-compatible cache)
	ValkeyHost     string `envconfig:"VALKEY_HOST" default:"localhost"`
	ValkeyPort     string `envconfig:"VALKEY_PORT" default:"6379"`
	ValkeyPassword string `envconfig:"VALKEY_PASSWORD"`

	// S3-compatible object storage. Uploads fall back to UploadDir when unset.
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"landingpress"`
	S3PublicURL string `envconfig:"S3_PUBLIC_URL"`

	UploadDir string `envconfig:"UPLOAD_DIR" default:"./uploads"`

	// Initial operator created by the seed command.
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@landingpress.local"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"changeme"`
}

// Load reads configuration from environment variables, after loading a .env
// file from the working directory if one exists. Returns an error if
// critical values are left at their defaults in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, errors.New("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AdminPassword == "changeme" {
			return nil, errors.New("ADMIN_PASSWORD must be set in production")
		}
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasS3 reports whether object storage credentials are configured.
func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

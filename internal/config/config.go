// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// ErrDatabaseURLRequired is returned when DATABASE_URL is not set.
var ErrDatabaseURLRequired = errors.New("config: DATABASE_URL is required")

// Config holds all configuration for the controller, worker and CLI.
type Config struct {
	// Database connection string
	DatabaseURL string `env:"DATABASE_URL, required" json:"-"` // Masked in JSON

	// HTTP server port for the controller
	Port int `env:"PORT, default=8080" json:"port"`

	// Prometheus scrape port for the worker
	MetricsPort int `env:"METRICS_PORT, default=9090" json:"metrics_port"`

	// Worker settings
	JobConcurrency    int           `env:"JOB_CONCURRENCY, default=1" json:"job_concurrency"`
	PollIntervalMs    int           `env:"POLL_INTERVAL_MS, default=1000" json:"poll_interval_ms"`
	MaxBackoff        time.Duration `env:"MAX_BACKOFF, default=30s" json:"max_backoff"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL, default=1m" json:"heartbeat_interval"`
	LeaseDuration     time.Duration `env:"LEASE_DURATION, default=5m" json:"lease_duration"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL, default=1m" json:"sweep_interval"`
	MaxAttempts       int           `env:"MAX_ATTEMPTS, default=2" json:"max_attempts"`

	// Object storage settings
	S3Bucket   string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region   string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"` // For MinIO/localstack

	// Media backend settings (transcription/analysis/transcode service)
	MediaBackendURL   string `env:"MEDIA_BACKEND_URL" json:"media_backend_url,omitempty"`
	MediaBackendToken string `env:"MEDIA_BACKEND_TOKEN" json:"-"` // Masked in JSON

	// Tracing settings
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" json:"otlp_endpoint,omitempty"`

	// URL of the controller API, used by the CLI
	ControllerURL string `env:"CONTROLLER_URL, default=http://localhost:8080" json:"controller_url"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if object storage configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// TracingEnabled returns true if an OTLP collector endpoint is configured.
func (c *Config) TracingEnabled() bool {
	return c.OTLPEndpoint != ""
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(ctx, cfg); err != nil {
		if strings.Contains(err.Error(), "DATABASE_URL") {
			return nil, ErrDatabaseURLRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// String returns a string representation of the config with the database
// credentials masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, MetricsPort: %d, JobConcurrency: %d, PollIntervalMs: %d, LeaseDuration: %s, MaxAttempts: %d, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.MetricsPort,
		c.JobConcurrency,
		c.PollIntervalMs,
		c.LeaseDuration,
		c.MaxAttempts,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// Package worker holds the runtime configuration, metrics, and health
// endpoints for the ingest worker process.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"newshub/internal/pkg/config"
)

// Config controls the worker process. Schedules for the individual
// crawl jobs live in the jobs file (see internal/infra/scheduler);
// this struct covers everything around them.
type Config struct {
	// Timezone is the IANA timezone the scheduler runs in.
	// Default: "Asia/Tokyo"
	Timezone string

	// JobsFile is the path to the YAML job definitions. Empty means
	// built-in defaults.
	JobsFile string

	// CrawlTimeout caps a single crawl job run.
	// Default: 30 minutes
	CrawlTimeout time.Duration

	// IngestConcurrency is the number of queue messages processed in
	// parallel. Range: 1-50. Default: 10
	IngestConcurrency int

	// HealthPort serves the liveness/readiness endpoints.
	// Range: 1024-65535. Default: 9091
	HealthPort int
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() Config {
	return Config{
		Timezone:          "Asia/Tokyo",
		JobsFile:          "",
		CrawlTimeout:      30 * time.Minute,
		IngestConcurrency: 10,
		HealthPort:        9091,
	}
}

// Validate checks every field and returns all failures at once.
func (c *Config) Validate() error {
	var errs []error

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.CrawlTimeout); err != nil {
		errs = append(errs, fmt.Errorf("crawl timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.IngestConcurrency, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("ingest concurrency: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables with a fail-open strategy: an invalid value falls back to
// its default with a warning and a metrics bump, and the returned
// config is always valid.
//
// Environment variables:
//   - WORKER_TIMEZONE:     IANA timezone name (default "Asia/Tokyo")
//   - WORKER_JOBS_FILE:    path to the YAML job definitions
//   - CRAWL_TIMEOUT:       duration string, e.g. "30m" (1m-4h)
//   - INGEST_CONCURRENCY:  integer 1-50 (default 10)
//   - WORKER_HEALTH_PORT:  integer 1024-65535 (default 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *Metrics) (*Config, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	warn := func(field string, result config.ConfigLoadResult) {
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, warning := range result.Warnings {
			logger.Warn("configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		warn("timezone", result)
	}

	// パスの妥当性はスケジューラのロード時に判定するのでここでは検証しない
	cfg.JobsFile = config.LoadEnvString("WORKER_JOBS_FILE", cfg.JobsFile)

	result = config.LoadEnvDuration("CRAWL_TIMEOUT", cfg.CrawlTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 4*time.Hour)
	})
	cfg.CrawlTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		warn("crawl_timeout", result)
	}

	result = config.LoadEnvInt("INGEST_CONCURRENCY", cfg.IngestConcurrency, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.IngestConcurrency = result.Value.(int)
	if result.FallbackApplied {
		warn("ingest_concurrency", result)
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		warn("health_port", result)
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}

// Package db provides database connection management and schema migration.
package db

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	pkgconfig "newshub/internal/pkg/config"
)

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool settings.
// Sized for a single API or worker process against a shared Postgres.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Open connects to the database named by DATABASE_URL and applies the
// pool settings from the environment. A missing DATABASE_URL or an
// unreachable database is fatal: neither process can run without one.
func Open() *sql.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		slog.Error("DATABASE_URL not set")
		os.Exit(1)
	}

	database, err := sql.Open("pgx", dsn)
	if err != nil {
		slog.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}

	cfg := loadConnectionConfig()
	database.SetMaxOpenConns(cfg.MaxOpenConns)
	database.SetMaxIdleConns(cfg.MaxIdleConns)
	database.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	database.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		slog.Error("failed to ping database", slog.Any("error", err))
		os.Exit(1)
	}

	return database
}

// loadConnectionConfig reads pool settings from the environment,
// falling back to defaults on bad values.
func loadConnectionConfig() ConnectionConfig {
	cfg := DefaultConnectionConfig()
	positiveInt := func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 200) }

	result := pkgconfig.LoadEnvInt("DB_MAX_OPEN_CONNS", cfg.MaxOpenConns, positiveInt)
	cfg.MaxOpenConns = result.Value.(int)
	logPoolWarnings(result)

	result = pkgconfig.LoadEnvInt("DB_MAX_IDLE_CONNS", cfg.MaxIdleConns, positiveInt)
	cfg.MaxIdleConns = result.Value.(int)
	logPoolWarnings(result)

	result = pkgconfig.LoadEnvDuration("DB_CONN_MAX_LIFETIME", cfg.ConnMaxLifetime, pkgconfig.ValidatePositiveDuration)
	cfg.ConnMaxLifetime = result.Value.(time.Duration)
	logPoolWarnings(result)

	result = pkgconfig.LoadEnvDuration("DB_CONN_MAX_IDLE_TIME", cfg.ConnMaxIdleTime, pkgconfig.ValidatePositiveDuration)
	cfg.ConnMaxIdleTime = result.Value.(time.Duration)
	logPoolWarnings(result)

	return cfg
}

func logPoolWarnings(result pkgconfig.ConfigLoadResult) {
	for _, warning := range result.Warnings {
		slog.Warn("connection pool config fallback", slog.String("warning", warning))
	}
}

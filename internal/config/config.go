// Package config loads process-level configuration for the API server
// and the worker from environment variables. Field validators live in
// internal/pkg/config; loading is fail-open where a bad value cannot
// make the process unsafe.
package config

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	pkgconfig "newshub/internal/pkg/config"
)

// APIConfig configures the cmd/api HTTP server.
type APIConfig struct {
	// Port the server listens on. Range: 1024-65535. Default: 8080
	Port int

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration
}

// LoadAPIConfig reads the API server configuration. Invalid values fall
// back to defaults with a warning.
//
// Environment variables:
//   - PORT:             listen port (default 8080)
//   - SHUTDOWN_TIMEOUT: duration string (default 10s)
func LoadAPIConfig(logger *slog.Logger) APIConfig {
	cfg := APIConfig{
		Port:            8080,
		ShutdownTimeout: 10 * time.Second,
	}

	result := pkgconfig.LoadEnvInt("PORT", cfg.Port, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 1024, 65535)
	})
	cfg.Port = result.Value.(int)
	logWarnings(logger, "PORT", result)

	result = pkgconfig.LoadEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout, func(d time.Duration) error {
		return pkgconfig.ValidateDuration(d, time.Second, 5*time.Minute)
	})
	cfg.ShutdownTimeout = result.Value.(time.Duration)
	logWarnings(logger, "SHUTDOWN_TIMEOUT", result)

	return cfg
}

// RedisURL returns the Redis connection URL shared by the cache, the
// queue, and pub/sub.
func RedisURL() string {
	return pkgconfig.LoadEnvString("REDIS_URL", "redis://localhost:6379/0")
}

// FeedSpec describes one RSS feed for the direct-ingest path.
type FeedSpec struct {
	URL        string
	SourceName string
	CategoryID int64
}

// CrawlerConfig configures the worker's external crawler commands and
// the direct RSS ingest path.
type CrawlerConfig struct {
	// RedisURL reaches the cache, queue, and pub/sub server.
	RedisURL string

	// NewsCommand and WeatherCommand are the crawler argv lines. An
	// empty command disables the corresponding job.
	NewsCommand    []string
	WeatherCommand []string

	// Feeds are ingested in-process via the RSS scraper, independent
	// of the external crawlers.
	Feeds []FeedSpec
}

// LoadCrawlerConfig reads the crawler configuration.
//
// Environment variables:
//   - REDIS_URL:           default "redis://localhost:6379/0"
//   - NEWS_CRAWLER_CMD:    argv line, e.g. "python3 crawlers/news.py"
//   - WEATHER_CRAWLER_CMD: argv line; the city is passed via CRAWL_CITY env
//   - RSS_FEEDS:           "url|source|categoryID" entries joined by ";"
//
// A malformed RSS_FEEDS entry is skipped with a warning rather than
// taking the worker down.
func LoadCrawlerConfig(logger *slog.Logger) CrawlerConfig {
	cfg := CrawlerConfig{
		RedisURL:       pkgconfig.LoadEnvString("REDIS_URL", "redis://localhost:6379/0"),
		NewsCommand:    parseCommand(pkgconfig.LoadEnvString("NEWS_CRAWLER_CMD", "python3 crawlers/news_crawler.py")),
		WeatherCommand: parseCommand(pkgconfig.LoadEnvString("WEATHER_CRAWLER_CMD", "python3 crawlers/weather_crawler.py")),
	}

	raw := pkgconfig.LoadEnvString("RSS_FEEDS", "")
	feeds, warnings := ParseFeeds(raw)
	cfg.Feeds = feeds
	for _, w := range warnings {
		logger.Warn("skipping malformed feed entry", slog.String("entry", w))
	}

	return cfg
}

// ParseFeeds parses the RSS_FEEDS format: semicolon-separated entries
// of "url|source name|categoryID". Malformed entries are returned as
// warnings and skipped.
func ParseFeeds(raw string) ([]FeedSpec, []string) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var feeds []FeedSpec
	var warnings []string
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, "|")
		if len(parts) != 3 {
			warnings = append(warnings, entry)
			continue
		}

		categoryID, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		url := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])
		if err != nil || url == "" || name == "" {
			warnings = append(warnings, entry)
			continue
		}

		feeds = append(feeds, FeedSpec{URL: url, SourceName: name, CategoryID: categoryID})
	}
	return feeds, warnings
}

func parseCommand(line string) []string {
	return strings.Fields(line)
}

func logWarnings(logger *slog.Logger, key string, result pkgconfig.ConfigLoadResult) {
	if !result.FallbackApplied {
		return
	}
	for _, warning := range result.Warnings {
		logger.Warn("configuration fallback applied",
			slog.String("env_key", key),
			slog.String("warning", warning))
	}
}

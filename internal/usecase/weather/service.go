// Package weather serves per-city weather data from the cache.
//
// Weather data is produced by an external crawler and has no database
// table: the cache entry is the only copy. On a miss the service kicks
// off a crawl and tells the caller to retry shortly.
package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newshub/internal/infra/cache"
)

// TTL keeps weather fresh without hammering the upstream provider.
const TTL = 2 * time.Hour

// ErrUnavailable means no data is cached for the city yet. A crawl has
// been triggered; callers should retry after a short delay.
var ErrUnavailable = errors.New("weather: data not available yet")

// CrawlTrigger starts a weather crawl for one city.
type CrawlTrigger interface {
	TriggerWeather(ctx context.Context, city string) error
}

func dataKey(city string) string {
	return "weather:data:" + strings.ToLower(city)
}

// Service reads and refreshes cached weather data.
type Service struct {
	Cache   cache.Cache
	Trigger CrawlTrigger // optional
}

func NewService(c cache.Cache, trigger CrawlTrigger) *Service {
	return &Service{Cache: c, Trigger: trigger}
}

// Get returns the cached weather payload for a city. On a miss it
// triggers a crawl and returns ErrUnavailable.
func (s *Service) Get(ctx context.Context, city string) ([]byte, error) {
	data, err := s.Cache.Get(ctx, dataKey(city))
	if err == nil {
		return data, nil
	}
	if err != cache.ErrMiss {
		slog.Warn("weather cache get failed",
			slog.String("city", city), slog.Any("error", err))
	}

	s.triggerCrawl(ctx, city)
	return nil, fmt.Errorf("%w: %s", ErrUnavailable, city)
}

// Update stores a fresh weather payload. Called by the crawler callback.
func (s *Service) Update(ctx context.Context, city string, data []byte) error {
	if len(data) == 0 {
		return errors.New("weather: empty payload")
	}
	if err := s.Cache.Set(ctx, dataKey(city), data, TTL); err != nil {
		return fmt.Errorf("store weather for %s: %w", city, err)
	}
	return nil
}

// Refresh forces a new crawl for a city regardless of cache state.
func (s *Service) Refresh(ctx context.Context, city string) {
	s.triggerCrawl(ctx, city)
}

func (s *Service) triggerCrawl(ctx context.Context, city string) {
	if s.Trigger == nil {
		return
	}
	if err := s.Trigger.TriggerWeather(context.WithoutCancel(ctx), city); err != nil {
		slog.Warn("weather crawl trigger failed",
			slog.String("city", city), slog.Any("error", err))
	}
}

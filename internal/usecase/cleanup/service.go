// Package cleanup implements the article retention sweep.
//
// Old articles are deleted on a schedule to keep the table small; the
// retention window is an operator-tunable setting stored in the
// settings table.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"newshub/internal/domain/entity"
	"newshub/internal/observability/metrics"
	"newshub/internal/repository"
)

// retentionKey is the settings-table key for the retention window.
const retentionKey = "retention_days"

// DefaultRetentionDays is used when no setting is stored or the stored
// value cannot be parsed.
const DefaultRetentionDays = 3

// Service removes articles older than the retention window.
type Service struct {
	ArticleRepo  repository.ArticleRepository
	SettingsRepo repository.SettingsRepository
}

func NewService(articleRepo repository.ArticleRepository, settingsRepo repository.SettingsRepository) *Service {
	return &Service{
		ArticleRepo:  articleRepo,
		SettingsRepo: settingsRepo,
	}
}

// RetentionDays returns the configured retention window, falling back
// to the default on a missing or malformed setting. The sweep must run
// even when the settings table is unreachable.
func (s *Service) RetentionDays(ctx context.Context) int {
	value, err := s.SettingsRepo.Get(ctx, retentionKey)
	if err != nil {
		return DefaultRetentionDays
	}
	days, err := strconv.Atoi(value)
	if err != nil || days < 1 {
		slog.Warn("malformed retention setting, using default",
			slog.String("value", value),
			slog.Int("default", DefaultRetentionDays))
		return DefaultRetentionDays
	}
	return days
}

// SetRetentionDays stores a new retention window.
func (s *Service) SetRetentionDays(ctx context.Context, days int) error {
	if days < 1 {
		return &entity.ValidationError{Field: "retention_days", Message: "must be at least 1"}
	}
	if err := s.SettingsRepo.Put(ctx, retentionKey, strconv.Itoa(days)); err != nil {
		return fmt.Errorf("store retention setting: %w", err)
	}
	return nil
}

// Sweep deletes articles created before the retention cutoff and
// returns the number of deleted rows.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	days := s.RetentionDays(ctx)
	cutoff := time.Now().AddDate(0, 0, -days)

	deleted, err := s.ArticleRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete older than %s: %w", cutoff.Format(time.RFC3339), err)
	}

	metrics.RecordArticlesPurged(deleted)
	if total, err := s.ArticleRepo.CountArticles(ctx); err == nil {
		metrics.UpdateArticlesTotal(total)
	}

	slog.Info("retention sweep completed",
		slog.Int("retention_days", days),
		slog.Int64("deleted", deleted))
	return deleted, nil
}

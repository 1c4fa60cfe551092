// Package repository defines the persistence ports of the application.
// Implementations live under internal/infra/adapter/persistence.
package repository

import (
	"context"
	"time"

	"newshub/internal/domain/entity"
)

// CategoryCount is a per-category aggregate row used by dashboard queries.
type CategoryCount struct {
	CategoryID int64
	Count      int64
}

// ArticleRepository is the durable persistence port for articles.
// It is the single source of truth: cache layers above it hold copies only.
//
// Dedup contract: Create must map a unique-constraint violation on
// source_url to entity.ErrDuplicateURL so that the ingestion pipeline can
// treat concurrent duplicate inserts as skips rather than failures.
type ArticleRepository interface {
	// Create inserts the article and assigns article.ID from the store.
	// Returns entity.ErrDuplicateURL when another row already holds the
	// same source_url.
	Create(ctx context.Context, article *entity.Article) error
	// Get retrieves an article by ID. Returns (nil, nil) if not found.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// CountBySourceURL returns the number of stored articles with the given
	// source URL. Used as the ingestion dedup pre-check.
	CountBySourceURL(ctx context.Context, url string) (int64, error)
	// ExistsBySourceURLBatch はバッチでURL存在チェックを行い、N+1問題を解消する
	ExistsBySourceURLBatch(ctx context.Context, urls []string) (map[string]bool, error)
	Update(ctx context.Context, article *entity.Article) error
	Delete(ctx context.Context, id int64) error
	// DeleteOlderThan removes articles created before cutoff and returns the
	// number of deleted rows. Used by the retention sweep.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// FindLatest returns published articles ordered by publish time descending.
	FindLatest(ctx context.Context, limit, offset int) ([]*entity.Article, error)
	// FindTrending returns published articles ordered by view count descending.
	FindTrending(ctx context.Context, limit int) ([]*entity.Article, error)
	// FindDailyHighlights returns today's published articles, newest first.
	FindDailyHighlights(ctx context.Context, limit int) ([]*entity.Article, error)
	FindByCategory(ctx context.Context, categoryID int64, limit int) ([]*entity.Article, error)
	// FindRelated returns published articles in the same category, newest
	// first, excluding the article they relate to.
	FindRelated(ctx context.Context, categoryID, excludeID int64, limit int) ([]*entity.Article, error)
	Search(ctx context.Context, keyword string, limit int) ([]*entity.Article, error)

	// IncrementViews bumps the view counter for the article. The counter is
	// monotonically non-decreasing; the store value is authoritative.
	IncrementViews(ctx context.Context, id int64) error

	// Dashboard aggregates.
	CountArticles(ctx context.Context) (int64, error)
	CountPublished(ctx context.Context) (int64, error)
	SumViews(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
}

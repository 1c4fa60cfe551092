// Package news implements the cache-aside read paths for articles.
//
// Every read tries the cache first and falls back to the database on a
// miss or any cache failure. The database is the source of truth; cache
// entries are throwaway copies and every cache error is swallowed after
// logging. Empty results are never cached so that a slow crawler does
// not pin "no news" for a full TTL.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"newshub/internal/domain/entity"
	"newshub/internal/infra/cache"
	"newshub/internal/observability/metrics"
	"newshub/internal/repository"
)

// Service serves article reads through the cache.
type Service struct {
	ArticleRepo repository.ArticleRepository
	Cache       cache.Cache
}

func NewService(articleRepo repository.ArticleRepository, c cache.Cache) *Service {
	return &Service{ArticleRepo: articleRepo, Cache: c}
}

// GetLatest returns a page of published articles, newest first.
// Page numbers start at 1.
func (s *Service) GetLatest(ctx context.Context, page, size int) ([]*entity.Article, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	key := latestKey(page, size)
	if articles, ok := s.cachedList(ctx, key); ok {
		return articles, nil
	}

	articles, err := s.ArticleRepo.FindLatest(ctx, size, (page-1)*size)
	if err != nil {
		return nil, fmt.Errorf("find latest: %w", err)
	}
	s.storeList(ctx, key, articles, LatestTTL)
	return articles, nil
}

// GetTrending returns the most viewed published articles.
func (s *Service) GetTrending(ctx context.Context, limit int) ([]*entity.Article, error) {
	if limit < 1 {
		limit = defaultTrendingLimit
	}

	key := trendingKey(limit)
	if articles, ok := s.cachedList(ctx, key); ok {
		return articles, nil
	}

	articles, err := s.ArticleRepo.FindTrending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("find trending: %w", err)
	}
	s.storeList(ctx, key, articles, TrendingTTL)
	return articles, nil
}

// GetDailyHighlights returns today's published articles, newest first.
func (s *Service) GetDailyHighlights(ctx context.Context, limit int) ([]*entity.Article, error) {
	if limit < 1 {
		limit = defaultHighlightsLimit
	}

	key := highlightsKey(limit)
	if articles, ok := s.cachedList(ctx, key); ok {
		return articles, nil
	}

	articles, err := s.ArticleRepo.FindDailyHighlights(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("find daily highlights: %w", err)
	}
	s.storeList(ctx, key, articles, HighlightsTTL)
	return articles, nil
}

// GetArticleByID returns one article and bumps its view counter.
// Returns entity.ErrNotFound if the article does not exist.
func (s *Service) GetArticleByID(ctx context.Context, id int64) (*entity.Article, error) {
	key := articleKey(id)

	if data, err := s.Cache.Get(ctx, key); err == nil {
		metrics.RecordCacheHit()
		var article entity.Article
		if err := json.Unmarshal(data, &article); err == nil {
			s.bumpViews(ctx, id)
			// ヒット時もキャッシュ側の閲覧数を進めてTTLを張り直す
			article.Views++
			if refreshed, err := json.Marshal(&article); err == nil {
				if err := s.Cache.Set(ctx, key, refreshed, ArticleTTL); err != nil {
					slog.Warn("cache refresh failed", slog.String("key", key), slog.Any("error", err))
				}
			}
			return &article, nil
		}
		slog.Warn("corrupt cache entry", slog.String("key", key))
	} else if err != cache.ErrMiss {
		metrics.RecordCacheError()
		slog.Warn("cache get failed", slog.String("key", key), slog.Any("error", err))
	} else {
		metrics.RecordCacheMiss()
	}

	article, err := s.ArticleRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, fmt.Errorf("article %d: %w", id, entity.ErrNotFound)
	}

	if data, err := json.Marshal(article); err == nil {
		if err := s.Cache.Set(ctx, key, data, ArticleTTL); err != nil {
			slog.Warn("cache set failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	s.bumpViews(ctx, id)
	return article, nil
}

// GetByCategory returns published articles in a category. Category pages
// are long-tail reads and go straight to the database.
func (s *Service) GetByCategory(ctx context.Context, categoryID int64, limit int) ([]*entity.Article, error) {
	if limit < 1 {
		limit = 10
	}
	articles, err := s.ArticleRepo.FindByCategory(ctx, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("find by category: %w", err)
	}
	return articles, nil
}

// GetRelated returns published articles sharing the given article's
// category, newest first, excluding the article itself. Related lists
// are long-tail reads and go straight to the database.
// Returns entity.ErrNotFound if the article does not exist.
func (s *Service) GetRelated(ctx context.Context, id int64, limit int) ([]*entity.Article, error) {
	if limit < 1 {
		limit = defaultRelatedLimit
	}

	article, err := s.ArticleRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, fmt.Errorf("article %d: %w", id, entity.ErrNotFound)
	}

	articles, err := s.ArticleRepo.FindRelated(ctx, article.CategoryID, id, limit)
	if err != nil {
		return nil, fmt.Errorf("find related: %w", err)
	}
	return articles, nil
}

// Search returns published articles matching a keyword in title or summary.
func (s *Service) Search(ctx context.Context, keyword string, limit int) ([]*entity.Article, error) {
	if limit < 1 {
		limit = 20
	}
	articles, err := s.ArticleRepo.Search(ctx, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return articles, nil
}

// InvalidateLists drops the default-shape list cache entries. Deleting
// more than strictly necessary is fine; the next read rebuilds them.
func (s *Service) InvalidateLists(ctx context.Context) {
	if err := s.Cache.Delete(ctx, listKeys()...); err != nil {
		slog.Warn("list cache invalidation failed", slog.Any("error", err))
	}
}

// InvalidateArticle drops one article entry plus the list entries that
// may embed it.
func (s *Service) InvalidateArticle(ctx context.Context, id int64) {
	keys := append(listKeys(), articleKey(id))
	if err := s.Cache.Delete(ctx, keys...); err != nil {
		slog.Warn("article cache invalidation failed",
			slog.Int64("article_id", id), slog.Any("error", err))
	}
}

// cachedList returns a list from the cache, or ok=false on miss,
// corruption, or cache failure.
func (s *Service) cachedList(ctx context.Context, key string) ([]*entity.Article, bool) {
	data, err := s.Cache.Get(ctx, key)
	if err != nil {
		if err == cache.ErrMiss {
			metrics.RecordCacheMiss()
		} else {
			metrics.RecordCacheError()
			slog.Warn("cache get failed", slog.String("key", key), slog.Any("error", err))
		}
		return nil, false
	}

	var articles []*entity.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		slog.Warn("corrupt cache entry", slog.String("key", key))
		return nil, false
	}
	metrics.RecordCacheHit()
	return articles, true
}

// storeList caches a non-empty list. Failures are logged and ignored.
func (s *Service) storeList(ctx context.Context, key string, articles []*entity.Article, ttl time.Duration) {
	if len(articles) == 0 {
		return
	}
	data, err := json.Marshal(articles)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, key, data, ttl); err != nil {
		slog.Warn("cache set failed", slog.String("key", key), slog.Any("error", err))
	}
}

// bumpViews increments the view counter best-effort. The database is
// authoritative; the cached article entry tracks it advisorily via the
// hit-path refresh, and list entries go stale until their TTL.
func (s *Service) bumpViews(ctx context.Context, id int64) {
	if err := s.ArticleRepo.IncrementViews(context.WithoutCancel(ctx), id); err != nil {
		slog.Warn("view increment failed", slog.Int64("article_id", id), slog.Any("error", err))
	}
}

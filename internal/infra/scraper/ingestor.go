package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"newshub/internal/domain/entity"
	"newshub/internal/usecase/ingest"
)

// FeedSource describes one feed to pull articles from.
type FeedSource struct {
	URL        string
	SourceName string
	CategoryID int64
}

// Stats summarizes one feed ingestion run.
type Stats struct {
	Items    int
	Inserted int64
	Skipped  int64
	Failed   int64
	Duration time.Duration
}

// Ingestor stores one crawled article.
type Ingestor interface {
	Ingest(ctx context.Context, article *entity.Article) (ingest.Result, error)
}

// URLChecker reports which of the given source URLs are already stored.
type URLChecker interface {
	ExistsBySourceURLBatch(ctx context.Context, urls []string) (map[string]bool, error)
}

// ContentFetcher retrieves the full article body for items whose feed
// content is too thin.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// FeedIngestor pulls a feed and pushes each new item straight into the
// ingestion service, bypassing the crawled-news stream. The batch
// existence check only trims already-seen items up front; the ingestion
// service still deduplicates each insert.
type FeedIngestor struct {
	Fetcher     *RSSFetcher
	Articles    URLChecker
	Ingest      Ingestor
	Content     ContentFetcher // optional
	Parallelism int
	// Threshold is the minimum feed content length; shorter items are
	// enriched via Content when available.
	Threshold int
}

// IngestFeed fetches the feed and ingests every item not already stored.
func (fi *FeedIngestor) IngestFeed(ctx context.Context, src FeedSource) (Stats, error) {
	start := time.Now()

	items, err := fi.Fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return Stats{}, fmt.Errorf("fetch feed %s: %w", src.URL, err)
	}

	seen := fi.knownURLs(ctx, items)

	var inserted, skipped, failed atomic.Int64
	parallelism := fi.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, item := range items {
		if item.Link == "" || seen[item.Link] {
			skipped.Add(1)
			continue
		}

		g.Go(func() error {
			res, err := fi.Ingest.Ingest(gctx, fi.toArticle(gctx, item, src))
			switch {
			case err != nil:
				failed.Add(1)
				slog.Warn("feed item ingest failed",
					slog.String("url", item.Link), slog.Any("error", err))
			case res.Outcome == ingest.Inserted:
				inserted.Add(1)
			default:
				skipped.Add(1)
			}
			// 個別アイテムの失敗でラン全体は止めない
			return nil
		})
	}
	_ = g.Wait()

	stats := Stats{
		Items:    len(items),
		Inserted: inserted.Load(),
		Skipped:  skipped.Load(),
		Failed:   failed.Load(),
		Duration: time.Since(start),
	}
	slog.Info("feed ingested",
		slog.String("source", src.SourceName),
		slog.Int("items", stats.Items),
		slog.Int64("inserted", stats.Inserted),
		slog.Int64("skipped", stats.Skipped),
		slog.Int64("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// knownURLs pre-filters items whose source URL is already stored. On a
// store error every item proceeds to the per-item dedup path.
func (fi *FeedIngestor) knownURLs(ctx context.Context, items []FeedItem) map[string]bool {
	urls := make([]string, 0, len(items))
	for _, it := range items {
		if it.Link != "" {
			urls = append(urls, it.Link)
		}
	}
	if len(urls) == 0 {
		return nil
	}

	seen, err := fi.Articles.ExistsBySourceURLBatch(ctx, urls)
	if err != nil {
		slog.Warn("batch dedup check failed, ingesting all items",
			slog.Any("error", err))
		return nil
	}
	return seen
}

func (fi *FeedIngestor) toArticle(ctx context.Context, item FeedItem, src FeedSource) *entity.Article {
	content := item.Content
	if fi.Content != nil && len(content) < fi.Threshold {
		if full, err := fi.Content.FetchContent(ctx, item.Link); err != nil {
			slog.Debug("content enrichment failed, using feed content",
				slog.String("url", item.Link), slog.Any("error", err))
		} else {
			content = full
		}
	}

	return &entity.Article{
		Title:       item.Title,
		Summary:     extractText(item.Description),
		Content:     content,
		SourceURL:   item.Link,
		SourceName:  src.SourceName,
		CategoryID:  src.CategoryID,
		PublishTime: item.PublishedAt,
		Status:      entity.StatusPublished,
	}
}

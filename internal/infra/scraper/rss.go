// Package scraper fetches RSS/Atom feeds and feeds their items into the
// ingestion pipeline without going through the crawled-news stream.
package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"newshub/internal/resilience/circuitbreaker"
	"newshub/internal/resilience/retry"
)

// FeedItem is one parsed feed entry.
type FeedItem struct {
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt time.Time
}

// RSSFetcher retrieves and parses feeds with retry and circuit breaker
// protection around the network call.
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

func NewRSSFetcher(client *http.Client) *RSSFetcher {
	return &RSSFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// Fetch retrieves and parses the feed at the given URL.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]FeedItem, error) {
	var items []FeedItem

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, feedURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("url", feedURL),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}

		items = cbResult.([]FeedItem)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return items, nil
}

func (f *RSSFetcher) doFetch(ctx context.Context, feedURL string) ([]FeedItem, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "NewsHubBot"
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		// ステータスコードを持つ失敗はリトライ判定に乗せる
		var feedErr gofeed.HTTPError
		if errors.As(err, &feedErr) {
			return nil, &retry.HTTPError{StatusCode: feedErr.StatusCode, Message: feedErr.Status}
		}
		return nil, err
	}

	items := make([]FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		pubAt := time.Now()
		if it.PublishedParsed != nil {
			pubAt = *it.PublishedParsed
		}

		// Content優先、なければDescriptionを使用
		content := it.Content
		if content == "" {
			content = it.Description
		}

		items = append(items, FeedItem{
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
			Content:     content,
			PublishedAt: pubAt,
		})
	}

	return items, nil
}

// extractText strips markup from a feed description, returning the plain
// text that becomes the article summary.
func extractText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(doc.Text())
}

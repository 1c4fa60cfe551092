package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"newshub/internal/domain/entity"
)

// ArticleMessage is the wire format crawlers publish to the crawled-news
// stream. One message describes one scraped article.
type ArticleMessage struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"`
	SourceURL   string    `json:"source_url"`
	SourceName  string    `json:"source_name"`
	CategoryID  int64     `json:"category_id"`
	PublishTime time.Time `json:"publish_time"`
}

// DecodeMessage parses a raw payload into an article. Parse failures and
// structurally empty messages return errors wrapping ErrDecode so the
// caller can distinguish poison from transient failures.
func DecodeMessage(payload []byte) (*entity.Article, error) {
	var msg ArticleMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if msg.SourceURL == "" {
		return nil, fmt.Errorf("%w: %w", ErrDecode, ErrMissingSourceURL)
	}
	if msg.Title == "" {
		return nil, fmt.Errorf("%w: %w", ErrDecode, ErrMissingTitle)
	}

	publishTime := msg.PublishTime
	if publishTime.IsZero() {
		publishTime = time.Now()
	}

	return &entity.Article{
		Title:       msg.Title,
		Summary:     msg.Summary,
		Content:     msg.Content,
		SourceURL:   msg.SourceURL,
		SourceName:  msg.SourceName,
		CategoryID:  msg.CategoryID,
		PublishTime: publishTime,
		Status:      entity.StatusPublished,
	}, nil
}

// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article and Notification, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// Article status values. Only PUBLISHED articles are visible on public read paths.
const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
)

// Article represents a news article entity in the system.
// SourceURL is the deduplication key: the store enforces at most one
// article per distinct SourceURL via a unique constraint.
type Article struct {
	ID          int64
	Title       string
	Summary     string
	Content     string
	SourceURL   string
	SourceName  string
	CategoryID  int64
	PublishTime time.Time
	Views       int64
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPublished reports whether the article is visible on public read paths.
func (a *Article) IsPublished() bool {
	return a.Status == StatusPublished
}

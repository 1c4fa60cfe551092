// Package admin provides editorial article management.
//
// Every write goes to the database first and then drops the affected
// cache entries. Invalidation is deliberately broad (all default list
// shapes plus the article entry); deleting too much only costs a cache
// rebuild on the next read.
package admin

import (
	"context"
	"fmt"
	"time"

	"newshub/internal/domain/entity"
	"newshub/internal/repository"
	"newshub/internal/utils/text"
)

// CreateInput represents the input parameters for creating a new article.
type CreateInput struct {
	Title       string
	Summary     string
	Content     string
	SourceURL   string
	SourceName  string
	CategoryID  int64
	PublishTime time.Time
	Status      string
}

// UpdateInput represents the input parameters for updating an existing article.
// Fields with nil values will not be updated.
type UpdateInput struct {
	ID          int64
	Title       *string
	Summary     *string
	Content     *string
	CategoryID  *int64
	PublishTime *time.Time
	Status      *string
}

// CacheInvalidator drops cache entries after a write.
type CacheInvalidator interface {
	InvalidateLists(ctx context.Context)
	InvalidateArticle(ctx context.Context, id int64)
}

// DashboardStats aggregates store-wide numbers for the admin dashboard.
type DashboardStats struct {
	TotalArticles     int64
	PublishedArticles int64
	TotalViews        int64
	ByCategory        []repository.CategoryCount
}

// Service provides article management use cases for editors.
type Service struct {
	Repo        repository.ArticleRepository
	Invalidator CacheInvalidator
}

func NewService(repo repository.ArticleRepository, invalidator CacheInvalidator) *Service {
	return &Service{Repo: repo, Invalidator: invalidator}
}

// Create validates and stores a new article, then invalidates the list
// caches. Returns entity.ErrDuplicateURL when the source URL is taken.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Article, error) {
	status := in.Status
	if status == "" {
		status = entity.StatusDraft
	}

	article := &entity.Article{
		Title:       in.Title,
		Summary:     text.SanitizeSummary(in.Summary),
		Content:     in.Content,
		SourceURL:   in.SourceURL,
		SourceName:  in.SourceName,
		CategoryID:  in.CategoryID,
		PublishTime: in.PublishTime,
		Status:      status,
	}
	if article.PublishTime.IsZero() {
		article.PublishTime = time.Now()
	}

	if err := entity.ValidateArticle(article); err != nil {
		return nil, fmt.Errorf("validate article: %w", err)
	}

	if err := s.Repo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	s.invalidateLists(ctx)
	return article, nil
}

// Update modifies an existing article with the provided input.
// Only non-nil fields in the input will be updated.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*entity.Article, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidArticleID
	}

	article, err := s.Repo.Get(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}

	if in.Title != nil {
		article.Title = *in.Title
	}
	if in.Summary != nil {
		article.Summary = text.SanitizeSummary(*in.Summary)
	}
	if in.Content != nil {
		article.Content = *in.Content
	}
	if in.CategoryID != nil {
		article.CategoryID = *in.CategoryID
	}
	if in.PublishTime != nil {
		article.PublishTime = *in.PublishTime
	}
	if in.Status != nil {
		article.Status = *in.Status
	}

	if err := entity.ValidateArticle(article); err != nil {
		return nil, fmt.Errorf("validate article: %w", err)
	}

	if err := s.Repo.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}

	s.invalidateArticle(ctx, article.ID)
	return article, nil
}

// Delete removes an article and its cache entries.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidArticleID
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}

	s.invalidateArticle(ctx, id)
	return nil
}

// Dashboard returns store-wide aggregates.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	total, err := s.Repo.CountArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	published, err := s.Repo.CountPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("count published: %w", err)
	}
	views, err := s.Repo.SumViews(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum views: %w", err)
	}
	byCategory, err := s.Repo.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}

	return &DashboardStats{
		TotalArticles:     total,
		PublishedArticles: published,
		TotalViews:        views,
		ByCategory:        byCategory,
	}, nil
}

func (s *Service) invalidateLists(ctx context.Context) {
	if s.Invalidator != nil {
		s.Invalidator.InvalidateLists(context.WithoutCancel(ctx))
	}
}

func (s *Service) invalidateArticle(ctx context.Context, id int64) {
	if s.Invalidator != nil {
		s.Invalidator.InvalidateArticle(context.WithoutCancel(ctx), id)
	}
}

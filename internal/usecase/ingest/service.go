// Package ingest implements the crawler-to-database ingestion pipeline.
//
// Messages arrive from the crawled-news stream, get sanitized and
// deduplicated by source URL, and end up as article rows. The database
// unique constraint on source_url is the authoritative dedup guard; the
// count pre-check only saves a doomed insert in the common case.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newshub/internal/domain/entity"
	"newshub/internal/infra/queue"
	"newshub/internal/observability/metrics"
	"newshub/internal/repository"
	"newshub/internal/utils/text"
)

// Outcome classifies the result of one ingestion attempt.
type Outcome string

const (
	// Inserted means a new article row was created.
	Inserted Outcome = "inserted"
	// Skipped means an article with the same source URL already exists.
	Skipped Outcome = "skipped"
)

// Result describes what one Ingest call did.
type Result struct {
	Outcome   Outcome
	ArticleID int64
}

// ListInvalidator drops list-shaped cache entries after a successful
// insert so that readers see new articles before the TTL expires.
type ListInvalidator interface {
	InvalidateLists(ctx context.Context)
}

// Service ingests crawled articles into the store.
type Service struct {
	ArticleRepo repository.ArticleRepository
	Invalidator ListInvalidator // optional
}

func NewService(articleRepo repository.ArticleRepository, invalidator ListInvalidator) *Service {
	return &Service{
		ArticleRepo: articleRepo,
		Invalidator: invalidator,
	}
}

// Ingest sanitizes, validates, and stores one article. Concurrent calls
// with the same source URL are safe: exactly one wins the insert, the
// rest report Skipped.
func (s *Service) Ingest(ctx context.Context, article *entity.Article) (Result, error) {
	article.Summary = text.SanitizeSummary(article.Summary)

	if err := entity.ValidateArticle(article); err != nil {
		return Result{}, fmt.Errorf("validate article: %w", err)
	}

	// パフォーマンス最適化: 大半の重複はINSERT前に弾く
	count, err := s.ArticleRepo.CountBySourceURL(ctx, article.SourceURL)
	if err != nil {
		// The pre-check is an optimization only; the unique constraint
		// still guards correctness, so keep going.
		slog.Warn("dedup pre-check failed",
			slog.String("source_url", article.SourceURL),
			slog.Any("error", err))
	} else if count > 0 {
		metrics.RecordIngest(metrics.OutcomeSkipped)
		return Result{Outcome: Skipped}, nil
	}

	if err := s.ArticleRepo.Create(ctx, article); err != nil {
		if errors.Is(err, entity.ErrDuplicateURL) {
			// 並行挿入で負けたケース。エラーではなくスキップ扱い
			slog.Debug("duplicate article skipped",
				slog.String("source_url", article.SourceURL))
			metrics.RecordIngest(metrics.OutcomeSkipped)
			return Result{Outcome: Skipped}, nil
		}
		metrics.RecordIngest(metrics.OutcomeFailed)
		return Result{}, fmt.Errorf("create article: %w", err)
	}

	metrics.RecordIngest(metrics.OutcomeInserted)
	slog.Info("article ingested",
		slog.Int64("article_id", article.ID),
		slog.String("title", article.Title),
		slog.String("source", article.SourceName))

	if s.Invalidator != nil {
		s.Invalidator.InvalidateLists(context.WithoutCancel(ctx))
	}

	return Result{Outcome: Inserted, ArticleID: article.ID}, nil
}

// Handle implements queue.Handler. Undecodable payloads are poison: they
// are counted and dropped by returning nil, which acknowledges the
// message. Store failures return an error so the message is redelivered.
func (s *Service) Handle(ctx context.Context, msg queue.Message) error {
	start := time.Now()

	article, err := DecodeMessage(msg.Payload)
	if err != nil {
		slog.Error("dropping poison message",
			slog.String("message_id", msg.ID),
			slog.Any("error", err))
		metrics.RecordIngest(metrics.OutcomePoison)
		return nil
	}

	result, err := s.Ingest(ctx, article)
	if err != nil {
		if errors.Is(err, entity.ErrValidationFailed) || isValidationError(err) {
			// Validation failures are permanent; retrying cannot fix them.
			slog.Error("dropping invalid message",
				slog.String("message_id", msg.ID),
				slog.Any("error", err))
			metrics.RecordIngest(metrics.OutcomePoison)
			return nil
		}
		return err
	}

	metrics.RecordOperationDuration("ingest_article", time.Since(start))
	slog.Debug("message processed",
		slog.String("message_id", msg.ID),
		slog.String("outcome", string(result.Outcome)))
	return nil
}

func isValidationError(err error) bool {
	var vErr *entity.ValidationError
	return errors.As(err, &vErr)
}

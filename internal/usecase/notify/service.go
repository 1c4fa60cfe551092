// Package notify implements the notification write and read paths.
//
// The write path persists first and publishes second: the row in the
// notifications table is the source of truth, the pub/sub push is a
// best-effort hint to online clients. A failed publish never rolls back
// or retries the persisted notification.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"newshub/internal/domain/entity"
	"newshub/internal/infra/notifier"
	"newshub/internal/observability/metrics"
	"newshub/internal/repository"
)

// fanOutParallelism bounds concurrent NotifyAll deliveries.
const fanOutParallelism = 10

// pushPayload is the JSON shape published to a user's channel.
type pushPayload struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	RelatedID *int64    `json:"related_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service handles creating, pushing, and reading notifications.
type Service struct {
	NotificationRepo repository.NotificationRepository
	Publisher        notifier.Publisher
}

func NewService(notificationRepo repository.NotificationRepository, publisher notifier.Publisher) *Service {
	if publisher == nil {
		publisher = notifier.NewNoOpPublisher()
	}
	return &Service{
		NotificationRepo: notificationRepo,
		Publisher:        publisher,
	}
}

// Notify persists a notification for one user and pushes it to their
// channel. The returned notification carries the assigned ID.
func (s *Service) Notify(ctx context.Context, userID int64, title, content, typ string, relatedID *int64) (*entity.Notification, error) {
	if !entity.ValidNotificationType(typ) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}

	n := &entity.Notification{
		UserID:    userID,
		Title:     title,
		Content:   content,
		Type:      typ,
		RelatedID: relatedID,
	}
	if err := s.NotificationRepo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.push(ctx, n)
	return n, nil
}

// NotifyAll fans one notification out to many users. Each user gets
// their own row and push. Per-user failures are logged and counted; the
// call reports only how many writes failed.
func (s *Service) NotifyAll(ctx context.Context, userIDs []int64, title, content, typ string, relatedID *int64) (failed int, err error) {
	if !entity.ValidNotificationType(typ) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}

	requestID := uuid.NewString()
	slog.Info("notification fan-out started",
		slog.String("request_id", requestID),
		slog.Int("users", len(userIDs)))

	var failures int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(fanOutParallelism)

	results := make(chan bool, len(userIDs))
	for _, userID := range userIDs {
		id := userID
		eg.Go(func() error {
			n := &entity.Notification{
				UserID:    id,
				Title:     title,
				Content:   content,
				Type:      typ,
				RelatedID: relatedID,
			}
			if err := s.NotificationRepo.Create(egCtx, n); err != nil {
				slog.Warn("fan-out write failed",
					slog.String("request_id", requestID),
					slog.Int64("user_id", id),
					slog.Any("error", err))
				results <- false
				return nil
			}
			s.push(egCtx, n)
			results <- true
			return nil
		})
	}

	_ = eg.Wait()
	close(results)
	for ok := range results {
		if !ok {
			failures++
		}
	}

	slog.Info("notification fan-out finished",
		slog.String("request_id", requestID),
		slog.Int("users", len(userIDs)),
		slog.Int64("failed", failures))
	return int(failures), nil
}

// ListForUser returns a user's most recent notifications.
func (s *Service) ListForUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error) {
	if limit < 1 {
		limit = 20
	}
	notifications, err := s.NotificationRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// CountUnread returns the user's unread notification count.
func (s *Service) CountUnread(ctx context.Context, userID int64) (int64, error) {
	count, err := s.NotificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.NotificationRepo.MarkRead(ctx, id, userID)
}

// MarkAllRead marks all of the user's notifications as read.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.NotificationRepo.MarkAllRead(ctx, userID)
}

// push publishes best-effort. The notification is already durable.
func (s *Service) push(ctx context.Context, n *entity.Notification) {
	payload, err := json.Marshal(pushPayload{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Type:      n.Type,
		RelatedID: n.RelatedID,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return
	}

	if err := s.Publisher.PublishToUser(context.WithoutCancel(ctx), n.UserID, payload); err != nil {
		metrics.RecordNotificationPublished(false)
		slog.Warn("notification push failed",
			slog.Int64("notification_id", n.ID),
			slog.Int64("user_id", n.UserID),
			slog.Any("error", err))
		return
	}
	metrics.RecordNotificationPublished(true)
}

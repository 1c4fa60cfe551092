package repository

import (
	"context"

	"newshub/internal/domain/entity"
)

// NotificationRepository is the persistence port for user notifications.
// Rows are written before any push delivery is attempted, so the table is
// always the source of truth for the pull path.
type NotificationRepository interface {
	// Create inserts the notification and assigns n.ID from the store.
	Create(ctx context.Context, n *entity.Notification) error
	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	// MarkRead flips IsRead for a single notification owned by userID.
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

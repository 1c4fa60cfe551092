package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"newshub/internal/domain/entity"
	"newshub/internal/repository"
)

type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) repository.NotificationRepository {
	return &NotificationRepo{db: db}
}

func (repo *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	const query = `
INSERT INTO notifications (user_id, title, content, type, is_read, related_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		n.UserID, n.Title, n.Content, n.Type, n.IsRead, n.RelatedID,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *NotificationRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error) {
	const query = `
SELECT id, user_id, title, content, type, is_read, related_id, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ListByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	notifications := make([]*entity.Notification, 0, limit)
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content,
			&n.Type, &n.IsRead, &n.RelatedID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByUser: Scan: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func (repo *NotificationRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountUnread: %w", err)
	}
	return count, nil
}

func (repo *NotificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	// user_id の条件は他ユーザーの通知を既読にできないようにするため
	const query = `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	res, err := repo.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("MarkRead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("MarkRead: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *NotificationRepo) MarkAllRead(ctx context.Context, userID int64) error {
	const query = `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`
	if _, err := repo.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("MarkAllRead: %w", err)
	}
	return nil
}

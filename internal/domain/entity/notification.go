package entity

import "time"

// Notification type values.
const (
	NotificationSystem  = "SYSTEM"
	NotificationComment = "COMMENT"
	NotificationLike    = "LIKE"
)

// Notification represents a user-facing notification record.
// It is created by the write path and immutable afterwards except for
// the IsRead flag. The persisted row is the source of truth; push
// delivery over pub/sub is best-effort.
type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Content   string
	Type      string
	IsRead    bool
	RelatedID *int64
	CreatedAt time.Time
}

// ValidNotificationType reports whether typ is one of the known notification types.
func ValidNotificationType(typ string) bool {
	switch typ {
	case NotificationSystem, NotificationComment, NotificationLike:
		return true
	}
	return false
}

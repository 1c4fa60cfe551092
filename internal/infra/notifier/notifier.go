// Package notifier delivers real-time notification pushes to connected
// clients. The persisted notification row is the source of truth; push
// delivery is best-effort and a failed publish must never roll back the
// write that preceded it.
package notifier

import "context"

// Publisher pushes a serialized notification to a single user's channel.
type Publisher interface {
	PublishToUser(ctx context.Context, userID int64, payload []byte) error
}

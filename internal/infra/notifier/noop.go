package notifier

import "context"

// NoOpPublisher is used when push delivery is disabled. It avoids nil
// checks in the notification write path.
type NoOpPublisher struct{}

func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

func (NoOpPublisher) PublishToUser(context.Context, int64, []byte) error {
	return nil
}

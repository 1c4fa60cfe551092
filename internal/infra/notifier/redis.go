package notifier

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// userChannel returns the per-user pub/sub channel name.
func userChannel(userID int64) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// RedisPublisher publishes notification payloads on per-user Redis
// pub/sub channels. Online clients hold a subscription on their own
// channel; offline users simply miss the push and read the row later.
type RedisPublisher struct {
	client  *redis.Client
	limiter *rate.Limiter
}

// NewRedisPublisher builds a publisher. Publishes are rate limited to
// protect Redis during NotifyAll fan-outs.
func NewRedisPublisher(client *redis.Client, publishesPerSecond float64, burst int) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(publishesPerSecond), burst),
	}
}

func (p *RedisPublisher) PublishToUser(ctx context.Context, userID int64, payload []byte) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notifier: rate limit: %w", err)
	}
	if err := p.client.Publish(ctx, userChannel(userID), payload).Err(); err != nil {
		return fmt.Errorf("notifier: publish to user %d: %w", userID, err)
	}
	return nil
}

package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher appends article payloads to the crawled-news stream.
// Crawlers normally publish directly, but the RSS ingest path and tests
// go through this type.
type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

// Publish appends payload as one stream entry and returns the entry ID.
func (p *Publisher) Publish(ctx context.Context, payload []byte) (string, error) {
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("queue: publish: %w", err)
	}
	return id, nil
}

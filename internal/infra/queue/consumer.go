package queue

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConsumerConfig holds consumer group settings.
type ConsumerConfig struct {
	// Stream is the Redis Stream key to consume from.
	Stream string
	// Group is the consumer group name.
	Group string
	// Consumer is this consumer's name within the group.
	Consumer string
	// BatchSize is the number of messages to read at once.
	BatchSize int64
	// BlockTimeout is how long XREADGROUP blocks waiting for messages.
	BlockTimeout time.Duration
	// ReclaimMinIdle is how long a message may sit unacknowledged before
	// the reclaim pass takes it over and retries it. Zero disables
	// reclaiming.
	ReclaimMinIdle time.Duration
}

// DefaultConsumerConfig returns the worker's default consumer settings.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Stream:         "news:crawled",
		Group:          "ingest-workers",
		Consumer:       "worker-1",
		BatchSize:      10,
		BlockTimeout:   5 * time.Second,
		ReclaimMinIdle: time.Minute,
	}
}

// Consumer reads messages from a stream through a consumer group and
// hands them to a Handler. Messages are acknowledged only after the
// handler returns nil; failed messages stay pending until the reclaim
// pass retries them after ReclaimMinIdle.
type Consumer struct {
	client  *redis.Client
	config  ConsumerConfig
	handler Handler
	logger  *slog.Logger

	lastReclaim time.Time
}

func NewConsumer(client *redis.Client, config ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		client:  client,
		config:  config,
		handler: handler,
		logger:  logger,
	}
}

// Run consumes until ctx is cancelled. It creates the consumer group on
// startup and backs off briefly after transient read errors.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	c.logger.Info("queue consumer started",
		slog.String("stream", c.config.Stream),
		slog.String("group", c.config.Group),
		slog.String("consumer", c.config.Consumer))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("queue consumer stopping")
			return ctx.Err()
		default:
		}

		if c.config.ReclaimMinIdle > 0 && time.Since(c.lastReclaim) >= c.config.ReclaimMinIdle {
			c.reclaimPending(ctx)
			c.lastReclaim = time.Now()
		}

		if err := c.readBatch(ctx); err != nil && ctx.Err() == nil {
			c.logger.Error("queue read failed", slog.String("error", err.Error()))
			time.Sleep(time.Second)
		}
	}
}

// reclaimPending takes over messages that stayed pending past
// ReclaimMinIdle (a handler failed, or another consumer died after
// reading) and runs them through the handler again.
func (c *Consumer) reclaimPending(ctx context.Context) {
	messages, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.config.Stream,
		Group:    c.config.Group,
		Consumer: c.config.Consumer,
		MinIdle:  c.config.ReclaimMinIdle,
		Start:    "0",
		Count:    c.config.BatchSize,
	}).Result()
	if err != nil && err != redis.Nil {
		if ctx.Err() == nil {
			c.logger.Error("pending reclaim failed", slog.String("error", err.Error()))
		}
		return
	}

	for _, entry := range messages {
		c.process(ctx, entry)
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.config.Stream, c.config.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) readBatch(ctx context.Context) error {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.config.Group,
		Consumer: c.config.Consumer,
		Streams:  []string{c.config.Stream, ">"},
		Count:    c.config.BatchSize,
		Block:    c.config.BlockTimeout,
	}).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}

	for _, stream := range streams {
		for _, entry := range stream.Messages {
			c.process(ctx, entry)
		}
	}
	return nil
}

func (c *Consumer) process(ctx context.Context, entry redis.XMessage) {
	payload, _ := entry.Values["payload"].(string)
	msg := Message{ID: entry.ID, Payload: []byte(payload)}

	if err := c.handler.Handle(ctx, msg); err != nil {
		// ハンドラが失敗したメッセージはACKせず、リクレイムでの再試行に任せる
		c.logger.Error("message handling failed",
			slog.String("message_id", entry.ID),
			slog.String("error", err.Error()))
		return
	}

	if err := c.client.XAck(ctx, c.config.Stream, c.config.Group, entry.ID).Err(); err != nil {
		c.logger.Error("message ack failed",
			slog.String("message_id", entry.ID),
			slog.String("error", err.Error()))
	}
}

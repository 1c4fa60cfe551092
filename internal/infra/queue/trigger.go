package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// TriggerChannel carries manual job triggers from the API process to
// the worker. Payload is the job name, or "weather:<city>" for a
// per-city weather crawl.
const TriggerChannel = "jobs:trigger"

const weatherTriggerPrefix = "weather:"

// TriggerPublisher asks the worker to run a job now. Delivery is
// fire-and-forget: pub/sub has no ack, and a worker that is down will
// simply run the job on its next scheduled tick.
type TriggerPublisher struct {
	client *redis.Client
}

func NewTriggerPublisher(client *redis.Client) *TriggerPublisher {
	return &TriggerPublisher{client: client}
}

// Trigger requests an on-demand run of a named job.
func (p *TriggerPublisher) Trigger(ctx context.Context, name string) error {
	if err := p.client.Publish(ctx, TriggerChannel, name).Err(); err != nil {
		return fmt.Errorf("publish trigger for %s: %w", name, err)
	}
	return nil
}

// TriggerWeather requests a weather crawl for one city.
func (p *TriggerPublisher) TriggerWeather(ctx context.Context, city string) error {
	payload := weatherTriggerPrefix + strings.ToLower(city)
	if err := p.client.Publish(ctx, TriggerChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish weather trigger for %s: %w", city, err)
	}
	return nil
}

// JobRunner runs triggered jobs; the scheduler implements it.
type JobRunner interface {
	Trigger(ctx context.Context, name string) error
	TriggerWeather(ctx context.Context, city string) error
}

// TriggerListener subscribes to the trigger channel and hands each
// request to the runner. Failed runs are logged, never retried: the
// requester gets no feedback over pub/sub.
type TriggerListener struct {
	client *redis.Client
	runner JobRunner
	logger *slog.Logger
}

func NewTriggerListener(client *redis.Client, runner JobRunner, logger *slog.Logger) *TriggerListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &TriggerListener{client: client, runner: runner, logger: logger}
}

// Run listens until ctx is cancelled.
func (l *TriggerListener) Run(ctx context.Context) error {
	sub := l.client.Subscribe(ctx, TriggerChannel)
	defer func() { _ = sub.Close() }()

	l.logger.Info("trigger listener started", slog.String("channel", TriggerChannel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("trigger listener stopping")
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			l.dispatch(ctx, msg.Payload)
		}
	}
}

func (l *TriggerListener) dispatch(ctx context.Context, payload string) {
	if city, ok := strings.CutPrefix(payload, weatherTriggerPrefix); ok {
		if err := l.runner.TriggerWeather(ctx, city); err != nil {
			l.logger.Warn("triggered job did not run",
				slog.String("payload", payload),
				slog.Any("error", err))
			return
		}
		l.logger.Info("job triggered remotely", slog.String("payload", payload))
		return
	}

	// ジョブ本体は裏で走らせ、次のトリガの受信を塞がない
	go func() {
		if err := l.runner.Trigger(context.WithoutCancel(ctx), payload); err != nil {
			l.logger.Warn("triggered job did not run",
				slog.String("payload", payload),
				slog.Any("error", err))
			return
		}
		l.logger.Info("job triggered remotely", slog.String("payload", payload))
	}()
}

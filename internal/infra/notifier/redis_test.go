package notifier_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"newshub/internal/infra/notifier"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisPublisher_PublishToUser(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "notifications:user:7")
	defer func() { _ = sub.Close() }()

	// 購読が確立するのを待つ
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe err=%v", err)
	}

	pub := notifier.NewRedisPublisher(client, 100, 10)
	if err := pub.PublishToUser(ctx, 7, []byte(`{"title":"hi"}`)); err != nil {
		t.Fatalf("PublishToUser err=%v", err)
	}

	select {
	case msg := <-sub.Channel():
		if msg.Payload != `{"title":"hi"}` {
			t.Fatalf("payload=%q", msg.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisPublisher_RateLimitHonorsContext(t *testing.T) {
	client := newTestClient(t)

	// バースト1、極端に低いレートで2回目はブロックする
	pub := notifier.NewRedisPublisher(client, 0.001, 1)

	ctx := context.Background()
	if err := pub.PublishToUser(ctx, 1, []byte("a")); err != nil {
		t.Fatalf("first publish err=%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := pub.PublishToUser(ctx, 1, []byte("b")); err == nil {
		t.Fatal("expected context error from rate limiter")
	}
}

func TestNoOpPublisher(t *testing.T) {
	pub := notifier.NewNoOpPublisher()
	if err := pub.PublishToUser(context.Background(), 1, []byte("x")); err != nil {
		t.Fatalf("PublishToUser err=%v", err)
	}
}

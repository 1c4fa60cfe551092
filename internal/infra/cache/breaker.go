package cache

import (
	"context"
	"time"

	"newshub/internal/resilience/circuitbreaker"
)

// BreakerCache decorates a Cache with a circuit breaker so that a sick
// Redis does not slow down every read path with connection timeouts.
// While the circuit is open, Get reports a miss and writes are dropped.
type BreakerCache struct {
	inner   Cache
	breaker *circuitbreaker.CircuitBreaker
}

func NewBreakerCache(inner Cache, breaker *circuitbreaker.CircuitBreaker) *BreakerCache {
	return &BreakerCache{inner: inner, breaker: breaker}
}

func (c *BreakerCache) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		value, err := c.inner.Get(ctx, key)
		if err == ErrMiss {
			// ミスは障害ではないので成功として数える
			return nil, nil
		}
		return value, err
	})
	if err != nil {
		return nil, ErrMiss
	}
	if result == nil {
		return nil, ErrMiss
	}
	return result.([]byte), nil
}

func (c *BreakerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.inner.Set(ctx, key, value, ttl)
	})
	return err
}

func (c *BreakerCache) Delete(ctx context.Context, keys ...string) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.inner.Delete(ctx, keys...)
	})
	return err
}

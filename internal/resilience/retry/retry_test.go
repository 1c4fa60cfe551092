package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return &HTTPError{StatusCode: 503, Message: "Service Unavailable"}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("WithBackoff err=%v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestWithBackoff_NonRetryableAborts(t *testing.T) {
	attempts := 0
	badReq := &HTTPError{StatusCode: 400, Message: "Bad Request"}
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		return badReq
	})

	if !errors.Is(err, badReq) {
		t.Fatalf("err = %v, want %v", err, badReq)
	}
	// 4xxは再試行しない
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	transient := &HTTPError{StatusCode: 500, Message: "Internal Server Error"}
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		return transient
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !errors.Is(err, transient) {
		t.Fatalf("err = %v, want wrapped %v", err, transient)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := WithBackoff(ctx, fastConfig(), func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return &HTTPError{StatusCode: 500, Message: "Internal Server Error"}
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if attempts < 2 {
		t.Fatalf("attempts = %d, want >= 2", attempts)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"HTTP 500", &HTTPError{StatusCode: 500}, true},
		{"HTTP 503", &HTTPError{StatusCode: 503}, true},
		{"HTTP 429", &HTTPError{StatusCode: 429}, true},
		{"HTTP 408", &HTTPError{StatusCode: 408}, true},
		{"HTTP 400", &HTTPError{StatusCode: 400}, false},
		{"HTTP 404", &HTTPError{StatusCode: 404}, false},
		{"ECONNREFUSED", syscall.ECONNREFUSED, true},
		{"ECONNRESET", syscall.ECONNRESET, true},
		{"ENETUNREACH", syscall.ENETUNREACH, true},
		{"generic error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestHTTPError_Error(t *testing.T) {
	err := &HTTPError{StatusCode: 500, Message: "Internal Server Error"}
	if got := err.Error(); got != "HTTP 500: Internal Server Error" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestAddJitter_Bounds(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Duration(float64(base) * 1.2)

	for i := 0; i < 20; i++ {
		got := addJitter(base, 0.2)
		if got < base || got > max {
			t.Fatalf("addJitter = %v, want within [%v, %v]", got, base, max)
		}
	}

	if got := addJitter(base, 0); got != base {
		t.Fatalf("addJitter with zero fraction = %v, want %v", got, base)
	}
}

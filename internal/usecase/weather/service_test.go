package weather

import (
	"context"
	"errors"
	"sync"
	"testing"

	"newshub/internal/infra/cache"
)

type spyTrigger struct {
	mu     sync.Mutex
	cities []string
}

func (s *spyTrigger) TriggerWeather(_ context.Context, city string) error {
	s.mu.Lock()
	s.cities = append(s.cities, city)
	s.mu.Unlock()
	return nil
}

func (s *spyTrigger) triggered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cities...)
}

func TestGet_MissTriggersCrawl(t *testing.T) {
	trigger := &spyTrigger{}
	svc := NewService(cache.NewMemoryCache(), trigger)

	_, err := svc.Get(context.Background(), "Tokyo")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err=%v, want ErrUnavailable", err)
	}
	if got := trigger.triggered(); len(got) != 1 || got[0] != "Tokyo" {
		t.Fatalf("triggered=%v", got)
	}
}

func TestUpdateThenGet(t *testing.T) {
	trigger := &spyTrigger{}
	svc := NewService(cache.NewMemoryCache(), trigger)
	ctx := context.Background()

	payload := []byte(`{"temp":21.5}`)
	if err := svc.Update(ctx, "Tokyo", payload); err != nil {
		t.Fatalf("Update err=%v", err)
	}

	got, err := svc.Get(ctx, "Tokyo")
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload=%q", got)
	}
	if len(trigger.triggered()) != 0 {
		t.Fatal("hit should not trigger a crawl")
	}
}

func TestGet_CityKeyIsCaseInsensitive(t *testing.T) {
	svc := NewService(cache.NewMemoryCache(), nil)
	ctx := context.Background()

	_ = svc.Update(ctx, "Tokyo", []byte("data"))
	if _, err := svc.Get(ctx, "TOKYO"); err != nil {
		t.Fatalf("Get err=%v", err)
	}
}

func TestUpdate_RejectsEmptyPayload(t *testing.T) {
	svc := NewService(cache.NewMemoryCache(), nil)
	if err := svc.Update(context.Background(), "Tokyo", nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestRefresh_AlwaysTriggers(t *testing.T) {
	trigger := &spyTrigger{}
	svc := NewService(cache.NewMemoryCache(), trigger)
	ctx := context.Background()

	_ = svc.Update(ctx, "Tokyo", []byte("data"))
	svc.Refresh(ctx, "Tokyo")

	if len(trigger.triggered()) != 1 {
		t.Fatalf("triggered=%v, want 1 entry", trigger.triggered())
	}
}

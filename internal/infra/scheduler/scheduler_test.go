package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

/* ─────────────────────────── 1. Register / Trigger ─────────────────────────── */

func TestRegister_RejectsBadSchedule(t *testing.T) {
	s := New(time.UTC)

	err := s.Register(Job{
		Name:     "news",
		Schedule: "not a cron spec",
		Run:      func(context.Context) error { return nil },
	})
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestRegister_RejectsDuplicateName(t *testing.T) {
	s := New(time.UTC)
	job := Job{Name: "news", Run: func(context.Context) error { return nil }}

	if err := s.Register(job); err != nil {
		t.Fatalf("first Register err=%v", err)
	}
	if err := s.Register(job); err == nil {
		t.Fatal("expected error for duplicate name")
	}
}

func TestTrigger_RunsJob(t *testing.T) {
	s := New(time.UTC)
	var runs atomic.Int32
	_ = s.Register(Job{
		Name: "news",
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	if err := s.Trigger(context.Background(), "news"); err != nil {
		t.Fatalf("Trigger err=%v", err)
	}
	if runs.Load() != 1 {
		t.Fatalf("runs=%d, want 1", runs.Load())
	}
}

func TestTrigger_UnknownJob(t *testing.T) {
	s := New(time.UTC)

	err := s.Trigger(context.Background(), "missing")
	if !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("err=%v, want ErrUnknownJob", err)
	}
}

func TestTrigger_PropagatesJobError(t *testing.T) {
	s := New(time.UTC)
	boom := errors.New("crawler exploded")
	_ = s.Register(Job{
		Name: "news",
		Run:  func(context.Context) error { return boom },
	})

	if err := s.Trigger(context.Background(), "news"); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want wrapped job error", err)
	}
}

/* ─────────────────────────── 2. Overlap skip ─────────────────────────── */

func TestTrigger_OverlappingRunIsSkipped(t *testing.T) {
	s := New(time.UTC)
	release := make(chan struct{})
	started := make(chan struct{})
	_ = s.Register(Job{
		Name: "news",
		Run: func(context.Context) error {
			close(started)
			<-release
			return nil
		},
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Trigger(context.Background(), "news")
	}()
	<-started

	// 1回目が走っている間の再トリガはスキップ
	if err := s.Trigger(context.Background(), "news"); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("err=%v, want ErrAlreadyRunning", err)
	}

	close(release)
	wg.Wait()

	// 完了後は再び実行できる
	if err := s.Trigger(context.Background(), "news"); err != nil {
		t.Fatalf("Trigger after completion err=%v", err)
	}
}

/* ─────────────────────────── 3. Weather ─────────────────────────── */

func TestTriggerWeather_PerCityOverlap(t *testing.T) {
	s := New(time.UTC)
	release := make(chan struct{})
	var mu sync.Mutex
	started := map[string]int{}
	begun := make(chan string, 4)

	s.SetWeatherRun(func(_ context.Context, city string) error {
		mu.Lock()
		started[city]++
		mu.Unlock()
		begun <- city
		<-release
		return nil
	})

	ctx := context.Background()
	if err := s.TriggerWeather(ctx, "Tokyo"); err != nil {
		t.Fatalf("TriggerWeather err=%v", err)
	}
	<-begun

	// 同一都市の再トリガは走らない、別都市は走る
	_ = s.TriggerWeather(ctx, "tokyo")
	if err := s.TriggerWeather(ctx, "Osaka"); err != nil {
		t.Fatalf("TriggerWeather(Osaka) err=%v", err)
	}
	<-begun

	close(release)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return started["Tokyo"] == 1 && started["Osaka"] == 1 && started["tokyo"] == 0
	})
}

func TestTriggerWeather_Unconfigured(t *testing.T) {
	s := New(time.UTC)
	if err := s.TriggerWeather(context.Background(), "Tokyo"); err == nil {
		t.Fatal("expected error when weather run is not configured")
	}
}

/* ─────────────────────────── 4. Startup ─────────────────────────── */

func TestStart_RunsStartupJobsOnce(t *testing.T) {
	s := New(time.UTC)
	var runs atomic.Int32
	_ = s.Register(Job{
		Name: "weather",
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	s.RunAtStartup("weather")

	s.Start()
	defer s.Stop()

	waitFor(t, func() bool { return runs.Load() == 1 })
}

/* ─────────────────────────── ヘルパ ─────────────────────────── */

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

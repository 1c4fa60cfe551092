// Package scheduler drives recurring and on-demand crawler jobs.
//
// Jobs are registered with a cron spec and a run func; robfig/cron
// fires them on schedule, and Trigger runs them on demand. A run that
// would overlap a still-running instance of the same job is skipped.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"newshub/internal/observability/metrics"
	pkgconfig "newshub/internal/pkg/config"
)

var (
	ErrUnknownJob     = errors.New("scheduler: unknown job")
	ErrAlreadyRunning = errors.New("scheduler: job already running")
)

// RunFunc executes one job run. Errors are logged; the scheduler does
// not retry within a tick.
type RunFunc func(ctx context.Context) error

// Job is one schedulable unit of work. An empty Schedule registers a
// manual-only job.
type Job struct {
	Name     string
	Schedule string
	Run      RunFunc
}

type jobState struct {
	job     Job
	running atomic.Bool
}

// Scheduler owns the cron runtime and the job table.
type Scheduler struct {
	cron *cron.Cron

	mu   sync.Mutex
	jobs map[string]*jobState

	// weatherRun backs TriggerWeather; per-city overlap state lives in
	// the job table under "weather:<city>" keys.
	weatherRun func(ctx context.Context, city string) error

	startup []string
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		jobs: make(map[string]*jobState),
	}
}

// Register adds a job to the table and, when it has a schedule, to the
// cron runtime.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("scheduler: job needs a name and a run func")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("scheduler: job %q already registered", job.Name)
	}

	st := &jobState{job: job}
	if job.Schedule != "" {
		if err := pkgconfig.ValidateCronSchedule(job.Schedule); err != nil {
			return fmt.Errorf("job %q: %w", job.Name, err)
		}
		if _, err := s.cron.AddFunc(job.Schedule, func() {
			if err := s.run(context.Background(), st); err != nil && !errors.Is(err, ErrAlreadyRunning) {
				slog.Error("scheduled job failed",
					slog.String("job", st.job.Name), slog.Any("error", err))
			}
		}); err != nil {
			return fmt.Errorf("add cron job %q: %w", job.Name, err)
		}
	}
	s.jobs[job.Name] = st

	slog.Info("job registered",
		slog.String("job", job.Name),
		slog.String("schedule", job.Schedule))
	return nil
}

// RunAtStartup marks a registered job to run once when Start is called.
func (s *Scheduler) RunAtStartup(name string) {
	s.mu.Lock()
	s.startup = append(s.startup, name)
	s.mu.Unlock()
}

// Start launches the cron runtime and fires the startup jobs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	startup := append([]string(nil), s.startup...)
	s.mu.Unlock()

	for _, name := range startup {
		go func(name string) {
			if err := s.Trigger(context.Background(), name); err != nil {
				slog.Warn("startup job failed",
					slog.String("job", name), slog.Any("error", err))
			}
		}(name)
	}
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight cron-launched runs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Trigger runs a job on demand. Returns ErrAlreadyRunning when an
// instance of the job is still in flight.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	st, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(ctx, st)
}

// SetWeatherRun installs the per-city weather crawl function.
func (s *Scheduler) SetWeatherRun(fn func(ctx context.Context, city string) error) {
	s.mu.Lock()
	s.weatherRun = fn
	s.mu.Unlock()
}

// TriggerWeather starts a weather crawl for one city in the background.
// Each city has its own overlap state, so concurrent crawls for
// different cities proceed while a repeat for the same city is skipped.
func (s *Scheduler) TriggerWeather(ctx context.Context, city string) error {
	s.mu.Lock()
	fn := s.weatherRun
	s.mu.Unlock()
	if fn == nil {
		return errors.New("scheduler: weather crawl not configured")
	}

	st := s.weatherState(city)
	go func() {
		if err := s.run(context.WithoutCancel(ctx), st); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			slog.Error("weather crawl failed",
				slog.String("city", city), slog.Any("error", err))
		}
	}()
	return nil
}

func (s *Scheduler) weatherState(city string) *jobState {
	key := "weather:" + strings.ToLower(city)

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.jobs[key]; ok {
		return st
	}
	fn := s.weatherRun
	st := &jobState{job: Job{
		Name: key,
		Run: func(ctx context.Context) error {
			return fn(ctx, city)
		},
	}}
	s.jobs[key] = st
	return st
}

func (s *Scheduler) run(ctx context.Context, st *jobState) error {
	if !st.running.CompareAndSwap(false, true) {
		slog.Warn("previous run still in flight, skipping",
			slog.String("job", st.job.Name))
		metrics.RecordCrawlerSkipped(st.job.Name)
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, st.job.Name)
	}
	defer st.running.Store(false)

	start := time.Now()
	slog.Info("job started", slog.String("job", st.job.Name))

	if err := st.job.Run(ctx); err != nil {
		return fmt.Errorf("job %s: %w", st.job.Name, err)
	}

	slog.Info("job finished",
		slog.String("job", st.job.Name),
		slog.Duration("duration", time.Since(start)))
	return nil
}

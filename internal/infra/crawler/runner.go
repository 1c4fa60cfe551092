// Package crawler runs external crawler processes.
//
// The crawlers themselves are separate scripts (python3) that publish
// their results to the ingest stream or call back into the API; this
// package only spawns them, captures their output, and reports how the
// run ended.
package crawler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"newshub/internal/observability/metrics"
)

// Status describes how a crawler run ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
)

// DefaultTimeout bounds a single crawler run.
const DefaultTimeout = 5 * time.Minute

// waitDelay gives the process a grace period after context cancellation
// before it is killed outright.
const waitDelay = 5 * time.Second

// Command describes one external crawler invocation.
type Command struct {
	// Name identifies the job in logs and metrics (e.g. "news", "weather").
	Name string

	// Path is the executable, Args its arguments.
	Path string
	Args []string

	// Env entries ("KEY=value") are appended to the parent environment.
	Env []string

	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration
}

// Result reports one finished run.
type Result struct {
	Status   Status
	ExitCode int
	Duration time.Duration
}

// Runner executes crawler commands as child processes.
type Runner struct{}

func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the command, streaming its combined output into the log.
// A timeout kills the process and yields StatusTimedOut; a non-zero
// exit yields StatusFailed. The returned error carries detail for the
// Failed and TimedOut statuses.
func (r *Runner) Run(ctx context.Context, cmd Command) (Result, error) {
	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	proc := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	proc.Env = append(os.Environ(), cmd.Env...)
	proc.WaitDelay = waitDelay

	stdout, err := proc.StdoutPipe()
	if err != nil {
		return Result{Status: StatusFailed}, fmt.Errorf("stdout pipe: %w", err)
	}
	proc.Stderr = proc.Stdout

	if err := proc.Start(); err != nil {
		res := Result{Status: StatusFailed, ExitCode: -1, Duration: time.Since(start)}
		r.record(cmd.Name, res)
		return res, fmt.Errorf("start %s: %w", cmd.Path, err)
	}

	slog.Info("crawler started",
		slog.String("job", cmd.Name),
		slog.String("path", cmd.Path),
		slog.Duration("timeout", timeout))

	// 子プロセスの出力を1行ずつログへ
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		slog.Info("crawler output",
			slog.String("job", cmd.Name),
			slog.String("line", scanner.Text()))
	}

	waitErr := proc.Wait()
	res := Result{
		ExitCode: proc.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	switch {
	case waitErr == nil:
		res.Status = StatusCompleted
		r.record(cmd.Name, res)
		slog.Info("crawler completed",
			slog.String("job", cmd.Name),
			slog.Duration("duration", res.Duration))
		return res, nil

	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Status = StatusTimedOut
		r.record(cmd.Name, res)
		slog.Error("crawler timed out",
			slog.String("job", cmd.Name),
			slog.Duration("timeout", timeout))
		return res, fmt.Errorf("crawler %s timed out after %s", cmd.Name, timeout)

	default:
		res.Status = StatusFailed
		r.record(cmd.Name, res)
		slog.Error("crawler failed",
			slog.String("job", cmd.Name),
			slog.Int("exit_code", res.ExitCode),
			slog.Any("error", waitErr))
		return res, fmt.Errorf("crawler %s: %w", cmd.Name, waitErr)
	}
}

func (r *Runner) record(job string, res Result) {
	metrics.RecordCrawlerRun(job, string(res.Status), res.Duration)
}

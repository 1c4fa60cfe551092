package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newshub/internal/config"
	"newshub/internal/infra/crawler"
	"newshub/internal/infra/scheduler"
	"newshub/internal/infra/scraper"
	workerPkg "newshub/internal/infra/worker"
	"newshub/internal/usecase/cleanup"
	"newshub/internal/usecase/news"
)

// buildScheduler loads the job table and registers the run funcs: the
// news crawl (external command plus direct RSS ingest), the per-city
// weather crawl, and the retention sweep.
func buildScheduler(
	logger *slog.Logger,
	workerConfig *workerPkg.Config,
	crawlerConfig config.CrawlerConfig,
	workerMetrics *workerPkg.Metrics,
	cleanupService *cleanup.Service,
	newsService *news.Service,
	feedIngestor *scraper.FeedIngestor,
) (*scheduler.Scheduler, error) {
	jobsConfig, err := scheduler.LoadConfig(workerConfig.JobsFile)
	if err != nil {
		return nil, fmt.Errorf("load jobs file: %w", err)
	}

	loc := jobsConfig.Location()
	if workerConfig.JobsFile == "" {
		// ジョブファイルがなければワーカー設定のタイムゾーンに従う
		if parsed, err := time.LoadLocation(workerConfig.Timezone); err == nil {
			loc = parsed
		}
	}

	sched := scheduler.New(loc)
	runner := crawler.NewRunner()

	sched.SetWeatherRun(instrument(workerMetrics, func(ctx context.Context, city string) error {
		if len(crawlerConfig.WeatherCommand) == 0 {
			return fmt.Errorf("weather crawler command not configured")
		}
		_, err := runner.Run(ctx, crawler.Command{
			Name:    "weather",
			Path:    crawlerConfig.WeatherCommand[0],
			Args:    crawlerConfig.WeatherCommand[1:],
			Env:     []string{"CRAWL_CITY=" + city},
			Timeout: workerConfig.CrawlTimeout,
		})
		return err
	}))

	for _, job := range jobsConfig.Jobs {
		var run scheduler.RunFunc

		switch job.Name {
		case "news":
			run = newsRun(logger, runner, crawlerConfig, workerConfig, workerMetrics, feedIngestor)
		case "weather":
			cities := job.Cities
			run = func(ctx context.Context) error {
				for _, city := range cities {
					if err := sched.TriggerWeather(ctx, city); err != nil {
						logger.Warn("weather trigger failed",
							slog.String("city", city), slog.Any("error", err))
					}
				}
				return nil
			}
		case "cleanup":
			run = cleanupRun(cleanupService, newsService, workerMetrics)
		default:
			logger.Warn("unknown job in jobs file, skipping", slog.String("job", job.Name))
			continue
		}

		if err := sched.Register(scheduler.Job{
			Name:     job.Name,
			Schedule: job.Schedule,
			Run:      run,
		}); err != nil {
			return nil, fmt.Errorf("register job %s: %w", job.Name, err)
		}
	}

	// 起動直後に天気を一度温めておく
	if job, ok := jobsConfig.Job("weather"); ok && len(job.Cities) > 0 {
		sched.RunAtStartup("weather")
	}

	return sched, nil
}

// newsRun runs the external news crawler, then pulls the configured
// RSS feeds in-process. A feed failure never fails the whole run.
func newsRun(
	logger *slog.Logger,
	runner *crawler.Runner,
	crawlerConfig config.CrawlerConfig,
	workerConfig *workerPkg.Config,
	workerMetrics *workerPkg.Metrics,
	feedIngestor *scraper.FeedIngestor,
) scheduler.RunFunc {
	return func(ctx context.Context) error {
		start := time.Now()

		var runErr error
		if len(crawlerConfig.NewsCommand) > 0 {
			res, err := runner.Run(ctx, crawler.Command{
				Name:    "news",
				Path:    crawlerConfig.NewsCommand[0],
				Args:    crawlerConfig.NewsCommand[1:],
				Timeout: workerConfig.CrawlTimeout,
			})
			workerMetrics.RecordJobRun(string(res.Status))
			runErr = err
		}

		for _, feed := range crawlerConfig.Feeds {
			stats, err := feedIngestor.IngestFeed(ctx, scraper.FeedSource{
				URL:        feed.URL,
				SourceName: feed.SourceName,
				CategoryID: feed.CategoryID,
			})
			if err != nil {
				logger.Warn("feed ingest failed",
					slog.String("feed", feed.URL), slog.Any("error", err))
				continue
			}
			workerMetrics.RecordItemsIngested(int(stats.Inserted))
		}

		workerMetrics.RecordJobDuration(time.Since(start).Seconds())
		if runErr == nil {
			workerMetrics.RecordLastSuccess()
		}
		return runErr
	}
}

func cleanupRun(cleanupService *cleanup.Service, newsService *news.Service, workerMetrics *workerPkg.Metrics) scheduler.RunFunc {
	return func(ctx context.Context) error {
		if _, err := cleanupService.Sweep(ctx); err != nil {
			workerMetrics.RecordJobRun("failed")
			return err
		}
		// 消えた記事が一覧キャッシュに残らないように
		newsService.InvalidateLists(ctx)
		workerMetrics.RecordJobRun("completed")
		workerMetrics.RecordLastSuccess()
		return nil
	}
}

// instrument wraps a per-city run with the worker job metrics.
func instrument(workerMetrics *workerPkg.Metrics, run func(ctx context.Context, city string) error) func(ctx context.Context, city string) error {
	return func(ctx context.Context, city string) error {
		start := time.Now()
		err := run(ctx, city)
		workerMetrics.RecordJobDuration(time.Since(start).Seconds())
		if err == nil {
			workerMetrics.RecordLastSuccess()
		}
		return err
	}
}

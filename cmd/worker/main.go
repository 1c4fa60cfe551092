package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"newshub/internal/config"
	pgRepo "newshub/internal/infra/adapter/persistence/postgres"
	"newshub/internal/infra/cache"
	"newshub/internal/infra/db"
	"newshub/internal/infra/fetcher"
	"newshub/internal/infra/queue"
	"newshub/internal/infra/scraper"
	workerPkg "newshub/internal/infra/worker"
	"newshub/internal/observability/logging"
	"newshub/internal/repository"
	"newshub/internal/resilience/circuitbreaker"
	"newshub/internal/usecase/cleanup"
	"newshub/internal/usecase/ingest"
	"newshub/internal/usecase/news"
)

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerMetrics := workerPkg.NewMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("timezone", workerConfig.Timezone),
		slog.String("jobs_file", workerConfig.JobsFile),
		slog.Duration("crawl_timeout", workerConfig.CrawlTimeout),
		slog.Int("ingest_concurrency", workerConfig.IngestConcurrency),
		slog.Int("health_port", workerConfig.HealthPort))

	crawlerConfig := config.LoadCrawlerConfig(logger)

	redisClient, err := newRedisClient(crawlerConfig.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	// キャッシュはブレーカー越しに触る。落ちていてもワーカーは止めない
	articleCache := cache.NewBreakerCache(
		cache.NewRedisCacheWithClient(redisClient),
		circuitbreaker.New(circuitbreaker.CacheConfig()))

	articleRepo := pgRepo.NewArticleRepo(database)
	settingsRepo := pgRepo.NewSettingsRepo(database)

	newsService := news.NewService(articleRepo, articleCache)
	ingestService := ingest.NewService(articleRepo, newsService)
	cleanupService := cleanup.NewService(articleRepo, settingsRepo)

	// Queue consumer: crawlers publish to the stream, we ingest.
	consumerConfig := queue.DefaultConsumerConfig()
	if host, err := os.Hostname(); err == nil && host != "" {
		consumerConfig.Consumer = host
	}
	consumerConfig.BatchSize = int64(workerConfig.IngestConcurrency)
	consumer := queue.NewConsumer(redisClient, consumerConfig, ingestService, logger)
	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("queue consumer exited", slog.Any("error", err))
		}
	}()

	feedIngestor := buildFeedIngestor(logger, articleRepo, ingestService, workerConfig.IngestConcurrency)

	sched, err := buildScheduler(logger, workerConfig, crawlerConfig,
		workerMetrics, cleanupService, newsService, feedIngestor)
	if err != nil {
		logger.Error("failed to build scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	// APIプロセスからの手動トリガを受ける
	triggerListener := queue.NewTriggerListener(redisClient, sched, logger)
	go func() {
		if err := triggerListener.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("trigger listener exited", slog.Any("error", err))
		}
	}()

	startMetricsServer(ctx, logger)

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	sched.Start()
	healthServer.SetReady(true)
	logger.Info("worker started")

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)
	sched.Stop()
	logger.Info("worker stopped")
}

func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database and waits until the API server has
// applied the migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	const probe = "SELECT 1 FROM articles LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.Exec(probe); err == nil {
			return database
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
	return nil
}

func newRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// buildFeedIngestor wires the direct RSS ingest path. Content
// enrichment is optional and controlled by CONTENT_FETCH_* env vars.
func buildFeedIngestor(logger *slog.Logger, articleRepo repository.ArticleRepository,
	ingestService *ingest.Service, parallelism int) *scraper.FeedIngestor {
	fetchConfig, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("content fetch configuration invalid, enrichment disabled",
			slog.Any("error", err))
		fetchConfig = fetcher.DefaultConfig()
		fetchConfig.Enabled = false
	}

	var contentFetcher scraper.ContentFetcher
	if fetchConfig.Enabled {
		contentFetcher = fetcher.NewReadabilityFetcher(fetchConfig)
		logger.Info("content enrichment enabled",
			slog.Int("threshold", fetchConfig.Threshold))
	}

	return &scraper.FeedIngestor{
		Fetcher:     scraper.NewRSSFetcher(newFeedHTTPClient()),
		Articles:    articleRepo,
		Ingest:      ingestService,
		Content:     contentFetcher,
		Parallelism: parallelism,
		Threshold:   fetchConfig.Threshold,
	}
}

func newFeedHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"newshub/internal/config"
	hhttp "newshub/internal/handler/http"
	hadmin "newshub/internal/handler/http/admin"
	hnews "newshub/internal/handler/http/news"
	hnotification "newshub/internal/handler/http/notification"
	"newshub/internal/handler/http/requestid"
	hweather "newshub/internal/handler/http/weather"
	pgRepo "newshub/internal/infra/adapter/persistence/postgres"
	"newshub/internal/infra/cache"
	"newshub/internal/infra/db"
	"newshub/internal/infra/notifier"
	"newshub/internal/infra/queue"
	"newshub/internal/observability/logging"
	pkgconfig "newshub/internal/pkg/config"
	"newshub/internal/resilience/circuitbreaker"
	"newshub/internal/usecase/admin"
	"newshub/internal/usecase/cleanup"
	"newshub/internal/usecase/news"
	"newshub/internal/usecase/notify"
	"newshub/internal/usecase/weather"
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

	apiConfig := config.LoadAPIConfig(logger)

	redisClient, err := newRedisClient(config.RedisURL())
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	handler := buildHandler(logger, database, redisClient)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", apiConfig.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("api server starting", slog.Int("port", apiConfig.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), apiConfig.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
		return
	}
	logger.Info("api server stopped")
}

// buildHandler wires the repositories, services, and routes.
func buildHandler(logger *slog.Logger, database *sql.DB, redisClient *redis.Client) http.Handler {
	articleCache := cache.NewBreakerCache(
		cache.NewRedisCacheWithClient(redisClient),
		circuitbreaker.New(circuitbreaker.CacheConfig()))

	articleRepo := pgRepo.NewArticleRepo(database)
	notificationRepo := pgRepo.NewNotificationRepo(database)
	settingsRepo := pgRepo.NewSettingsRepo(database)

	// 手動クロールと天気のトリガはpub/sub越しにワーカーへ渡す
	trigger := queue.NewTriggerPublisher(redisClient)

	var publisher notifier.Publisher = notifier.NewRedisPublisher(redisClient, 50, 100)
	if pkgconfig.LoadEnvBool("NOTIFY_PUSH_DISABLED", false).Value.(bool) {
		// 通知レコードは書くがプッシュ配信はしない
		publisher = notifier.NewNoOpPublisher()
	}

	newsService := news.NewService(articleRepo, articleCache)
	weatherService := weather.NewService(articleCache, trigger)
	notifyService := notify.NewService(notificationRepo, publisher)
	adminService := admin.NewService(articleRepo, newsService)
	cleanupService := cleanup.NewService(articleRepo, settingsRepo)

	mux := http.NewServeMux()
	hnews.Register(mux, newsService)
	hweather.Register(mux, weatherService)
	hnotification.Register(mux, notifyService)
	hadmin.Register(mux, adminService, cleanupService, trigger)
	mux.Handle("GET /health", hhttp.HealthHandler{DB: database})
	mux.Handle("GET /metrics", promhttp.Handler())

	return hhttp.Chain(mux,
		requestid.Middleware,
		hhttp.Logging(logger),
		hhttp.Recover(logger),
	)
}

func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
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

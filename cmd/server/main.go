// Package main is the entry point for the wa-inbox HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/popeskul/wa-inbox/internal/cache"
	"github.com/popeskul/wa-inbox/internal/config"
	"github.com/popeskul/wa-inbox/internal/events"
	"github.com/popeskul/wa-inbox/internal/handler"
	"github.com/popeskul/wa-inbox/internal/infrastructure/migrate"
	"github.com/popeskul/wa-inbox/internal/logger"
	"github.com/popeskul/wa-inbox/internal/middleware"
	"github.com/popeskul/wa-inbox/internal/provider"
	"github.com/popeskul/wa-inbox/internal/remote"
	"github.com/popeskul/wa-inbox/internal/repository"
	"github.com/popeskul/wa-inbox/internal/service"
)

const (
	defaultConfigPath = "config.yaml"
	shutdownTimeout   = 10 * time.Second
	redisBackend      = "redis"
)

func main() {
	configPath := os.Getenv("WAINBOX_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		// The logger level comes from the config, so fall back to a default one.
		fallback, _ := zap.NewProduction()
		fallback.Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	if cfg.Server.AutoMigrate {
		runner := migrate.NewRunner(&migrate.Config{
			DatabaseURL:    cfg.Database.GetURL(),
			MigrationsPath: cfg.Database.MigrationsPath,
		}, log)
		if err := runner.Up(); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx := context.Background()

	var (
		redisClient *redis.Client
		store       cache.Store
	)
	if cfg.Cache.Backend == redisBackend {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		store = cache.NewRedisStore(redisClient, cfg.Cache.KeyPrefix+":", cfg.Cache.StaleRetention)
	} else {
		store = cache.NewMemoryStore()
	}
	caches := cache.NewService(store, cfg.Cache, log)

	caller := remote.NewCaller(
		remote.RetryPolicy{
			MaxRetries: cfg.Provider.Retry.MaxRetries,
			BaseDelay:  cfg.Provider.Retry.BaseDelay,
			Retryable:  remote.IsTransient,
		},
		remote.NewCircuitBreaker(&cfg.Provider.CircuitBreaker, log),
		rate.NewLimiter(rate.Limit(cfg.Provider.RateLimit), cfg.Provider.RateBurst),
		log,
	)
	httpClient := provider.NewHTTPClient(
		cfg.Provider.BaseURL,
		cfg.Provider.AccountSID,
		cfg.Provider.AuthToken,
		time.Duration(cfg.Provider.Timeout)*time.Second,
	)
	client := remote.NewClient(httpClient, caller)

	go func() {
		probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		_ = remote.Probe(probeCtx, cfg.Provider.BaseURL, log)
	}()

	var (
		publisher  service.InvalidationPublisher
		subscriber *events.Subscriber
		natsConn   *nats.Conn
	)
	if cfg.Events.NATSURL != "" {
		natsConn, err = events.Connect(cfg.Events.NATSURL, log)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		origin := uuid.NewString()
		publisher = events.NewPublisher(natsConn, cfg.Events.InvalidateSubject, origin)
		subscriber = events.NewSubscriber(natsConn, cfg.Events.InvalidateSubject, origin, caches, log)
		if err := subscriber.Start(); err != nil {
			log.Fatal("Failed to subscribe to cache invalidations", zap.Error(err))
		}
	}

	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, client, caller, caches, redisClient, publisher, log)

	middlewareConfig := &middleware.Config{
		Logger:         log,
		RateLimit:      cfg.Middleware.RateLimit,
		RateWindow:     time.Minute,
		RequestTimeout: time.Duration(cfg.Middleware.RequestTimeout) * time.Second,
	}
	if cfg.Middleware.EnableCORS {
		middlewareConfig.CORS = middleware.DefaultCORSConfig(cfg.Middleware.AllowedOrigins)
	}

	router := setupRouter(handler.NewHandler(svc, log), middleware.Chain(middlewareConfig))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := svc.Scheduler.Start(); err != nil {
		log.Error("Failed to start cache pruning", zap.Error(err))
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if svc.Scheduler.IsRunning() {
		if err := svc.Scheduler.Stop(); err != nil {
			log.Error("Failed to stop scheduler", zap.Error(err))
		}
	}

	if subscriber != nil {
		if err := subscriber.Stop(); err != nil {
			log.Warn("Failed to drain invalidation subscription", zap.Error(err))
		}
	}
	if natsConn != nil {
		natsConn.Close()
	}

	log.Info("Server exited")
}

// Package main is the entry point for the spinecheck HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/popeskul/spinecheck/internal/alert"
	"github.com/popeskul/spinecheck/internal/channel"
	"github.com/popeskul/spinecheck/internal/clock"
	"github.com/popeskul/spinecheck/internal/config"
	"github.com/popeskul/spinecheck/internal/handler"
	"github.com/popeskul/spinecheck/internal/metrics"
	"github.com/popeskul/spinecheck/internal/middleware"
	"github.com/popeskul/spinecheck/internal/redflag"
	"github.com/popeskul/spinecheck/internal/render"
	"github.com/popeskul/spinecheck/internal/repository"
	"github.com/popeskul/spinecheck/internal/service"
	"github.com/popeskul/spinecheck/internal/token"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file", zap.Error(err))
	}

	cfg, err := config.LoadConfig(config.ResolvePath())
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	repo := repository.NewRepository(db)

	adapters, breaker, err := buildAdapters(ctx, cfg, repo, logger)
	if err != nil {
		logger.Fatal("Failed to build channel adapters", zap.Error(err))
	}

	clk := clock.New()
	codec, err := token.NewCodec(
		token.SecretsFromStrings(cfg.Security.TokenSecrets),
		token.WithTTL(cfg.Security.TokenTTL()),
		token.WithClock(clk),
	)
	if err != nil {
		logger.Fatal("Failed to build token codec", zap.Error(err))
	}

	renderer := render.NewRenderer(render.Config{
		BaseURL:             cfg.App.BaseURL,
		ExpandedCareEnabled: cfg.App.ExpandedCareEnabled,
	}, codec)

	scanner := redflag.NewScanner(repo.Settings(),
		redflag.WithClock(clk),
		redflag.WithCacheTTL(cfg.RedFlag.CacheTTL()),
		redflag.WithLogger(logger),
	)

	var notifier alert.Notifier
	if cfg.Alert.WebhookURL != "" {
		notifier = alert.NewWebhookNotifier(alert.Config{
			URL:          cfg.Alert.WebhookURL,
			Timeout:      cfg.Alert.Timeout(),
			DedupeWindow: cfg.Alert.DedupeWindow(),
		}, redisClient, logger)
	} else {
		logger.Warn("Urgent alert webhook is not configured; red flags will only be logged")
	}

	m := metrics.New()

	svc := service.NewService(service.Dependencies{
		Config:   cfg,
		Repo:     repo,
		Redis:    redisClient,
		Adapters: adapters,
		Breaker:  breaker,
		Codec:    codec,
		Scanner:  scanner,
		Renderer: renderer,
		Notifier: notifier,
		Clock:    clk,
		Metrics:  m,
		Logger:   logger,
	})

	h := handler.NewHandler(svc, logger)

	router := setupRouter(h, repo.Operator(), cfg.Security, m, logger)

	middlewareConfig := &middleware.Config{
		Logger:         logger,
		RateLimit:      rate.Limit(cfg.Middleware.RateLimit),
		RateLimitBurst: cfg.Middleware.RateLimitBurst,
		RequestTimeout: time.Duration(cfg.Middleware.RequestTimeout) * time.Second,
	}
	if cfg.Middleware.EnableCORS {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.Middleware.AllowedOrigins
		middlewareConfig.CORS = cors
	}

	finalHandler := middleware.Chain(middlewareConfig)(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      finalHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if svc.Scheduler != nil {
		if err := svc.Scheduler.Start(); err != nil {
			logger.Error("Failed to start scheduler on startup", zap.Error(err))
		} else {
			logger.Info("In-process dispatch scheduler started",
				zap.Int("intervalMinutes", cfg.Scheduler.IntervalMinutes))
		}
	}

	go func() {
		logger.Info("Starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if svc.Scheduler != nil && svc.Scheduler.IsRunning() {
		if err := svc.Scheduler.Stop(); err != nil {
			logger.Error("Failed to stop scheduler", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildAdapters returns the enabled channel adapters and, for the webhook SMS transport,
// its circuit breaker.
func buildAdapters(
	ctx context.Context,
	cfg *config.Config,
	repo repository.Repository,
	logger *zap.Logger,
) (channel.Set, service.BreakerReporter, error) {
	var (
		adapters []channel.Adapter
		breaker  service.BreakerReporter
	)

	if cfg.Email.Enabled {
		client, err := channel.NewSESClient(ctx, cfg.Email.Region)
		if err != nil {
			return nil, nil, err
		}
		adapters = append(adapters, channel.NewSESEmail(
			client, cfg.Email.From, cfg.Email.ReplyTo,
			channel.SuppressionFunc(repo.OptOut().IsEmailSuppressed), logger,
		))
	}

	if cfg.SMS.Enabled {
		optedOut := channel.SuppressionFunc(repo.OptOut().IsOptedOut)
		switch cfg.SMS.Provider {
		case config.SMSProviderSNS:
			client, err := channel.NewSNSClient(ctx, cfg.SMS.Region)
			if err != nil {
				return nil, nil, err
			}
			adapters = append(adapters, channel.NewSNSSMS(client, cfg.SMS.SenderID, optedOut, logger))
		default:
			webhook, err := channel.NewWebhookSMS(&cfg.SMS.Webhook, optedOut, logger)
			if err != nil {
				return nil, nil, err
			}
			adapters = append(adapters, webhook)
			breaker = webhook.Breaker()
		}
	}

	if len(adapters) == 0 {
		logger.Warn("No delivery channels enabled; due check-ins will fail until one is configured")
	}
	return channel.NewSet(adapters...), breaker, nil
}

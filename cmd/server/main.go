package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devikarao/newsletter-service/internal/api"
	"github.com/devikarao/newsletter-service/internal/config"
	"github.com/devikarao/newsletter-service/internal/notify"
	"github.com/devikarao/newsletter-service/internal/queue"
	"github.com/devikarao/newsletter-service/internal/service"
	"github.com/devikarao/newsletter-service/internal/store"
	ws "github.com/devikarao/newsletter-service/internal/websocket"
	"github.com/devikarao/newsletter-service/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize PostgreSQL
	ctx := context.Background()
	pgStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()
	logger.Info("connected to PostgreSQL")

	// Run database migrations
	if err := pgStore.RunMigrations(ctx, "migrations"); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Initialize Redis (confirmation email queue)
	redisStore, err := store.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisStore.Close()
	logger.Info("connected to Redis")

	// Email provider: Resend when credentials exist, noop otherwise
	var sender notify.Sender
	if cfg.ResendAPIKey != "" {
		sender = notify.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
		logger.Info("email sender configured", "provider", "resend")
	} else {
		sender = notify.NewNoopSender(logger)
		logger.Warn("RESEND_API_KEY not set, confirmation emails will be logged only")
	}

	// WebSocket hub for the live admin dashboard
	hub := ws.NewHub(logger)
	go hub.Run()

	// Confirmation email pipeline: queue → dispatcher → worker pool → mailer
	notifQueue := queue.NewNotificationQueue(redisStore, logger)
	mailer := worker.NewMailer(sender, pgStore, notifQueue, hub, logger)
	pool := worker.NewPool(cfg.NumWorkers, mailer, logger)
	dispatcher := worker.NewDispatcher(redisStore.Client(), pool, logger)

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	pool.Start(workerCtx)
	go dispatcher.Start(workerCtx)

	// Service + router
	subscriptions := service.NewSubscription(pgStore, notifQueue, logger)
	router := api.NewRouter(subscriptions, pgStore, notifQueue, hub)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Stop pulling new jobs, then drain the pool
	cancelWorkers()
	pool.Stop()

	logger.Info("server stopped")
}

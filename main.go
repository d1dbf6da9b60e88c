package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/replydesk/responder/environments"
	"github.com/replydesk/responder/handlers"
	"github.com/replydesk/responder/internal/composer"
	"github.com/replydesk/responder/internal/eventlog"
	"github.com/replydesk/responder/internal/middlewares"
	"github.com/replydesk/responder/internal/outbox"
	"github.com/replydesk/responder/internal/queue"
	"github.com/replydesk/responder/internal/scheduler"
	"github.com/replydesk/responder/internal/settings"
	"github.com/replydesk/responder/internal/worker"
	"github.com/replydesk/responder/pkg/aigen"
	"github.com/replydesk/responder/pkg/logger"
	"github.com/replydesk/responder/pkg/mailer"
	"github.com/replydesk/responder/pkg/store"
	"github.com/replydesk/responder/pkg/validator"
	"github.com/replydesk/responder/routes"
)

func main() {
	logger.Init()

	cfg := environments.Load()

	// Hard-fail if required secrets are missing.
	if cfg.Mailer.APIKey == "" {
		logger.Fatalf("RESEND_API_KEY is required but not set")
	}
	if cfg.Auth.AdminAPIKey == "" {
		logger.Fatalf("ADMIN_API_KEY is required but not set")
	}
	if cfg.AI.APIKey == "" {
		logger.Warnf("OPENAI_API_KEY not set, replies will use the template fallback")
	}

	logger.Infof("Starting auto-responder service...")

	storeClient, err := store.NewClient(cfg.Valkey)
	if err != nil {
		logger.Fatalf("Failed to connect to Valkey: %v", err)
	}

	events := eventlog.New(storeClient, cfg.Keys.Log, cfg.Limits.LogMax)
	jobQueue := queue.New(storeClient, cfg.Keys.Queue)
	settingsStore := settings.NewStore(storeClient, cfg.Keys.Settings)
	sentOutbox := outbox.New(storeClient, cfg.Keys.Outbox, cfg.Limits.OutboxMax)

	mailClient := mailer.NewClient(cfg.Mailer)
	generator := aigen.New(cfg.AI)
	replyComposer := composer.New(generator, events)

	drainWorker := worker.New(
		jobQueue,
		settingsStore,
		replyComposer,
		mailClient,
		sentOutbox,
		events,
		storeClient,
		cfg.Keys.WorkerLastRun,
		cfg.Worker,
	)

	// Context for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(drainWorker, cfg.Scheduler.Interval, cfg.Worker.MaxBatch)

	healthHandler := handlers.NewHealthHandler(storeClient)
	intakeHandler := handlers.NewIntakeHandler(jobQueue, events)
	settingsHandler := handlers.NewSettingsHandler(settingsStore)
	workerHandler := handlers.NewWorkerHandler(drainWorker, events)
	previewHandler := handlers.NewPreviewHandler(settingsStore, replyComposer, events)
	outboxHandler := handlers.NewOutboxHandler(sentOutbox)
	logsHandler := handlers.NewLogsHandler(events)
	schedulerHandler := handlers.NewSchedulerHandler(sched, ctx, cfg)

	if cfg.Scheduler.AutoStart {
		logger.Infof("Auto-starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			logger.Warnf("Failed to auto-start scheduler: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			middlewares.APIKeyHeader,
		},
	}))

	routes.RegisterRoutes(
		e,
		healthHandler,
		intakeHandler,
		settingsHandler,
		workerHandler,
		previewHandler,
		outboxHandler,
		logsHandler,
		schedulerHandler,
		cfg,
	)

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	cancel()

	if sched.IsRunning() {
		logger.Infof("Stopping scheduler...")
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()

		done := make(chan error, 1)
		go func() {
			done <- sched.Stop()
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Errorf("Error stopping scheduler: %v", err)
			} else {
				logger.Infof("Scheduler stopped successfully")
			}
		case <-stopCtx.Done():
			logger.Warnf("Scheduler stop timeout, forcing shutdown")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	logger.Infof("Closing store connection...")
	if err := storeClient.Close(); err != nil {
		logger.Errorf("Error closing store: %v", err)
	}

	logger.Infof("Graceful shutdown completed")
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/autoposter/internal/api"
	"github.com/timmy/autoposter/internal/api/handler"
	"github.com/timmy/autoposter/internal/config"
	"github.com/timmy/autoposter/internal/logger"
	"github.com/timmy/autoposter/internal/publish"
	"github.com/timmy/autoposter/internal/render"
	"github.com/timmy/autoposter/internal/repository"
	"github.com/timmy/autoposter/internal/service"
	"github.com/timmy/autoposter/internal/storage"
)

func main() {
	// Initialize logger first
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize blob storage
	objectStorage, err := storage.NewStorage(&storage.S3Config{
		Type:      storage.StorageType(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	// Initialize repositories
	trackerRepo := repository.NewTrackerRepository(objectStorage, cfg.Schedule.TrackerKey, appLogger)
	scheduleRepo := repository.NewScheduleRepository(objectStorage,
		cfg.Schedule.ConfigKey, cfg.Schedule.TitlesKey, cfg.Schedule.ShortTitlesKey, appLogger)
	archiveRepo := repository.NewArchiveRepository(db)

	// Initialize external clients
	renderer := render.NewClient(&render.ClientConfig{
		BaseURL: cfg.Render.BaseURL,
		APIKey:  cfg.Render.APIKey,
		Timeout: time.Duration(cfg.Render.TimeoutSeconds) * time.Second,
	})
	publisher := publish.NewRegistry(time.Duration(cfg.Publish.TimeoutSeconds) * time.Second)

	// Initialize run controller
	runner := service.NewRunner(trackerRepo, scheduleRepo, archiveRepo, renderer, publisher, cfg.Runner)

	// Setup router
	router, runHandler := api.SetupRouter(runner, archiveRepo, cfg.Server)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Daily trigger loop, stopped on shutdown
	triggerCtx, cancelTrigger := context.WithCancel(context.Background())
	go dailyTrigger(triggerCtx, runHandler, cfg.Runner.DailyTriggerHour)

	// Start server in goroutine
	go func() {
		logger.Info("Starting API server on port %d (mode=%s)", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancelTrigger()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

// dailyTrigger fires one run attempt at the configured hour each day. The
// run controller's own guards make a redundant fire harmless.
func dailyTrigger(ctx context.Context, runHandler *handler.RunHandler, hour int) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		select {
		case <-time.After(next.Sub(now)):
		case <-ctx.Done():
			return
		}

		logger.Info("Daily trigger firing")
		if result := runHandler.TryRun(ctx); result != nil {
			logger.Info("Daily run finished: %s", result.Summary)
		} else {
			logger.Warn("Daily trigger skipped: a run is already in progress")
		}
	}
}

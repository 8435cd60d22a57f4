package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/timmy/autoposter/internal/config"
	"github.com/timmy/autoposter/internal/logger"
	"github.com/timmy/autoposter/internal/publish"
	"github.com/timmy/autoposter/internal/render"
	"github.com/timmy/autoposter/internal/repository"
	"github.com/timmy/autoposter/internal/service"
	"github.com/timmy/autoposter/internal/storage"
)

// One-shot runner for cron and container schedulers: executes a single
// bounded invocation and exits non-zero when the run could not start.
func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "autoposter-run",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	noArchive := flag.Bool("no-archive", false, "Skip the relational archive")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
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

	// Archive is optional for one-shot runs
	var archiveRepo *repository.ArchiveRepository
	if !*noArchive {
		db, err := repository.InitDB(&cfg.Database)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize database")
		}
		archiveRepo = repository.NewArchiveRepository(db)
	}

	trackerRepo := repository.NewTrackerRepository(objectStorage, cfg.Schedule.TrackerKey, appLogger)
	scheduleRepo := repository.NewScheduleRepository(objectStorage,
		cfg.Schedule.ConfigKey, cfg.Schedule.TitlesKey, cfg.Schedule.ShortTitlesKey, appLogger)

	renderer := render.NewClient(&render.ClientConfig{
		BaseURL: cfg.Render.BaseURL,
		APIKey:  cfg.Render.APIKey,
		Timeout: time.Duration(cfg.Render.TimeoutSeconds) * time.Second,
	})
	publisher := publish.NewRegistry(time.Duration(cfg.Publish.TimeoutSeconds) * time.Second)

	runner := service.NewRunner(trackerRepo, scheduleRepo, archiveRepo, renderer, publisher, cfg.Runner)

	result := runner.Run(context.Background())
	logger.Info("Run %s: status=%s, %s", result.RunID, result.Status, result.Summary)

	if result.Status == service.RunFailed || result.Status == service.RunBusy {
		os.Exit(1)
	}
}

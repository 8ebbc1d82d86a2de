package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/alexmontero/ocr-pipeline-be/internal/core/ocr"
	"github.com/alexmontero/ocr-pipeline-be/internal/core/pipeline"
	"github.com/alexmontero/ocr-pipeline-be/internal/core/textproc"
	"github.com/alexmontero/ocr-pipeline-be/internal/handlers"
	"github.com/alexmontero/ocr-pipeline-be/internal/repositories"
	"github.com/alexmontero/ocr-pipeline-be/internal/services"
	"github.com/alexmontero/ocr-pipeline-be/internal/shared/config"
	"github.com/alexmontero/ocr-pipeline-be/internal/shared/database"
	"github.com/alexmontero/ocr-pipeline-be/internal/shared/utils"
)

func main() {
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)

	repo, cleanup := buildHistoryRepo(cfg)
	defer cleanup()

	var history *services.HistoryService
	if repo != nil {
		history = services.NewHistoryService(repo, cfg.HistoryRetentionDays)
	}

	pipe := buildPipeline(cfg)

	scheduler := cron.New()
	if history != nil {
		if _, err := scheduler.AddFunc("0 3 * * *", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			history.PurgeOld(ctx)
		}); err != nil {
			log.Fatal().Err(err).Msg("failed to schedule history purge")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:   "ocr-pipeline-be",
		BodyLimit: 12 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	ocrHandler := handlers.NewOCRHandler(pipe, history)
	historyHandler := handlers.NewHistoryHandler(history)
	systemHandler := handlers.NewSystemHandler(pipe, history)

	app.Get("/health", systemHandler.Health)
	api := app.Group("/api")
	api.Post("/process-ocr", ocrHandler.ProcessOCR)
	api.Get("/providers", systemHandler.Providers)
	api.Get("/stats", systemHandler.Stats)
	if history != nil {
		api.Get("/history", historyHandler.ListJobs)
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting http server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// buildHistoryRepo selects the persistence backend. Postgres when a
// DATABASE_URL is configured, embedded SQLite otherwise. History is
// optional: a connection failure logs and disables it rather than
// preventing startup, since recognition works without it.
func buildHistoryRepo(cfg *config.Config) (repositories.JobRepo, func()) {
	noop := func() {}

	switch cfg.HistoryDriver {
	case "postgres":
		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("history store unavailable, continuing without it")
			return nil, noop
		}
		return repositories.NewJobRepo(db), noop
	case "sqlite":
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Error().Err(err).Msg("history store unavailable, continuing without it")
			return nil, noop
		}
		repo, err := repositories.NewSQLiteJobRepo(db)
		if err != nil {
			log.Error().Err(err).Msg("history schema init failed, continuing without it")
			db.Close()
			return nil, noop
		}
		return repo, func() { db.Close() }
	default:
		log.Warn().Str("driver", cfg.HistoryDriver).Msg("unknown history driver, history disabled")
		return nil, noop
	}
}

func buildPipeline(cfg *config.Config) *pipeline.Pipeline {
	var candidates []ocr.Provider

	if cfg.OCRSpaceAPIKey != "" {
		candidates = append(candidates, ocr.NewOCRSpaceProvider(cfg.OCRSpaceAPIKey, cfg.OCRSpaceEndpoint, cfg.ProviderTimeout))
	} else {
		log.Warn().Msg("OCR_SPACE_API_KEY not set, cloud provider disabled")
	}

	tesseract := ocr.NewTesseractProvider(cfg.TesseractPath)
	if tesseract.Available() {
		candidates = append(candidates, tesseract)
	}

	// Register only providers that answer a connectivity check, so a
	// dead endpoint fails once at startup instead of on every request.
	var providers []ocr.Provider
	for _, p := range candidates {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := p.TestConnectivity(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("provider", p.Name()).Msg("provider failed connectivity check, skipping")
			continue
		}
		log.Info().Str("provider", p.Name()).Strs("languages", p.SupportedLanguages()).Msg("provider registered")
		providers = append(providers, p)
	}

	if len(providers) == 0 {
		log.Fatal().Msg("no ocr providers available: configure OCR_SPACE_API_KEY or install tesseract")
	}

	orch := ocr.NewOrchestrator(cfg.MinConfidence, cfg.MaxRetries, providers...)
	post := textproc.NewPostprocessor(cfg.PhonePattern)
	return pipeline.New(orch, post, cfg.CacheCapacity, cfg.DefaultLanguage)
}

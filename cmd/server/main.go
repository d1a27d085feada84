package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/classbook-backend/internal/calendar"
	"github.com/stemsi/classbook-backend/internal/config"
	"github.com/stemsi/classbook-backend/internal/database"
	"github.com/stemsi/classbook-backend/internal/handler"
	"github.com/stemsi/classbook-backend/internal/logger"
	"github.com/stemsi/classbook-backend/internal/persistence"
	"github.com/stemsi/classbook-backend/internal/router"
	"github.com/stemsi/classbook-backend/internal/service"
	"github.com/stemsi/classbook-backend/internal/store"
	"github.com/stemsi/classbook-backend/internal/validator"
	"github.com/stemsi/classbook-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("storage", cfg.StorageDriver).
		Str("timezone", cfg.Location.String()).
		Msg("Starting Classbook Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Storage ──────────────────────────────────────────────────
	backend, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer backend.Close()

	state, found, err := persistence.LoadOrDefault(ctx, backend.Port)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load workbook")
	}
	log.Info().
		Bool("found", found).
		Int("classes", len(state.Classes)).
		Int("students", len(state.Students)).
		Msg("Workbook loaded")

	st := store.New(state)

	// ─── Start Background Saves ────────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	snapshots := worker.NewSnapshotWorker(backend.Port, st.Snapshot, cfg.SaveDebounce, log)
	st.SetChangeHook(snapshots.Notify)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		snapshots.Start(workerCtx)
	}()

	// ─── Calendar Feed ─────────────────────────────────────────────────
	// The feed cache reuses the storage Redis or connects on its own;
	// without Redis every week view downloads the feed.
	feedCache := backend.Redis
	if feedCache == nil && cfg.ICalCacheTTL > 0 {
		feedCache = connectFeedCache(ctx, cfg, log)
		if feedCache != nil {
			defer feedCache.Close()
		}
	}
	feed := calendar.NewClient(cfg, feedCache, log)

	// ─── Initialize Services ──────────────────────────────────────────
	catalogService := service.NewCatalogService(st, log)
	gradeService := service.NewGradeService(st, log)
	dashboardService := service.NewDashboardService(st, cfg.Location)
	timetableService := service.NewTimetableService(st, feed, cfg.Location, log)
	transferService := service.NewTransferService(st, log)
	seatingService := service.NewSeatingService(st, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Records:   handler.NewRecords(st),
		Catalog:   handler.NewCatalogHandler(catalogService),
		Grade:     handler.NewGradeHandler(gradeService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Timetable: handler.NewTimetableHandler(timetableService),
		Transfer: handler.NewTransferHandler(transferService, func() string {
			return st.Now().In(cfg.Location).Format("2006-01-02")
		}),
		Seating: handler.NewSeatingHandler(seatingService),
		WS:      handler.NewWSHandler(seatingService, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(snapshots, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the snapshot worker; it writes pending changes before returning.
	workerCancel()
	<-workerDone

	log.Info().Msg("Shutdown complete")
}

func connectFeedCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) *redis.Client {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	rdb, err := database.NewRedisClient(pingCtx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Calendar feed cache disabled")
		return nil
	}
	return rdb
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

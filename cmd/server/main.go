// Package main is the entry point of the qualitycore analytics server.
// It opens the history and snapshot databases, loads the configured portfolios,
// schedules KPI snapshots and serves the analytics API until interrupted.
package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/qualitycore/internal/config"
	"github.com/aristath/qualitycore/internal/database"
	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/modules/history"
	"github.com/aristath/qualitycore/internal/modules/portfolio"
	"github.com/aristath/qualitycore/internal/modules/snapshots"
	"github.com/aristath/qualitycore/internal/scheduler"
	"github.com/aristath/qualitycore/internal/server"
	"github.com/aristath/qualitycore/internal/services"
	"github.com/aristath/qualitycore/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)
	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting qualitycore")

	historyDB := openDatabase(log, cfg.HistoryDBPath(), database.NameHistory, database.ProfileStandard)
	defer historyDB.Close()
	snapshotsDB := openDatabase(log, cfg.SnapshotsDBPath(), database.NameSnapshots, database.ProfileLedger)
	defer snapshotsDB.Close()

	portfolios := loadPortfolios(log, cfg.PortfoliosFile)

	store := history.NewStore(historyDB.Conn(), log)
	snapshotRepo := snapshots.NewRepository(snapshotsDB.Conn(), log)
	analytics := services.NewAnalyticsService(store, portfolios, services.Options{
		TargetCurrency: cfg.TargetCurrency,
		FairValueYears: cfg.FairValueYears,
	}, log)

	sched := scheduler.New(log)
	if cfg.SnapshotSchedule != "" {
		if err := sched.AddJob(cfg.SnapshotSchedule, scheduler.NewSnapshotJob(analytics, snapshotRepo, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register snapshot job")
		}
	}
	if err := sched.AddJob("0 30 3 * * *", scheduler.NewCheckDatabasesJob(log, historyDB, snapshotsDB)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register database check job")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:         log,
		HistoryDB:   historyDB,
		SnapshotsDB: snapshotsDB,
		Analytics:   analytics,
		Snapshots:   snapshotRepo,
		History:     store,
		Tracked:     portfolio.AllTickers(portfolios),
		Scheduler:   sched,
		DataDir:     cfg.DataDir,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	sched.Stop()

	log.Info().Msg("Shutdown complete")
}

func openDatabase(log zerolog.Logger, path, name string, profile database.DatabaseProfile) *database.DB {
	db, err := database.New(database.Config{Path: path, Profile: profile, Name: name})
	if err != nil {
		log.Fatal().Err(err).Str("database", name).Msg("Failed to open database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Str("database", name).Msg("Failed to migrate database")
	}
	return db
}

// loadPortfolios tolerates a missing file so the per-ticker endpoints stay usable
func loadPortfolios(log zerolog.Logger, path string) []domain.Portfolio {
	portfolios, err := portfolio.LoadPortfolios(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Msg("Portfolio file not found, starting without portfolios")
		return nil
	}
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to load portfolios")
	}
	log.Info().
		Int("portfolios", len(portfolios)).
		Int("tickers", len(portfolio.AllTickers(portfolios))).
		Msg("Loaded portfolios")
	return portfolios
}

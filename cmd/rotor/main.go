package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"rotor/internal/config"
	"rotor/internal/database"
	"rotor/internal/engine"
	"rotor/internal/history"
	"rotor/internal/indicators"
	"rotor/internal/journal"
	"rotor/internal/scheduler"
	"rotor/internal/server"
	"rotor/internal/snapshot"
	"rotor/internal/universe"
	"rotor/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New(logger.Config{
		Level:  getLogLevel(),
		Pretty: true,
	})

	log.Info().Msg("Starting Rotor")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Load and validate the strategy. A bad strategy aborts here, before
	// the first evaluation tick.
	strategy, err := config.NewLoader(log).LoadStrategy(cfg.StrategyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load strategy")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create data directory")
	}

	// Initialize databases
	journalDB, err := database.New(filepath.Join(cfg.DataDir, "journal.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open journal database")
	}
	defer journalDB.Close()

	historyDB, err := database.New(filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	historyStore, err := history.NewStore(historyDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history store")
	}

	jnl, err := journal.New(journalDB, uuid.NewString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize journal")
	}

	// Build the universe
	uni := universe.Build(strategy.Universe, log)
	if len(uni.Instruments) == 0 {
		log.Fatal().Msg("Universe is empty after validation")
	}

	provider := indicators.NewTalibProvider(historyStore, indicators.Windows{
		Trend:      strategy.Lookback.Trend,
		Momentum:   strategy.Lookback.Momentum,
		Volatility: strategy.Lookback.Volatility,
	}, log)

	snapStore := snapshot.NewStore(filepath.Join(cfg.DataDir, "portfolio.msgpack"), log)

	// Initialize the engine
	eng, err := engine.New(engine.Config{
		Strategy:    strategy,
		Provider:    provider,
		Instruments: uni.Instruments,
		Journal:     jnl,
		Snapshots:   snapStore,
		Log:         log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize engine")
	}

	// Initialize scheduler
	sched := scheduler.New(log)

	jobTimeout := 5 * time.Minute
	if err := sched.AddJob(strategy.Rebalance.Schedule, scheduler.NewRebalanceJob(eng, jobTimeout, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register rebalance job")
	}
	if err := sched.AddJob(strategy.Rebalance.ExitSchedule, scheduler.NewExitCheckJob(eng, jobTimeout, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register exit check job")
	}
	if err := sched.AddJob("0 0 */6 * * *", scheduler.NewHealthCheckJob(journalDB, historyDB, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register health check job")
	}

	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:     cfg.Port,
		Log:      log,
		Engine:   eng,
		Journal:  jnl,
		Strategy: strategy.Name,
		DevMode:  cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().
		Int("port", cfg.Port).
		Str("strategy", strategy.Name).
		Str("run_id", eng.RunID()).
		Msg("Rotor started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Rotor stopped")
}

func getLogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}

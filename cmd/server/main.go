// Package main is the entry point for the taxfolio tax-computation service.
// It exposes the deterministic tax engines (capital gains lot selection,
// wash-sale detection, AMT, quarterly estimates) over HTTP. The engines are
// pure; the only state the process owns is the versioned tax-parameter
// database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/taxfolio/internal/config"
	"github.com/aristath/taxfolio/internal/database"
	"github.com/aristath/taxfolio/internal/server"
	"github.com/aristath/taxfolio/internal/taxparams"
	"github.com/aristath/taxfolio/pkg/logger"
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

	log.Info().Msg("Starting taxfolio")

	// The parameter database seeds itself from embedded defaults on first
	// open, so a fresh deployment is immediately serviceable.
	paramsDB, err := database.New(database.Config{
		Path: cfg.ParamsDBPath(),
		Name: "taxparams",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open parameter database")
	}
	defer paramsDB.Close()

	paramsStore, err := taxparams.NewStore(paramsDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize parameter store")
	}

	srv := server.New(server.Config{
		Log:         log,
		Config:      cfg,
		ParamsDB:    paramsDB,
		ParamsStore: paramsStore,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("taxfolio stopped")
}

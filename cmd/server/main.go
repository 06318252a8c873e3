package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lemonstring/strum/internal/config"
	"github.com/lemonstring/strum/internal/logger"
	"github.com/lemonstring/strum/internal/server"
	"github.com/lemonstring/strum/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)

	lazy := store.NewLazy(func() (store.Store, error) {
		return store.Open(store.Options{
			Path:           cfg.Database.Path,
			MigrationsPath: cfg.Database.MigrationsPath,
			FallbackDir:    cfg.Database.FallbackDir,
		})
	})
	st, err := lazy.Get()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open store")
	}

	srv := server.New(cfg, st)

	// Run the server until it fails or a shutdown signal arrives.
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		logger.Log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Shutdown failed")
		os.Exit(1)
	}
}

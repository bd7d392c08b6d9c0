package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"empdir/internal/app/server"
	"empdir/internal/platform/config"
	"empdir/internal/platform/logging"
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatal().Err(err).Msg("load .env failed")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server stopped")
	}
}

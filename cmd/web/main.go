package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"gepay-web/internal/app"
	"gepay-web/internal/config"
	"gepay-web/internal/logger"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("gepay-web", true, false)
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init("gepay-web", cfg.Debug, cfg.IsProduction())
	if envErr != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("env", cfg.Env).
		Str("session_backend", cfg.SessionBackend).
		Msg("Starting GE.PAY web")

	if err := application.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return
	}

	log.Info().Msg("Server exited")
}

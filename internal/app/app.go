package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"gepay-web/internal/api"
	"gepay-web/internal/config"
	"gepay-web/internal/handlers"
	"gepay-web/internal/middleware"
	"gepay-web/internal/services"
)

// Store is a session store that can report its health.
type Store interface {
	services.SessionStore
	handlers.Pinger
}

type App struct {
	Config   *config.Config
	Store    Store
	Limiter  middleware.RateLimiter
	API      *api.Client
	Notifier services.OperatorNotifier

	closers []func() error
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		API: api.NewClient(api.Endpoints{
			Auth:         cfg.AuthURL,
			Transactions: cfg.TransactionsURL,
			Support:      cfg.SupportURL,
		}, cfg.APITimeout),
	}

	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		redisService, err := services.NewRedisService(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.Store = redisService
		app.Limiter = redisService
		app.closers = append(app.closers, redisService.Close)
	default:
		log.Warn().Msg("Using in-memory session store, sessions are lost on restart")
		app.Store = services.NewMemorySessionStore(cfg.SessionTTL)
	}

	if cfg.BotToken != "" && cfg.OperatorChatID != 0 {
		notifier, err := services.NewTelegramNotifier(cfg.BotToken, cfg.OperatorChatID)
		if err != nil {
			log.Warn().Err(err).Msg("Operator notifications disabled")
		} else {
			app.Notifier = notifier
		}
	}

	return app, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         ":" + app.Config.Port,
		Handler:      app.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", app.Config.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (app *App) Close() error {
	var errs []error
	for _, closer := range app.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

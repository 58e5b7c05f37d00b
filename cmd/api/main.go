package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shinyyama/reconnect/internal/config"
	"github.com/shinyyama/reconnect/internal/db"
	"github.com/shinyyama/reconnect/internal/events"
	"github.com/shinyyama/reconnect/internal/logging"
	"github.com/shinyyama/reconnect/internal/media"
	"github.com/shinyyama/reconnect/internal/repository"
	"github.com/shinyyama/reconnect/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", false)
		log.Fatal().Err(err).Msg("config load error")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := media.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.MediaBackend).Msg("media store init failed")
	}
	defer media.Close(store)

	var pub events.Publisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		rp, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, events disabled")
		} else {
			pub = rp
		}
	}
	defer pub.Close()

	srv := server.New(server.Options{
		Repo:           repository.NewFoundItemRepository(nil),
		Media:          store,
		Publisher:      pub,
		StaticRoot:     media.StaticRoot(cfg),
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigins:    cfg.CORSOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(":" + cfg.Port)
	}()

	// The server answers (with 503 on /healthz) while MySQL is still coming up.
	go func() {
		if err := db.ConnectWithRetry(ctx, cfg, srv.SetDB); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("database never became ready")
		}
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

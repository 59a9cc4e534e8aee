package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"dsa-validator/api/internal/config"
	"dsa-validator/api/internal/handle"
	"dsa-validator/api/internal/httpserver"
	"dsa-validator/api/internal/llm/provider"
	"dsa-validator/api/internal/logger"
	"dsa-validator/api/internal/middleware"
	"dsa-validator/api/internal/task"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.Environment, cfg.LogLevel, os.Stdout)

	if !cfg.ProviderConfigured() {
		log.Warn().
			Str("provider", cfg.Provider).
			Str("env", cfg.APIKeyEnv()).
			Msg("API key is not set; model calls will fail with configuration_error")
	}

	gw, err := provider.Select(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build gateway")
	}
	svc := task.NewDispatcher(gw, log)

	mux := http.NewServeMux()
	handle.New(svc, gw, handle.Options{
		Timeout:      cfg.RequestTimeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}, log).Register(mux)

	h := middleware.Chain(mux,
		middleware.RequestID,
		middleware.AccessLog(log),
		middleware.Recover(log),
	)

	log.Info().
		Str("provider", gw.Name()).
		Str("model", gw.Model()).
		Dur("request_timeout", cfg.RequestTimeout).
		Int("gateway_retries", cfg.GatewayRetries).
		Msg("dsa-validator starting")

	if err := httpserver.Run(ctx, httpserver.New(cfg.Addr(), h, handle.MaxTimeout), log); err != nil {
		log.Fatal().Err(err).Msg("http server")
	}
	log.Info().Msg("dsa-validator stopped")
}

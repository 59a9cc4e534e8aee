// Package provider builds the model gateway selected by configuration.
package provider

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dsa-validator/api/internal/config"
	"dsa-validator/api/internal/llm"
	"dsa-validator/api/internal/llm/gemini"
	"dsa-validator/api/internal/llm/ollama"
	"dsa-validator/api/internal/llm/openai"
)

// clientTimeout bounds a single HTTP exchange with a provider. The request
// context normally expires first.
const clientTimeout = 10 * time.Minute

// Gateways builds every provider client. None of them dials at construction.
func Gateways(cfg *config.Config) (*llm.Gateways, error) {
	ol, err := ollama.New(cfg.OllamaHost, cfg.OllamaModel, clientTimeout)
	if err != nil {
		return nil, err
	}
	return &llm.Gateways{
		Gemini: gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
		OpenAI: openai.New(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			BaseURL:     cfg.OpenAIBaseURL,
			HTTPRetries: cfg.GatewayRetries,
			Timeout:     clientTimeout,
		}),
		Ollama: ol,
	}, nil
}

// Select returns the active provider wrapped with instrumentation and, when
// GATEWAY_RETRIES > 0, retries. OpenAI retries at its HTTP transport instead.
func Select(cfg *config.Config, logger zerolog.Logger) (llm.Gateway, error) {
	gws, err := Gateways(cfg)
	if err != nil {
		return nil, err
	}
	gw, err := gws.GetGateway(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("select provider: %w", err)
	}

	gw = llm.Instrument(gw, logger)
	if cfg.Provider != config.ProviderOpenAI {
		gw = llm.WithRetry(gw, cfg.GatewayRetries, cfg.GatewayRetryBackoff, logger)
	}
	return gw, nil
}

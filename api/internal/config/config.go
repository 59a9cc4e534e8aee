package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type Config struct {
	Port        string `env:"PORT, default=8000"`
	Environment string `env:"ENVIRONMENT, default=prod"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`

	Provider string `env:"LLM_PROVIDER, default=gemini"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL, default=gemini-2.0-flash"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL, default=gpt-4o-mini"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OllamaHost    string `env:"OLLAMA_HOST, default=http://localhost:11434"`
	OllamaModel   string `env:"OLLAMA_MODEL, default=gemma3"`

	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT, default=60s"`
	GatewayRetries      int           `env:"GATEWAY_RETRIES, default=0"`
	GatewayRetryBackoff time.Duration `env:"GATEWAY_RETRY_BACKOFF, default=500ms"`
	MaxBodyBytes        int64         `env:"MAX_BODY_BYTES, default=1048576"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	WebhookURL       string `env:"WEBHOOK_URL"`
}

// Load reads an optional .env file and then the process environment.
// A missing API key is not an error; see ProviderConfigured.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	provider, err := NormalizeProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	cfg.Provider = provider
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.GatewayRetries < 0 {
		return nil, fmt.Errorf("GATEWAY_RETRIES must not be negative, got %d", cfg.GatewayRetries)
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", cfg.MaxBodyBytes)
	}
	return &cfg, nil
}

// NormalizeProvider maps provider aliases onto the Provider* constants.
func NormalizeProvider(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case "gpt", ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderOllama:
		return ProviderOllama, nil
	}
	return "", fmt.Errorf("unknown LLM_PROVIDER %q; use gemini | openai | ollama", name)
}

// ProviderConfigured reports whether the active provider has what it needs
// to be called. Ollama runs locally and needs no key.
func (c *Config) ProviderConfigured() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	case ProviderOllama:
		return true
	default:
		return c.GeminiAPIKey != ""
	}
}

// APIKeyEnv names the variable holding the active provider's key.
func (c *Config) APIKeyEnv() string {
	switch c.Provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderOllama:
		return ""
	default:
		return "GEMINI_API_KEY"
	}
}

func (c *Config) Model() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIModel
	case ProviderOllama:
		return c.OllamaModel
	default:
		return c.GeminiModel
	}
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

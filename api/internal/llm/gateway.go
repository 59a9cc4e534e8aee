package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned by a Gateway that has no credentials. It is
// returned before any network call is attempted.
var ErrNotConfigured = errors.New("llm gateway is not configured")

const MIMEJSON = "application/json"

// Options are the generation knobs forwarded to the provider.
type Options struct {
	Temperature      float32
	MaxOutputTokens  int32
	ResponseMIMEType string
}

// Gateway is a text completion backend. The returned text carries no
// format guarantee, even when ResponseMIMEType asks for JSON.
type Gateway interface {
	Name() string
	Model() string
	Configured() bool
	Generate(ctx context.Context, prompt string, opt Options) (string, error)
}

type Gateways struct {
	Gemini Gateway
	OpenAI Gateway
	Ollama Gateway
}

func (g *Gateways) GetGateway(name string) (Gateway, error) {
	var gw Gateway
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gemini":
		gw = g.Gemini
	case "gpt", "openai":
		gw = g.OpenAI
	case "ollama":
		gw = g.Ollama
	default:
		return nil, fmt.Errorf("unknown llm provider %q; use gemini | openai | ollama", name)
	}
	if gw == nil {
		return nil, fmt.Errorf("llm provider %q is not wired", name)
	}
	return gw, nil
}

type taskKey struct{}

// WithTask labels ctx with the name of the task issuing the call. The label
// ends up in metrics and spans.
func WithTask(ctx context.Context, task string) context.Context {
	return context.WithValue(ctx, taskKey{}, task)
}

func TaskFrom(ctx context.Context) string {
	if v, ok := ctx.Value(taskKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

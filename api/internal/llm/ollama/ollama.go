package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	api "github.com/ollama/ollama/api"

	"dsa-validator/api/internal/llm"
)

const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "gemma3"
)

// Gateway talks to a local Ollama server. It needs no credentials, so it is
// always configured.
type Gateway struct {
	client *api.Client
	host   string
	model  string
}

func New(host, model string, timeout time.Duration) (*Gateway, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("ollama: invalid host %q: %w", host, err)
	}
	httpClient := &http.Client{Timeout: timeout}

	return &Gateway{
		client: api.NewClient(base, httpClient),
		host:   host,
		model:  model,
	}, nil
}

func (g *Gateway) Name() string     { return "ollama" }
func (g *Gateway) Model() string    { return g.model }
func (g *Gateway) Configured() bool { return true }

func (g *Gateway) Generate(ctx context.Context, prompt string, opt llm.Options) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:  g.model,
		Stream: &stream,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Options: map[string]any{
			"temperature": opt.Temperature,
		},
	}
	if opt.MaxOutputTokens > 0 {
		req.Options["num_predict"] = opt.MaxOutputTokens
	}
	if opt.ResponseMIMEType == llm.MIMEJSON {
		req.Format = json.RawMessage(`"json"`)
	}

	var b strings.Builder
	err := g.client.Chat(ctx, req, func(cr api.ChatResponse) error {
		b.WriteString(cr.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat %s: %w", g.host, err)
	}
	return b.String(), nil
}

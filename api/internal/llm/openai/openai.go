package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	openai "github.com/sashabaranov/go-openai"

	"dsa-validator/api/internal/llm"
)

const DefaultModel = "gpt-4o-mini"

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API root, e.g. for a compatible proxy.
	BaseURL string
	// HTTPRetries is the number of transport level retries on 429/5xx.
	HTTPRetries int
	Timeout     time.Duration
}

type Gateway struct {
	apiKey string
	model  string
	client *openai.Client
}

func New(cfg Config) *Gateway {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.HTTPRetries
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 10 * time.Second
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = nil
	// keep the API's own error body so go-openai can decode it
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	oc := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = rc.StandardClient()

	return &Gateway{
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  model,
		client: openai.NewClientWithConfig(oc),
	}
}

func (g *Gateway) Name() string     { return "openai" }
func (g *Gateway) Model() string    { return g.model }
func (g *Gateway) Configured() bool { return g.apiKey != "" }

func (g *Gateway) Generate(ctx context.Context, prompt string, opt llm.Options) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("openai: OPENAI_API_KEY is empty: %w", llm.ErrNotConfigured)
	}

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: opt.Temperature,
		MaxTokens:   int(opt.MaxOutputTokens),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if opt.ResponseMIMEType == llm.MIMEJSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", classify(err))
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.HTTPStatusCode
		if code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout {
			return llm.Permanent(err)
		}
	}
	return err
}

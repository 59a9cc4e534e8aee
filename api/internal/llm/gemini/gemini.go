package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"dsa-validator/api/internal/llm"
)

const DefaultModel = "gemini-2.0-flash"

type Gateway struct {
	APIKey string
	model  string
}

func New(apiKey, model string) *Gateway {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Gateway{
		APIKey: strings.TrimSpace(apiKey),
		model:  model,
	}
}

func (g *Gateway) Name() string     { return "gemini" }
func (g *Gateway) Model() string    { return g.model }
func (g *Gateway) Configured() bool { return g.APIKey != "" }

// Generate opens a client for the call and closes it afterwards, so the
// gateway holds no connection state between requests.
func (g *Gateway) Generate(ctx context.Context, prompt string, opt llm.Options) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("gemini: GEMINI_API_KEY is empty: %w", llm.ErrNotConfigured)
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini: new client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(opt.Temperature),
		ResponseMIMEType: opt.ResponseMIMEType,
	}
	if opt.MaxOutputTokens > 0 {
		m.GenerationConfig.MaxOutputTokens = ptrInt32(opt.MaxOutputTokens)
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", classify(err))
	}
	if resp != nil && len(resp.Candidates) == 0 && resp.PromptFeedback != nil &&
		resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", llm.Permanent(fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason))
	}
	return firstText(resp), nil
}

// classify marks client-side API failures (bad key, bad request) as
// permanent so they are not retried.
func classify(err error) error {
	var ge *googleapi.Error
	if errors.As(err, &ge) && ge.Code >= 400 && ge.Code < 500 && ge.Code != 429 {
		return llm.Permanent(err)
	}
	return err
}

// firstText joins the text parts of the first candidate that has content.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }

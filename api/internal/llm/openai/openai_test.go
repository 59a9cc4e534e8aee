package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsa-validator/api/internal/llm"
)

func TestGenerateWithoutKeyFailsFast(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	g := New(Config{BaseURL: srv.URL + "/v1"})
	require.False(t, g.Configured())

	_, err := g.Generate(context.Background(), "prompt", llm.Options{})
	require.ErrorIs(t, err, llm.ErrNotConfigured)
	require.Zero(t, hits)
}

func TestGenerateReturnsFirstChoice(t *testing.T) {
	var got struct {
		Model          string  `json:"model"`
		Temperature    float32 `json:"temperature"`
		MaxTokens      int     `json:"max_tokens"`
		ResponseFormat struct {
			Type string `json:"type"`
		} `json:"response_format"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"is_valid\": true, \"reason\": \"ok\"}"}}]
		}`))
	}))
	defer srv.Close()

	g := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	out, err := g.Generate(context.Background(), "validate this", llm.Options{
		Temperature:      0.1,
		MaxOutputTokens:  1024,
		ResponseMIMEType: llm.MIMEJSON,
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"is_valid": true, "reason": "ok"}`, out)

	require.Equal(t, DefaultModel, got.Model)
	require.InDelta(t, 0.1, got.Temperature, 1e-6)
	require.Equal(t, 1024, got.MaxTokens)
	require.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 1)
	require.Equal(t, "user", got.Messages[0].Role)
	require.Equal(t, "validate this", got.Messages[0].Content)
}

func TestGenerateMarksAuthFailuresPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`))
	}))
	defer srv.Close()

	g := New(Config{APIKey: "sk-bad", BaseURL: srv.URL + "/v1"})
	_, err := g.Generate(context.Background(), "prompt", llm.Options{})
	require.Error(t, err)
	require.True(t, llm.IsPermanent(err))
	require.Contains(t, err.Error(), "Incorrect API key")
}

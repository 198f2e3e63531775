package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func slowHandler(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-time.After(2 * time.Second):
	}
}

func TestCompletionGenerator_Success(t *testing.T) {
	var got map[string]interface{}
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"text":"  Paris  "}]}`))
	})

	gen, err := NewGenerator(GeneratorConfig{Provider: ProviderCompletion, BaseURL: srv.URL + "/v1", APIKey: "sk-test", Model: "m1", MaxTokens: 64})
	require.NoError(t, err)

	answer, err := gen.Generate(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "Paris", answer)
	assert.Equal(t, map[string]interface{}{"model": "m1", "prompt": "the prompt", "max_tokens": float64(64)}, got)
}

func TestGenerators_ServerError(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		body     string
		wantBody string
	}{
		{name: "completion", provider: ProviderCompletion, body: "upstream exploded", wantBody: "upstream exploded"},
		{name: "ollama", provider: ProviderOllama, body: `{"error":"model not loaded"}`, wantBody: `{"error":"model not loaded"}`},
		{name: "chat", provider: ProviderChat, body: `{"error":{"message":"upstream exploded","type":"server_error"}}`, wantBody: "upstream exploded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(tt.body))
			})
			gen, err := NewGenerator(GeneratorConfig{Provider: tt.provider, BaseURL: srv.URL, APIKey: "k"})
			require.NoError(t, err)

			answer, err := gen.Generate(context.Background(), "p")
			require.Error(t, err)
			assert.Empty(t, answer)

			var genErr *GenerationError
			require.True(t, errors.As(err, &genErr))
			assert.Equal(t, http.StatusInternalServerError, genErr.Status)
			assert.Equal(t, tt.wantBody, genErr.Body)
			assert.Equal(t, tt.provider, genErr.Backend)
			assert.False(t, errors.Is(err, ErrTimeout))
		})
	}
}

func TestGenerators_MalformedPayload(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		body     string
	}{
		{name: "completion not json", provider: ProviderCompletion, body: "<html>"},
		{name: "completion no choices", provider: ProviderCompletion, body: `{"choices":[]}`},
		{name: "ollama missing field", provider: ProviderOllama, body: `{"done":true}`},
		{name: "ollama empty answer", provider: ProviderOllama, body: `{"response":"   ","done":true}`},
		{name: "chat no choices", provider: ProviderChat, body: `{"choices":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})
			gen, err := NewGenerator(GeneratorConfig{Provider: tt.provider, BaseURL: srv.URL, APIKey: "k"})
			require.NoError(t, err)

			_, err = gen.Generate(context.Background(), "p")
			var genErr *GenerationError
			require.True(t, errors.As(err, &genErr), "got %v", err)
		})
	}
}

func TestGenerators_Timeout(t *testing.T) {
	for _, provider := range []string{ProviderCompletion, ProviderOllama, ProviderChat} {
		t.Run(provider, func(t *testing.T) {
			srv := newBackend(t, slowHandler)
			gen, err := NewGenerator(GeneratorConfig{Provider: provider, BaseURL: srv.URL, APIKey: "k"})
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err = gen.Generate(ctx, "p")

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
			var genErr *GenerationError
			require.True(t, errors.As(err, &genErr))
			assert.True(t, genErr.Timeout)
		})
	}
}

func TestOllamaGenerator_Success(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "llama3.1:8b", req.Model)
		_, _ = w.Write([]byte(`{"response":"I don't know","done":true}`))
	})

	gen, err := NewGenerator(GeneratorConfig{Provider: ProviderOllama, BaseURL: srv.URL})
	require.NoError(t, err)
	answer, err := gen.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "I don't know", answer)
}

func TestChatGenerator_Success(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Blue."}}]}`))
	})

	gen, err := NewGenerator(GeneratorConfig{Provider: ProviderChat, BaseURL: srv.URL, APIKey: "k", Model: "gpt"})
	require.NoError(t, err)
	answer, err := gen.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "Blue.", answer)
}

func TestNewGenerator_Validation(t *testing.T) {
	_, err := NewGenerator(GeneratorConfig{Provider: "anthropic"})
	assert.Error(t, err)
	_, err = NewGenerator(GeneratorConfig{Provider: ProviderChat, BaseURL: "http://x"})
	assert.Error(t, err)
	_, err = NewGenerator(GeneratorConfig{Provider: ProviderCompletion, APIKey: "k"})
	assert.Error(t, err)

	gen, err := NewGenerator(GeneratorConfig{})
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, gen.Name())
}

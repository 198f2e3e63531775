package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

var (
	_ Generator = (*OllamaGenerator)(nil)
	_ Embedder  = (*OllamaEmbedder)(nil)
)

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// OllamaGenerator calls a local Ollama /api/generate endpoint.
// The answer is read from the "response" field.
type OllamaGenerator struct {
	httpClient *http.Client
	cfg        GeneratorConfig
}

func NewOllamaGenerator(cfg GeneratorConfig, httpClient *http.Client) *OllamaGenerator {
	return &OllamaGenerator{httpClient: httpClient, cfg: cfg}
}

func (g *OllamaGenerator) Name() string { return ProviderOllama }

func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := ollamaGenerateRequest{
		Model:  g.cfg.Model,
		Prompt: prompt,
		Stream: false,
	}
	if g.cfg.MaxTokens > 0 {
		req.Options = &ollamaOptions{NumPredict: g.cfg.MaxTokens}
	}

	status, raw, err := postJSON(ctx, g.httpClient, endpoint(g.cfg.BaseURL, "/api/generate"), g.cfg.APIKey, req)
	if err != nil {
		return "", generationFailure(g.Name(), err)
	}
	if !isSuccess(status) {
		return "", &GenerationError{Backend: g.Name(), Status: status, Body: string(raw)}
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &GenerationError{Backend: g.Name(), Status: status, Body: string(raw), Err: fmt.Errorf("parse ollama json failed: %w", err)}
	}
	if parsed.Response == nil {
		return "", &GenerationError{Backend: g.Name(), Status: status, Body: string(raw), Err: fmt.Errorf("missing response field")}
	}
	return checkAnswer(g.Name(), *parsed.Response, raw)
}

// OllamaEmbedder calls /api/embeddings once per text.
type OllamaEmbedder struct {
	httpClient *http.Client
	cfg        EmbeddingConfig
}

func NewOllamaEmbedder(cfg EmbeddingConfig, httpClient *http.Client) *OllamaEmbedder {
	return &OllamaEmbedder{httpClient: httpClient, cfg: cfg}
}

func (e *OllamaEmbedder) Model() string { return e.cfg.Model }

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		status, raw, err := postJSON(ctx, e.httpClient, endpoint(e.cfg.BaseURL, "/api/embeddings"), e.cfg.APIKey, ollamaEmbeddingRequest{
			Model:  e.cfg.Model,
			Prompt: text,
		})
		if err != nil {
			return nil, representationFailure(ProviderOllama, err)
		}
		if !isSuccess(status) {
			return nil, &RepresentationError{Backend: ProviderOllama, Status: status, Body: string(raw)}
		}

		var parsed ollamaEmbeddingResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, &RepresentationError{Backend: ProviderOllama, Status: status, Body: string(raw), Err: fmt.Errorf("parse embedding json failed: %w", err)}
		}
		if len(parsed.Embedding) == 0 {
			return nil, &RepresentationError{Backend: ProviderOllama, Status: status, Body: string(raw), Err: fmt.Errorf("empty embedding in response")}
		}
		vec := make([]float32, len(parsed.Embedding))
		for i, v := range parsed.Embedding {
			vec[i] = float32(v)
		}
		out = append(out, vec)
	}
	return out, nil
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

var _ Embedder = (*OpenAICompatibleEmbedder)(nil)

const defaultEmbedTimeout = 60 * time.Second

// Embedder maps texts to vectors. The result has one vector per input text,
// in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// EmbeddingConfig holds API settings for an embedding backend.
type EmbeddingConfig struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// NewEmbedder builds the backend named by cfg.Provider.
func NewEmbedder(cfg EmbeddingConfig) (Embedder, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultEmbedTimeout
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch strings.TrimSpace(cfg.Provider) {
	case ProviderOllama:
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultOllamaURL
		}
		if cfg.Model == "" {
			cfg.Model = DefaultModel
		}
		return NewOllamaEmbedder(cfg, httpClient), nil
	case ProviderOpenAI:
		if cfg.BaseURL == "" || cfg.Model == "" {
			return nil, fmt.Errorf("openai embedder requires base_url and model")
		}
		return NewOpenAICompatibleEmbedder(cfg, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// OpenAICompatibleEmbedder calls POST {base}/embeddings with array input.
type OpenAICompatibleEmbedder struct {
	httpClient *http.Client
	cfg        EmbeddingConfig
}

func NewOpenAICompatibleEmbedder(cfg EmbeddingConfig, httpClient *http.Client) *OpenAICompatibleEmbedder {
	return &OpenAICompatibleEmbedder{httpClient: httpClient, cfg: cfg}
}

func (e *OpenAICompatibleEmbedder) Model() string { return e.cfg.Model }

func (e *OpenAICompatibleEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	status, raw, err := postJSON(ctx, e.httpClient, endpoint(e.cfg.BaseURL, "/embeddings"), e.cfg.APIKey, embeddingRequest{
		Model: e.cfg.Model,
		Input: texts,
	})
	if err != nil {
		return nil, representationFailure(ProviderOpenAI, err)
	}
	if !isSuccess(status) {
		return nil, &RepresentationError{Backend: ProviderOpenAI, Status: status, Body: string(raw)}
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &RepresentationError{Backend: ProviderOpenAI, Status: status, Body: string(raw), Err: fmt.Errorf("parse embedding json failed: %w", err)}
	}
	if len(parsed.Data) != len(texts) {
		return nil, &RepresentationError{
			Backend: ProviderOpenAI,
			Status:  status,
			Body:    string(raw),
			Err:     fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(parsed.Data)),
		}
	}

	sort.SliceStable(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })
	result := make([][]float32, len(parsed.Data))
	for i := range parsed.Data {
		if len(parsed.Data[i].Embedding) == 0 {
			return nil, &RepresentationError{Backend: ProviderOpenAI, Status: status, Body: string(raw), Err: fmt.Errorf("empty embedding at index %d", i)}
		}
		result[i] = parsed.Data[i].Embedding
	}
	return result, nil
}

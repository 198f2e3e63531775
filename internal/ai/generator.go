package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderOllama     = "ollama"
	ProviderChat       = "chat"
	ProviderCompletion = "completion"
	ProviderOpenAI     = "openai"

	DefaultOllamaURL  = "http://localhost:11434"
	DefaultModel      = "llama3.1:8b"
	defaultMaxTokens  = 512
	defaultGenTimeout = 90 * time.Second
)

// Generator turns a rendered prompt into answer text. Implementations never
// retry and never substitute a placeholder for a failed call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

type GeneratorConfig struct {
	Provider  string
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// NewGenerator builds the backend named by cfg.Provider.
func NewGenerator(cfg GeneratorConfig) (Generator, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGenTimeout
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch strings.TrimSpace(cfg.Provider) {
	case ProviderOllama, "":
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultOllamaURL
		}
		return NewOllamaGenerator(cfg, httpClient), nil
	case ProviderChat:
		if cfg.BaseURL == "" || cfg.APIKey == "" {
			return nil, fmt.Errorf("chat generator requires base_url and api_key")
		}
		return NewChatGenerator(cfg, httpClient), nil
	case ProviderCompletion:
		if cfg.BaseURL == "" || cfg.APIKey == "" {
			return nil, fmt.Errorf("completion generator requires base_url and api_key")
		}
		return NewCompletionGenerator(cfg, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}

func checkAnswer(backend, text string, raw []byte) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{
			Backend: backend,
			Status:  http.StatusOK,
			Body:    string(raw),
			Err:     fmt.Errorf("empty answer in response"),
		}
	}
	return strings.TrimSpace(text), nil
}

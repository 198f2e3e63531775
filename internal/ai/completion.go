package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

var _ Generator = (*CompletionGenerator)(nil)

type completionRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Text *string `json:"text"`
	} `json:"choices"`
}

// CompletionGenerator calls an OpenAI-compatible raw completion endpoint.
// The answer is read from choices[0].text.
type CompletionGenerator struct {
	httpClient *http.Client
	cfg        GeneratorConfig
}

func NewCompletionGenerator(cfg GeneratorConfig, httpClient *http.Client) *CompletionGenerator {
	return &CompletionGenerator{httpClient: httpClient, cfg: cfg}
}

func (g *CompletionGenerator) Name() string { return ProviderCompletion }

func (g *CompletionGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	status, raw, err := postJSON(ctx, g.httpClient, endpoint(g.cfg.BaseURL, "/completions"), g.cfg.APIKey, completionRequest{
		Model:     g.cfg.Model,
		Prompt:    prompt,
		MaxTokens: g.cfg.MaxTokens,
	})
	if err != nil {
		return "", generationFailure(g.Name(), err)
	}
	if !isSuccess(status) {
		return "", &GenerationError{Backend: g.Name(), Status: status, Body: string(raw)}
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &GenerationError{Backend: g.Name(), Status: status, Body: string(raw), Err: fmt.Errorf("parse completion json failed: %w", err)}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Text == nil {
		return "", &GenerationError{Backend: g.Name(), Status: status, Body: string(raw), Err: fmt.Errorf("missing choices[0].text")}
	}
	return checkAnswer(g.Name(), *parsed.Choices[0].Text, raw)
}

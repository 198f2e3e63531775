package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

var _ Generator = (*ChatGenerator)(nil)

// ChatGenerator calls an OpenAI-compatible chat completion API with the prompt
// as a single user message. The answer is read from choices[0].message.content.
type ChatGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewChatGenerator(cfg GeneratorConfig, httpClient *http.Client) *ChatGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = httpClient
	return &ChatGenerator{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (g *ChatGenerator) Name() string { return ProviderChat }

func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", chatFailure(err)
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Backend: g.Name(), Status: http.StatusOK, Err: fmt.Errorf("empty llm choices")}
	}
	return checkAnswer(g.Name(), resp.Choices[0].Message.Content, nil)
}

func chatFailure(err error) *GenerationError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &GenerationError{Backend: ProviderChat, Status: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &GenerationError{Backend: ProviderChat, Status: reqErr.HTTPStatusCode, Body: string(reqErr.Body)}
	}
	return generationFailure(ProviderChat, err)
}

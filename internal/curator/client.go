// Package curator wraps the external text-generation collaborator. The rest
// of the application only sees TextGenerator, a best-effort "structured
// prompt in, JSON text out" service, so tests and offline deployments can
// substitute fakes without touching business logic.
package curator

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// TextGenerator produces a JSON document from a system/user prompt pair.
// Implementations must return the raw model output; callers own parsing and
// treat malformed output as a recoverable upstream failure.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, system, user string) (string, error)
}

// ErrEmptyCompletion is returned when the model answers with no choices.
var ErrEmptyCompletion = errors.New("curator: empty completion")

// Config carries the settings for the OpenAI-compatible backend.
type Config struct {
	APIKey  string
	BaseURL string // OpenAI-compatible endpoint; empty uses the default
	Model   string // e.g. "gpt-4o-mini"
	Timeout time.Duration
}

// OpenAIGenerator calls an OpenAI-compatible chat-completions endpoint in
// JSON-object response mode. Safe for concurrent use.
type OpenAIGenerator struct {
	cfg    Config
	client *openai.Client
}

// NewOpenAI builds an OpenAIGenerator from cfg, applying a 30s default
// timeout and the gpt-4o-mini default model.
func NewOpenAI(cfg Config) *OpenAIGenerator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAIGenerator{cfg: cfg, client: openai.NewClientWithConfig(oc)}
}

// GenerateJSON implements TextGenerator.
func (g *OpenAIGenerator) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

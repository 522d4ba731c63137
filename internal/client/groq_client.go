package client

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/songlesson/api/internal/config"
	"github.com/songlesson/api/internal/logging"
)

// TextGenerator produces a single completion for a system and user instruction
type TextGenerator interface {
	ChatCompletion(ctx context.Context, system, user string) (string, error)
	IsConfigured() bool
}

// GroqClient handles communication with the Groq OpenAI-compatible API
type GroqClient struct {
	api       *openai.Client
	apiKey    string
	model     string
	maxTokens int
	log       logging.Logger
}

// NewGroqClient creates a new Groq API client
func NewGroqClient(cfg *config.GroqConfig) *GroqClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1500
	}

	return &GroqClient{
		api:       openai.NewClientWithConfig(clientCfg),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: maxTokens,
		log:       logging.New("groq"),
	}
}

// ChatCompletion sends a chat completion request to Groq and returns the
// first choice's text. A response without choices yields an empty string.
func (c *GroqClient) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.7,
		MaxTokens:   c.maxTokens,
	}

	c.log.Debugf("[Groq API] → chat completion model=%s max_tokens=%d", c.model, c.maxTokens)

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		c.log.Warnf("[Groq API] ✗ chat completion failed: %v", err)
		return "", fmt.Errorf("groq chat completion: %w", err)
	}

	c.log.Debugf("[Groq API] ← %d choices, %d completion tokens", len(resp.Choices), resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *GroqClient) IsConfigured() bool {
	return c.apiKey != ""
}

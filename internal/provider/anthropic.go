package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"inkwell/internal/logger"
	"inkwell/pkg/inktypes"
)

// defaultAnthropicModel is used when the settings leave the model blank.
const defaultAnthropicModel = "claude-3-sonnet-20240229"

// AnthropicClient talks to the Anthropic Messages API. The underlying
// SDK client is created lazily on the first request.
type AnthropicClient struct {
	apiKey string
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client with lazy initialization.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{apiKey: apiKey}
}

// Name returns the provider name for this client.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// IsConfigured returns true if the client has an API key.
func (c *AnthropicClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *AnthropicClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil
	}
	if c.apiKey == "" {
		return fmt.Errorf("anthropic: %w", ErrNotConfigured)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(c.apiKey),
		option.WithMaxRetries(0),
	)
	c.client = &client

	logger.Debug("Anthropic client initialized", "provider", "anthropic")
	return nil
}

// Send issues one Messages request and returns the concatenated text
// blocks of the reply.
func (c *AnthropicClient) Send(ctx context.Context, req Request) (string, error) {
	if err := c.initializeClientIfNeeded(); err != nil {
		return "", err
	}

	model := req.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1024,
		Messages:  c.buildMessages(req),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}
	params.Temperature = anthropic.Float(req.Temperature)
	if sys := req.systemText(); sys != "" {
		params.System = []anthropic.TextBlockParam{{Text: sys}}
	}

	logger.Debug("Sending Anthropic request", "model", model, "message_count", len(params.Messages))
	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("Anthropic request failed", "error", err)
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var content string
	for _, block := range message.Content {
		content += block.Text
	}
	if content == "" {
		return NoResponsePlaceholder, nil
	}
	return content, nil
}

// buildMessages converts the request into Anthropic message params.
// The Messages API rejects a system role inside the list, so system
// turns are carried as user turns instead; the configured system prompt
// travels in the top-level System field.
func (c *AnthropicClient) buildMessages(req Request) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(req.History)+2)

	if req.Context != "" {
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.contextText())))
	}

	for _, msg := range req.window() {
		switch msg.Role {
		case inktypes.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		case inktypes.RoleUser, inktypes.RoleSystem:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			continue
		}
	}

	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserMessage)))
	return messages
}

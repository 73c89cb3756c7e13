package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"inkwell/internal/logger"
	"inkwell/pkg/inktypes"
)

// OpenAIClient talks to the OpenAI Chat Completions API. The underlying
// SDK client is created lazily on the first request.
type OpenAIClient struct {
	apiKey string
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client with lazy initialization.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey}
}

// Name returns the provider name for this client.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// IsConfigured returns true if the client has an API key.
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *OpenAIClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil
	}
	if c.apiKey == "" {
		return fmt.Errorf("openai: %w", ErrNotConfigured)
	}

	client := openai.NewClient(
		option.WithAPIKey(c.apiKey),
		option.WithMaxRetries(0),
	)
	c.client = &client

	logger.Debug("OpenAI client initialized", "provider", "openai")
	return nil
}

// Send issues one chat completion request and returns the first
// choice's content.
func (c *OpenAIClient) Send(ctx context.Context, req Request) (string, error) {
	if err := c.initializeClientIfNeeded(); err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    c.buildMessages(req),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	logger.Debug("Sending OpenAI request", "model", req.Model, "message_count", len(params.Messages))
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("OpenAI request failed", "error", err)
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return NoResponsePlaceholder, nil
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) buildMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+3)

	if sys := req.systemText(); sys != "" {
		messages = append(messages, openai.SystemMessage(sys))
	}
	if req.Context != "" {
		messages = append(messages, openai.SystemMessage(req.contextText()))
	}

	for _, msg := range req.window() {
		switch msg.Role {
		case inktypes.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		case inktypes.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case inktypes.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		default:
			continue
		}
	}

	messages = append(messages, openai.UserMessage(req.UserMessage))
	return messages
}

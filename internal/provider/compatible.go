package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"inkwell/internal/logger"
	"inkwell/pkg/inktypes"
)

// CompatibleClient talks to any endpoint that implements the OpenAI
// Chat Completions wire format. It is used for the custom provider,
// where the user supplies the full endpoint URL.
type CompatibleClient struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// chatCompletionRequest is the request payload for OpenAI-compatible
// chat completions.
type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	Temperature *float64                `json:"temperature,omitempty"`
	MaxTokens   *int                    `json:"max_tokens,omitempty"`
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message *chatCompletionMessage `json:"message,omitempty"`
	} `json:"choices"`
}

// NewCompatibleClient creates a client for the given endpoint URL. The
// API key is optional; when present it is sent as a bearer token.
func NewCompatibleClient(apiKey, url string) *CompatibleClient {
	return &CompatibleClient{
		apiKey: apiKey,
		url:    url,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Name returns the provider name for this client.
func (c *CompatibleClient) Name() string {
	return "custom"
}

// IsConfigured returns true if the client has an endpoint URL.
func (c *CompatibleClient) IsConfigured() bool {
	return c.url != ""
}

// Send posts one chat completion request to the configured URL and
// returns the first choice's content.
func (c *CompatibleClient) Send(ctx context.Context, req Request) (string, error) {
	if !c.IsConfigured() {
		return "", fmt.Errorf("custom provider not configured: missing endpoint URL")
	}

	payload := chatCompletionRequest{
		Model:    req.Model,
		Messages: c.buildMessages(req),
	}
	if req.MaxTokens > 0 {
		payload.MaxTokens = &req.MaxTokens
	}
	temp := req.Temperature
	payload.Temperature = &temp

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	logger.Debug("Sending custom provider request", "url", c.url, "model", req.Model)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("Custom provider request failed", "error", err)
		return "", fmt.Errorf("custom provider request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("Custom provider returned error", "status", resp.StatusCode)
		return "", &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message == nil || completion.Choices[0].Message.Content == "" {
		return NoResponsePlaceholder, nil
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *CompatibleClient) buildMessages(req Request) []chatCompletionMessage {
	messages := make([]chatCompletionMessage, 0, len(req.History)+3)

	if sys := req.systemText(); sys != "" {
		messages = append(messages, chatCompletionMessage{Role: "system", Content: sys})
	}
	if req.Context != "" {
		messages = append(messages, chatCompletionMessage{Role: "system", Content: req.contextText()})
	}
	for _, msg := range req.window() {
		switch msg.Role {
		case inktypes.RoleUser, inktypes.RoleAssistant, inktypes.RoleSystem:
			messages = append(messages, chatCompletionMessage{Role: string(msg.Role), Content: msg.Content})
		default:
			continue
		}
	}
	messages = append(messages, chatCompletionMessage{Role: string(inktypes.RoleUser), Content: req.UserMessage})
	return messages
}

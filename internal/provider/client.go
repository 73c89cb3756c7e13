// Package provider implements the provider router and the per-provider
// clients that turn a prompt plus ambient context into one outbound
// request and normalize the heterogeneous replies into plain text.
package provider

import (
	"context"
	"errors"
	"fmt"

	"inkwell/pkg/inktypes"
)

// NoResponsePlaceholder is returned when a provider reply parses but
// carries no content where the reply text was expected.
const NoResponsePlaceholder = "No response"

// historyWindow is the number of trailing prior turns included in an
// outbound message list.
const historyWindow = 10

// ErrNotConfigured indicates a provider that needs a credential was
// selected without one.
var ErrNotConfigured = errors.New("API key not configured")

// APIError reports a non-success HTTP reply from a provider endpoint.
type APIError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.Status, e.Body)
}

// Request is the provider-independent description of one outbound call.
// Each client maps it onto its own wire format.
type Request struct {
	SystemPrompt string
	Instructions string // matched skill instructions, may be empty
	Context      string // ambient vault context blob, may be empty
	History      []inktypes.Message
	UserMessage  string
	Model        string
	MaxTokens    int
	Temperature  float64
}

// Client is the shared contract of the provider variants: build the
// wire request, issue it exactly once, and return the normalized reply
// text or the failure.
type Client interface {
	Name() string
	Send(ctx context.Context, req Request) (string, error)
}

// systemText combines the configured system prompt with the matched
// skill instructions, when any.
func (r Request) systemText() string {
	switch {
	case r.SystemPrompt != "" && r.Instructions != "":
		return r.SystemPrompt + "\n\n" + r.Instructions
	case r.Instructions != "":
		return r.Instructions
	default:
		return r.SystemPrompt
	}
}

// contextText renders the injected context message content.
func (r Request) contextText() string {
	return "Current vault context: " + r.Context
}

// window returns the trailing historyWindow turns of prior history.
func (r Request) window() []inktypes.Message {
	if len(r.History) <= historyWindow {
		return r.History
	}
	return r.History[len(r.History)-historyWindow:]
}

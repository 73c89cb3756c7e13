package provider

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"inkwell/internal/logger"
	"inkwell/pkg/inktypes"
)

// SettingsFunc supplies the current settings snapshot. Settings are
// host-owned and may change between submissions, so the router reads
// them fresh on every call.
type SettingsFunc func() inktypes.Settings

// Router picks a provider client per submission based on the settings
// and forwards the request to it. Client construction is cheap because
// the SDK clients initialize lazily.
type Router struct {
	settings SettingsFunc
	workdir  string
	log      *log.Logger

	// newClient overrides client selection in tests.
	newClient func(inktypes.Settings) (Client, error)
}

// NewRouter creates a router. workdir is the vault root, used as the
// working directory of the local executable provider.
func NewRouter(settings SettingsFunc, workdir string) *Router {
	r := &Router{
		settings: settings,
		workdir:  workdir,
		log:      logger.NewStyledLogger("Router"),
	}
	r.newClient = r.clientFor
	return r
}

// Route sends one request through the provider the settings select.
// Credential checks happen here so a misconfigured provider fails
// before any network traffic.
func (r *Router) Route(ctx context.Context, userMessage, contextBlob, instructions string, history []inktypes.Message) (string, error) {
	s := r.settings()

	client, err := r.newClient(s)
	if err != nil {
		return "", err
	}
	r.log.Debug("Routing request", "provider", client.Name(), "model", s.Model, "history", len(history))

	return client.Send(ctx, Request{
		SystemPrompt: s.SystemPrompt,
		Instructions: instructions,
		Context:      contextBlob,
		History:      history,
		UserMessage:  userMessage,
		Model:        s.Model,
		MaxTokens:    s.MaxTokens,
		Temperature:  s.Temperature,
	})
}

func (r *Router) clientFor(s inktypes.Settings) (Client, error) {
	switch s.Provider {
	case inktypes.ProviderLocal:
		return NewLocalClient(s.LocalCommand, r.workdir), nil
	case inktypes.ProviderOpenAI:
		if s.APIKey == "" {
			return nil, fmt.Errorf("openai: %w", ErrNotConfigured)
		}
		return NewOpenAIClient(s.APIKey), nil
	case inktypes.ProviderAnthropic:
		if s.APIKey == "" {
			return nil, fmt.Errorf("anthropic: %w", ErrNotConfigured)
		}
		return NewAnthropicClient(s.APIKey), nil
	case inktypes.ProviderCustom:
		if s.CustomURL == "" {
			return nil, fmt.Errorf("custom provider requires an endpoint URL")
		}
		return NewCompatibleClient(s.APIKey, s.CustomURL), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", s.Provider)
	}
}

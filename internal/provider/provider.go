// Package provider implements contract source generation against
// interchangeable AI backends, with ordered fallback between them.
package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/config"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
)

// Default chat-completions endpoints for the named providers. Gemini is
// reached through its OpenAI-compatible surface so one wire client covers
// every backend.
const (
	openAIEndpoint = "https://api.openai.com/v1/chat/completions"
	geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
)

// Provider produces contract source text from a prompt. Implementations
// must respect the caller's context deadline and must never return
// placeholder source: an unusable response is always an error.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewFromConfig builds a Provider from one provider config entry.
//
// Named providers get a default endpoint; any other name requires an
// explicit openai-compatible endpoint in the config.
func NewFromConfig(cfg config.ProviderConfig) (Provider, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		switch strings.ToLower(cfg.Name) {
		case "openai":
			endpoint = openAIEndpoint
		case "gemini":
			endpoint = geminiEndpoint
		default:
			return nil, fmt.Errorf("%w: %s (custom providers need an endpoint)",
				errors.ErrUnknownProvider, cfg.Name)
		}
	}

	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	return NewChatProvider(cfg.Name, endpoint, cfg.Model, apiKey), nil
}

// FromConfigs builds the ordered provider list the router falls back
// through. Order is preserved exactly as configured.
func FromConfigs(cfgs []config.ProviderConfig) ([]Provider, error) {
	providers := make([]Provider, 0, len(cfgs))
	for _, cfg := range cfgs {
		p, err := NewFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

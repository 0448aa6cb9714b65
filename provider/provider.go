package provider

import (
	"context"
	"errors"

	"github.com/webpilot-ai/webpilot/config"
	openai_provider "github.com/webpilot-ai/webpilot/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI Client = "openai"
)

// Provider is the interface the orchestrator uses to talk to a
// chat-completion endpoint.
type Provider interface {
	// Complete sends a single user prompt and returns the first
	// choice's message content. An empty model falls back to the
	// provider's configured default.
	Complete(ctx context.Context, prompt, model string) (string, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(client Client, cfg config.LLMConfig) (Provider, error) {
	switch client {
	case OpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("llm.api_key not set")
		}
		return openai_provider.NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil
	default:
		return nil, errors.New("unsupported provider: " + string(client))
	}
}

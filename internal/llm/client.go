// Package llm provides text-generation clients for the triage agent.
// Providers are interchangeable behind the Client interface and selected
// through configuration.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/amite/personal-triage-agent/internal/config"
)

// Client is a blocking text-generation collaborator. Implementations may
// fail or exceed the caller's context deadline; callers treat both as "no
// usable output".
type Client interface {
	// Generate produces a completion for the prompt at the given temperature.
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
	// Model returns the provider-specific model identifier in use.
	Model() string
}

// New creates a Client for the provider named in the configuration.
// Supported providers: ollama, anthropic, openai.
func New(cfg *config.Config) (Client, error) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "", "ollama":
		return NewOllamaClient(cfg.LLM.OllamaBaseURL, cfg.LLM.Model), nil
	case "anthropic":
		key, err := config.GetAPIKey(cfg)
		if err != nil && !cfg.LLM.UseAWSBedrock {
			return nil, fmt.Errorf("anthropic provider: %w", err)
		}
		return NewAnthropicClient(AnthropicConfig{
			Model:         cfg.LLM.Model,
			APIKey:        key,
			UseAWSBedrock: cfg.LLM.UseAWSBedrock,
			AWSRegion:     cfg.LLM.AWSRegion,
			AWSProfile:    cfg.LLM.AWSProfile,
		})
	case "openai":
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil, fmt.Errorf("openai provider: %w", err)
		}
		return NewOpenAIClient(key, cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q (choose ollama, anthropic, or openai)", cfg.LLM.Provider)
	}
}

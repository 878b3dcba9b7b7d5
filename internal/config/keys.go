package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no API key is configured for a provider
// that requires one.
var ErrNoAPIKey = errors.New("no API key configured")

// GetAPIKey returns the API key for the configured provider.
// It checks the provider-specific environment variable first, then the
// config file. Ollama needs no key and always returns an empty string.
func GetAPIKey(cfg *Config) (string, error) {
	if cfg == nil {
		return "", ErrNoAPIKey
	}

	var envVar string
	switch strings.ToLower(cfg.LLM.Provider) {
	case "ollama":
		return "", nil
	case "anthropic":
		envVar = "ANTHROPIC_API_KEY"
	case "openai":
		envVar = "OPENAI_API_KEY"
	}

	if envVar != "" {
		if key := os.Getenv(envVar); key != "" {
			return key, nil
		}
	}

	if cfg.LLM.APIKey != "" {
		key := os.ExpandEnv(cfg.LLM.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, nil
		}
	}

	return "", ErrNoAPIKey
}

// MaskAPIKey returns a masked version of an API key for display.
// Shows the first 7 and last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 5 {
		return "****"
	}

	if len(key) <= 15 {
		return key[:3] + "..." + key[len(key)-2:]
	}

	return key[:7] + "..." + key[len(key)-4:]
}

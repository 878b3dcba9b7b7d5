package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amite/personal-triage-agent/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify triage configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/triage/config.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	apiKeyDisplay := "(not set)"
	if cfg.LLM.APIKey != "" {
		apiKeyDisplay = config.MaskAPIKey(cfg.LLM.APIKey)
	}

	fmt.Printf("llm.provider: %s\n", cfg.LLM.Provider)
	fmt.Printf("llm.model: %s\n", cfg.LLM.Model)
	fmt.Printf("llm.api_key: %s\n", apiKeyDisplay)
	fmt.Printf("llm.temperature: %g\n", cfg.LLM.Temperature)
	fmt.Printf("llm.timeout: %s\n", cfg.LLM.Timeout)
	fmt.Printf("llm.ollama_base_url: %s\n", cfg.LLM.OllamaBaseURL)
	fmt.Printf("llm.use_aws_bedrock: %t\n", cfg.LLM.UseAWSBedrock)
	fmt.Printf("paths.checkpoint_db: %s\n", cfg.Paths.CheckpointDB)
	fmt.Printf("paths.artifacts_db: %s\n", cfg.Paths.ArtifactsDB)
	fmt.Printf("triage.fallback_token_limit: %d\n", cfg.Triage.FallbackTokenLimit)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "llm.provider":
		return cfg.LLM.Provider, nil
	case "llm.model":
		return cfg.LLM.Model, nil
	case "llm.api_key":
		if cfg.LLM.APIKey == "" {
			return "(not set)", nil
		}
		return config.MaskAPIKey(cfg.LLM.APIKey), nil
	case "llm.temperature":
		return strconv.FormatFloat(cfg.LLM.Temperature, 'g', -1, 64), nil
	case "llm.timeout":
		return cfg.LLM.Timeout.String(), nil
	case "llm.ollama_base_url":
		return cfg.LLM.OllamaBaseURL, nil
	case "llm.use_aws_bedrock":
		return strconv.FormatBool(cfg.LLM.UseAWSBedrock), nil
	case "paths.checkpoint_db":
		return cfg.Paths.CheckpointDB, nil
	case "paths.artifacts_db":
		return cfg.Paths.ArtifactsDB, nil
	case "triage.fallback_token_limit":
		return strconv.Itoa(cfg.Triage.FallbackTokenLimit), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "llm.provider":
		cfg.LLM.Provider = value
	case "llm.model":
		cfg.LLM.Model = value
	case "llm.api_key":
		cfg.LLM.APIKey = value
	case "llm.temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for temperature: %w", err)
		}
		cfg.LLM.Temperature = f
	case "llm.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for timeout: %w", err)
		}
		cfg.LLM.Timeout = d
	case "llm.ollama_base_url":
		cfg.LLM.OllamaBaseURL = value
	case "llm.use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for use_aws_bedrock: %w", err)
		}
		cfg.LLM.UseAWSBedrock = b
	case "paths.checkpoint_db":
		cfg.Paths.CheckpointDB = value
	case "paths.artifacts_db":
		cfg.Paths.ArtifactsDB = value
	case "triage.fallback_token_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for fallback_token_limit: %w", err)
		}
		cfg.Triage.FallbackTokenLimit = n
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// Package config handles configuration loading for the triage agent.
// It supports XDG config paths, environment variables, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the triage agent.
type Config struct {
	LLM    LLMConfig    `mapstructure:"llm"`
	Paths  PathsConfig  `mapstructure:"paths"`
	Triage TriageConfig `mapstructure:"triage"`
}

// LLMConfig holds text-generation provider settings.
type LLMConfig struct {
	// Provider selects the backend: ollama, anthropic, or openai.
	Provider string `mapstructure:"provider"`
	// Model is the provider-specific model identifier.
	Model string `mapstructure:"model"`
	// APIKey is the provider API key (anthropic/openai). Supports ${VAR}.
	APIKey string `mapstructure:"api_key"`
	// Temperature used for triage decomposition calls.
	Temperature float64 `mapstructure:"temperature"`
	// Timeout is the hard cap on a single generation call.
	Timeout time.Duration `mapstructure:"timeout"`
	// OllamaBaseURL is the Ollama server address.
	OllamaBaseURL string `mapstructure:"ollama_base_url"`
	// UseAWSBedrock routes Anthropic calls through AWS Bedrock.
	UseAWSBedrock bool `mapstructure:"use_aws_bedrock"`
	// AWSRegion is the Bedrock region (e.g. "us-west-2").
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the optional AWS profile for Bedrock.
	AWSProfile string `mapstructure:"aws_profile"`
}

// PathsConfig holds database locations.
type PathsConfig struct {
	// CheckpointDB is the SQLite file for orchestrator checkpoints.
	CheckpointDB string `mapstructure:"checkpoint_db"`
	// ArtifactsDB is the SQLite file for reminders and drafts.
	ArtifactsDB string `mapstructure:"artifacts_db"`
}

// TriageConfig holds decomposition tuning knobs.
type TriageConfig struct {
	// FallbackTokenLimit is the number of leading words the rule-based
	// fallback keeps when synthesizing a generic task.
	FallbackTokenLimit int `mapstructure:"fallback_token_limit"`
}

// Load loads configuration from XDG paths and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (TRIAGE_LLM_PROVIDER, ANTHROPIC_API_KEY, OPENAI_API_KEY)
// 2. User config (~/.config/triage/config.yaml)
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	v.AutomaticEnv()
	v.BindEnv("llm.provider", "TRIAGE_LLM_PROVIDER", "LLM_PROVIDER")
	v.BindEnv("llm.model", "TRIAGE_LLM_MODEL")
	v.BindEnv("llm.ollama_base_url", "OLLAMA_BASE_URL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.LLM.APIKey = os.ExpandEnv(cfg.LLM.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.LLM.APIKey = os.ExpandEnv(cfg.LLM.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	v.Set("llm.provider", cfg.LLM.Provider)
	v.Set("llm.model", cfg.LLM.Model)
	v.Set("llm.api_key", cfg.LLM.APIKey)
	v.Set("llm.temperature", cfg.LLM.Temperature)
	v.Set("llm.timeout", cfg.LLM.Timeout.String())
	v.Set("llm.ollama_base_url", cfg.LLM.OllamaBaseURL)
	v.Set("paths.checkpoint_db", cfg.Paths.CheckpointDB)
	v.Set("paths.artifacts_db", cfg.Paths.ArtifactsDB)
	v.Set("triage.fallback_token_limit", cfg.Triage.FallbackTokenLimit)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.ollama_base_url", "http://localhost:11434")
	v.SetDefault("llm.use_aws_bedrock", false)

	v.SetDefault("paths.checkpoint_db", filepath.Join(dataDir(), "checkpoints.db"))
	v.SetDefault("paths.artifacts_db", filepath.Join(dataDir(), "artifacts.db"))

	v.SetDefault("triage.fallback_token_limit", 10)
}

// getUserConfigDir returns the XDG config directory for the triage agent.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "triage")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "triage")
	}
	return filepath.Join(home, ".config", "triage")
}

// dataDir returns the XDG data directory for the triage agent.
func dataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "triage")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "data")
	}
	return filepath.Join(home, ".local", "share", "triage")
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:      "ollama",
			Temperature:   0.3,
			Timeout:       60 * time.Second,
			OllamaBaseURL: "http://localhost:11434",
		},
		Paths: PathsConfig{
			CheckpointDB: filepath.Join(dataDir(), "checkpoints.db"),
			ArtifactsDB:  filepath.Join(dataDir(), "artifacts.db"),
		},
		Triage: TriageConfig{
			FallbackTokenLimit: 10,
		},
	}
}

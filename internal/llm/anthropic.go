package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// AnthropicConfig contains configuration for creating an AnthropicClient.
type AnthropicConfig struct {
	// Model is the Claude model to use. Defaults to Sonnet.
	Model string
	// APIKey is the Anthropic API key. Ignored when UseAWSBedrock is set.
	APIKey string
	// UseAWSBedrock indicates whether to use AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock (e.g. "us-west-2").
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
}

// AnthropicClient implements Client using the Anthropic SDK.
type AnthropicClient struct {
	inner anthropic.Client
	model anthropic.Model
}

// NewAnthropicClient creates a new Anthropic-backed client.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		ctx := context.Background()

		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
		}

		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key is not set")
		}
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaudeSonnet4_20250514
	}
	if cfg.UseAWSBedrock {
		model = translateModelForBedrock(model)
	}

	return &AnthropicClient{
		inner: anthropic.NewClient(opts...),
		model: model,
	}, nil
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return string(c.model)
}

// Generate sends a single-turn message and returns the concatenated text
// blocks of the response.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   4096,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var result strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.WriteString(variant.Text)
		}
	}

	return result.String(), nil
}

// translateModelForBedrock converts standard Anthropic model names to
// Bedrock cross-region inference profile format (us.anthropic.{model}-v1:0).
func translateModelForBedrock(model anthropic.Model) anthropic.Model {
	bedrockModels := map[anthropic.Model]string{
		anthropic.ModelClaudeSonnet4_20250514:  "us.anthropic.claude-sonnet-4-20250514-v1:0",
		anthropic.ModelClaude3_7Sonnet20250219: "us.anthropic.claude-3-7-sonnet-20250219-v1:0",
		anthropic.ModelClaude3_5Haiku20241022:  "us.anthropic.claude-3-5-haiku-20241022-v1:0",
	}

	if bedrockModel, ok := bedrockModels[model]; ok {
		return anthropic.Model(bedrockModel)
	}

	// Unknown names pass through; they may already be in Bedrock format.
	return model
}

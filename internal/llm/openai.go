package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-5-nano"

// OpenAIClient implements Client using the official OpenAI SDK.
type OpenAIClient struct {
	inner openai.Client
	model string
}

// NewOpenAIClient constructs a client that talks to the OpenAI API.
func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai client requires an API key")
	}

	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIClient{
		inner: openai.NewClient(option.WithAPIKey(apiKey)),
		model: model,
	}, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Generate sends a single-turn chat completion and returns the message text.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	resp, err := c.inner.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response contained no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIBaseURL is the OpenAI-compatible endpoint used when none is configured
const DefaultOpenAIBaseURL = "https://api.ai71.ai/v1/"

// OpenAIClient implements Provider for any OpenAI-compatible chat completion API
type OpenAIClient struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	client *openai.Client
}

// NewOpenAI creates a chat completion client against baseURL
func NewOpenAI(baseURL, apiKey, model string, timeout time.Duration) (*OpenAIClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("openai model is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	cfg := openai.DefaultConfig(apiKey)
	// go-openai appends "/chat/completions" itself
	cfg.BaseURL = strings.TrimRight(baseURL, "/")

	return &OpenAIClient{
		BaseURL: cfg.BaseURL,
		Model:   model,
		Timeout: timeout,
		client:  openai.NewClientWithConfig(cfg),
	}, nil
}

// Name returns provider name
func (o *OpenAIClient) Name() string { return "openai" }

// Generate sends prompt as a single user message and returns the first choice
func (o *OpenAIClient) Generate(prompt string) (string, error) {
	ctx := context.Background()
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	bedrockAnthropicVersion = "bedrock-2023-05-31"
	bedrockMaxTokens        = 1024
)

// BedrockClient implements Provider for Amazon Bedrock (Anthropic models)
type BedrockClient struct {
	Region  string
	Model   string
	Timeout time.Duration

	svc *bedrockruntime.Client
}

// NewBedrock initializes a Bedrock client using the default AWS config chain
func NewBedrock(region, model string, timeout time.Duration) (*BedrockClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("bedrock model is required")
	}
	if family := bedrockFamily(model); family != "anthropic" {
		return nil, fmt.Errorf("unsupported Bedrock model family for %q", model)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var opts []func(*awsconfig.LoadOptions) error
	if strings.TrimSpace(region) != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("AWS region not resolved. Set llm.region, AWS_REGION or a region in the AWS profile")
	}

	return &BedrockClient{
		Region:  cfg.Region,
		Model:   model,
		Timeout: timeout,
		svc:     bedrockruntime.NewFromConfig(cfg),
	}, nil
}

// Name returns provider name
func (b *BedrockClient) Name() string { return "bedrock" }

type bedrockMessage struct {
	Role    string           `json:"role"`
	Content []bedrockContent `json:"content"`
}

type bedrockContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Temperature      float64          `json:"temperature"`
	Messages         []bedrockMessage `json:"messages"`
}

type bedrockResponse struct {
	Content []bedrockContent `json:"content"`
}

// Generate invokes the model with a single user message
func (b *BedrockClient) Generate(prompt string) (string, error) {
	body, err := json.Marshal(bedrockRequest{
		AnthropicVersion: bedrockAnthropicVersion,
		MaxTokens:        bedrockMaxTokens,
		Temperature:      0.2,
		Messages: []bedrockMessage{{
			Role:    "user",
			Content: []bedrockContent{{Type: "text", Text: prompt}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	ctx := context.Background()
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	modelID := bedrockModelID(b.Model)
	out, err := b.svc.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invoke error for %q: %w", modelID, err)
	}

	return parseBedrockResponse(out.Body)
}

func parseBedrockResponse(data []byte) (string, error) {
	var resp bedrockResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to decode Anthropic response: %w", err)
	}
	for _, c := range resp.Content {
		if c.Type == "text" && strings.TrimSpace(c.Text) != "" {
			return strings.TrimSpace(c.Text), nil
		}
	}
	return "", fmt.Errorf("empty response from Bedrock Anthropic model")
}

// bedrockModelID appends the ":0" revision to bare model IDs. ARNs and
// inference profiles are passed through untouched.
func bedrockModelID(model string) string {
	lower := strings.ToLower(model)
	if strings.HasPrefix(lower, "arn:") || strings.Contains(lower, "inference-profile/") {
		return model
	}
	if !strings.Contains(model, ":") {
		return model + ":0"
	}
	return model
}

func bedrockFamily(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.Contains(m, "anthropic."):
		return "anthropic"
	case strings.Contains(m, "meta."):
		return "meta"
	case strings.Contains(m, "amazon.titan"):
		return "titan"
	default:
		return ""
	}
}

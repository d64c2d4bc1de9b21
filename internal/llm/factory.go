package llm

import (
	"fmt"
	"strings"
	"time"
)

// Settings carries the provider-agnostic fields needed to build a Provider
type Settings struct {
	Provider string
	Endpoint string
	Region   string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// NewProviderFromConfig creates a Provider from config fields
func NewProviderFromConfig(s Settings) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "openai", "":
		c, err := NewOpenAI(s.Endpoint, s.APIKey, s.Model, s.Timeout)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "ollama":
		if strings.TrimSpace(s.Endpoint) == "" {
			return nil, fmt.Errorf("ollama endpoint is required")
		}
		return NewClient(s.Endpoint, s.Model, s.Timeout), nil
	case "bedrock":
		c, err := NewBedrock(s.Region, s.Model, s.Timeout)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", s.Provider)
	}
}

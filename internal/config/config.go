package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appDirName = "timesaver"

// LLMConfig holds all LLM-related configuration
type LLMConfig struct {
	// Core LLM settings
	Provider  string `json:"provider" yaml:"provider"` // openai, ollama, bedrock
	Model     string `json:"model" yaml:"model"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	Region    string `json:"region" yaml:"region"` // For AWS Bedrock
	APIKey    string `json:"api_key" yaml:"api_key"`
	APIKeyEnv string `json:"api_key_env" yaml:"api_key_env"`
	Timeout   string `json:"timeout" yaml:"timeout"`

	// Summarization
	ChunkSize    int  `json:"chunk_size" yaml:"chunk_size"`
	CacheEnabled bool `json:"cache_enabled" yaml:"cache_enabled"`

	// Inline prompt overrides
	ChunkPrompt    string `json:"chunk_prompt,omitempty" yaml:"chunk_prompt,omitempty"`
	OrganizePrompt string `json:"organize_prompt,omitempty" yaml:"organize_prompt,omitempty"`
	QuestionPrompt string `json:"question_prompt,omitempty" yaml:"question_prompt,omitempty"`
}

// MailConfig controls which messages are pulled from Gmail
type MailConfig struct {
	DefaultHours int    `json:"default_hours" yaml:"default_hours"`
	MaxHours     int    `json:"max_hours" yaml:"max_hours"`
	MaxResults   int64  `json:"max_results" yaml:"max_results"`
	Label        string `json:"label" yaml:"label"`
	From         string `json:"from" yaml:"from"` // sender used for outgoing mail, "me" when empty
}

// TimerConfig holds countdown timer defaults
type TimerConfig struct {
	Default string `json:"default" yaml:"default"`
	Bell    bool   `json:"bell" yaml:"bell"`
}

// Config holds all configuration for the application
type Config struct {
	Credentials string `json:"credentials" yaml:"credentials"`
	Token       string `json:"token" yaml:"token"`

	LLM   LLMConfig   `json:"llm" yaml:"llm"`
	Mail  MailConfig  `json:"mail" yaml:"mail"`
	Timer TimerConfig `json:"timer" yaml:"timer"`

	// Logging
	LogFile  string `json:"log_file" yaml:"log_file"`
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// Default prompts. {{body}}, {{context}} and {{question}} are substituted at call time.
const (
	bodyPlaceholder = "{{body}}"

	DefaultChunkPrompt    = "Summarize this text:\n{{body}}"
	DefaultOrganizePrompt = "Organize this combined text:\n{{body}}"
	DefaultQuestionPrompt = "{{context}}\nQuestion: {{question}}"
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM:      DefaultLLMConfig(),
		Mail:     DefaultMailConfig(),
		Timer:    DefaultTimerConfig(),
		LogFile:  "",
		LogLevel: "info",
	}
}

// DefaultLLMConfig returns default LLM configuration
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:     "openai",
		Model:        "tiiuae/falcon-180B-chat",
		Endpoint:     "https://api.ai71.ai/v1/",
		APIKeyEnv:    "AI71_API_KEY",
		Timeout:      "60s",
		ChunkSize:    1000,
		CacheEnabled: true,
	}
}

// DefaultMailConfig returns default retrieval settings
func DefaultMailConfig() MailConfig {
	return MailConfig{
		DefaultHours: 1,
		MaxHours:     24,
		MaxResults:   10,
		Label:        "INBOX",
	}
}

// DefaultTimerConfig returns default countdown settings
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		Default: "5m",
		Bell:    true,
	}
}

// LoadConfig loads configuration from a JSON or YAML file on top of the defaults.
// A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would make the application misbehave
func (c *Config) Validate() error {
	if c.LLM.ChunkSize <= 0 {
		return fmt.Errorf("llm.chunk_size must be positive, got %d", c.LLM.ChunkSize)
	}
	if c.LLM.Timeout != "" {
		if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
			return fmt.Errorf("llm.timeout: %w", err)
		}
	}
	if c.LLM.ChunkPrompt != "" && !strings.Contains(c.LLM.ChunkPrompt, bodyPlaceholder) {
		return fmt.Errorf("llm.chunk_prompt must contain %s", bodyPlaceholder)
	}
	if c.LLM.OrganizePrompt != "" && !strings.Contains(c.LLM.OrganizePrompt, bodyPlaceholder) {
		return fmt.Errorf("llm.organize_prompt must contain %s", bodyPlaceholder)
	}
	if c.Mail.MaxHours < 0 {
		return fmt.Errorf("mail.max_hours must not be negative")
	}
	if c.Mail.DefaultHours < 0 || c.Mail.DefaultHours > c.Mail.MaxHours {
		return fmt.Errorf("mail.default_hours must be between 0 and %d", c.Mail.MaxHours)
	}
	if c.Mail.MaxResults <= 0 {
		return fmt.Errorf("mail.max_results must be positive")
	}
	if c.Timer.Default != "" {
		if _, err := time.ParseDuration(c.Timer.Default); err != nil {
			return fmt.Errorf("timer.default: %w", err)
		}
	}
	return nil
}

// DefaultConfigDir returns ~/.config/timesaver
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.json")
}

// DefaultCredentialPaths returns the default paths for credentials and token
func DefaultCredentialPaths() (string, string) {
	dir := DefaultConfigDir()
	if dir == "" {
		return "", ""
	}
	return filepath.Join(dir, "credentials.json"), filepath.Join(dir, "token.json")
}

// DefaultLogPath returns the default log file path
func DefaultLogPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, appDirName+".log")
}

// SaveConfig saves the configuration to a file, as YAML when the extension asks for it
func (c *Config) SaveConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetLLMTimeout returns parsed timeout for LLM
func (c *Config) GetLLMTimeout() time.Duration {
	if c.LLM.Timeout != "" {
		if d, err := time.ParseDuration(c.LLM.Timeout); err == nil {
			return d
		}
	}
	return 60 * time.Second
}

// GetTimerDefault returns the parsed default countdown duration
func (c *Config) GetTimerDefault() time.Duration {
	if c.Timer.Default != "" {
		if d, err := time.ParseDuration(c.Timer.Default); err == nil && d > 0 {
			return d
		}
	}
	return 5 * time.Minute
}

// GetAPIKey returns the inline API key or, when empty, the one from api_key_env
func (c *LLMConfig) GetAPIKey() string {
	if strings.TrimSpace(c.APIKey) != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		if v := os.Getenv(c.APIKeyEnv); v != "" {
			return v
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}

// GetChunkPrompt returns the per-chunk summarize prompt
func (c *LLMConfig) GetChunkPrompt() string {
	return promptOrDefault(c.ChunkPrompt, DefaultChunkPrompt)
}

// GetOrganizePrompt returns the prompt for the combining pass
func (c *LLMConfig) GetOrganizePrompt() string {
	return promptOrDefault(c.OrganizePrompt, DefaultOrganizePrompt)
}

// GetQuestionPrompt returns the question answering prompt
func (c *LLMConfig) GetQuestionPrompt() string {
	return promptOrDefault(c.QuestionPrompt, DefaultQuestionPrompt)
}

func promptOrDefault(inline, fallback string) string {
	if strings.TrimSpace(inline) != "" {
		return inline
	}
	return fallback
}

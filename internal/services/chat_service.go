package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ajramos/timesaver/internal/config"
	"github.com/ajramos/timesaver/internal/llm"
	"github.com/ajramos/timesaver/internal/render"
)

// ChatServiceImpl implements ChatService
type ChatServiceImpl struct {
	provider llm.Provider
	config   *config.Config
	logger   *slog.Logger
}

// NewChatService creates a new chat service
func NewChatService(provider llm.Provider, cfg *config.Config, logger *slog.Logger) *ChatServiceImpl {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatServiceImpl{
		provider: provider,
		config:   cfg,
		logger:   logger,
	}
}

// Ask records the question in the session and answers it over the session emails.
// Without retrieved emails the question is recorded and ErrNoEmails returned.
func (s *ChatServiceImpl) Ask(ctx context.Context, session *Session, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" || session == nil {
		return "", ErrInvalidInput
	}

	session.AddTurn(render.RoleUser, question)

	if !session.HasEmails() {
		return "", ErrNoEmails
	}
	if s.provider == nil {
		return "", ErrProviderUnavailable
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prompt := strings.NewReplacer(
		"{{context}}", session.Context(),
		"{{question}}", question,
	).Replace(s.config.LLM.GetQuestionPrompt())

	resp, err := s.provider.Generate(prompt)
	if err != nil {
		s.logger.Error("chat generation failed", "error", err)
		return "", fmt.Errorf("generate answer: %w", err)
	}

	answer := llm.CleanResponse(resp)
	session.AddTurn(render.RoleAssistant, answer)
	return answer, nil
}

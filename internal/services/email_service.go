package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ajramos/timesaver/internal/config"
	"github.com/ajramos/timesaver/internal/gmail"
	"github.com/ajramos/timesaver/internal/render"
)

var _ MessageRepository = (*gmail.Client)(nil)

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	repo      MessageRepository
	aiService AIService
	config    *config.Config
	logger    *slog.Logger
}

// NewEmailService creates a new email service
func NewEmailService(repo MessageRepository, aiService AIService, cfg *config.Config, logger *slog.Logger) *EmailServiceImpl {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailServiceImpl{
		repo:      repo,
		aiService: aiService,
		config:    cfg,
		logger:    logger,
	}
}

// RetrieveEmails fetches messages from the last hours and summarizes each body.
// Emails keep listing order; a failed summary leaves Content empty.
func (s *EmailServiceImpl) RetrieveEmails(ctx context.Context, hours int) ([]Email, error) {
	if hours < 0 || hours > s.config.Mail.MaxHours {
		return nil, fmt.Errorf("%w: hours must be between 0 and %d", ErrInvalidInput, s.config.Mail.MaxHours)
	}
	if s.repo == nil {
		return nil, fmt.Errorf("gmail client not available")
	}

	listed, err := s.repo.ListRecent(ctx, hours, s.config.Mail.MaxResults, s.config.Mail.Label)
	if err != nil {
		return nil, err
	}
	if len(listed) == 0 {
		return []Email{}, nil
	}

	ids := make([]string, 0, len(listed))
	for _, m := range listed {
		ids = append(ids, m.Id)
	}
	messages, err := s.repo.GetMessagesParallel(ctx, ids, 0)
	if err != nil {
		return nil, err
	}

	emails := make([]Email, 0, len(messages))
	for _, m := range messages {
		if m == nil {
			continue
		}
		e := Email{
			ID:      m.Id,
			Sender:  m.From,
			Subject: m.Subject,
			Date:    m.Date,
		}
		body := s.plainBody(m.Body)
		if s.aiService != nil && body != "" {
			if summary, ok := s.aiService.StructureText(ctx, body); ok {
				e.Content = summary
			}
		}
		emails = append(emails, e)
	}

	s.logger.Info("emails retrieved", "hours", hours, "count", len(emails))
	return emails, nil
}

func (s *EmailServiceImpl) plainBody(raw string) string {
	text, err := render.StripHTML(raw)
	if err != nil {
		s.logger.Warn("markup stripping failed, using raw body", "error", err)
		text = raw
	}
	return render.CollapseBlankLines(text)
}

// SendEmail sends a plain text message from the configured sender
func (s *EmailServiceImpl) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return "", fmt.Errorf("%w: recipient cannot be empty", ErrInvalidInput)
	}
	if s.repo == nil {
		return "", fmt.Errorf("gmail client not available")
	}

	id, err := s.repo.SendMessage(ctx, s.config.Mail.From, to, subject, body)
	if err != nil {
		return "", err
	}
	s.logger.Info("email sent", "id", id)
	return id, nil
}

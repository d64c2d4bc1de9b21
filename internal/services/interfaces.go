package services

import (
	"context"
	"time"

	"github.com/ajramos/timesaver/internal/gmail"
	gmail_v1 "google.golang.org/api/gmail/v1"
)

// MessageRepository is the slice of the Gmail client the services depend on
type MessageRepository interface {
	ListRecent(ctx context.Context, hours int, maxResults int64, label string) ([]*gmail_v1.Message, error)
	GetMessagesParallel(ctx context.Context, ids []string, maxWorkers int) ([]*gmail.Message, error)
	SendMessage(ctx context.Context, from, to, subject, body string) (string, error)
}

// EmailService handles email business logic
type EmailService interface {
	RetrieveEmails(ctx context.Context, hours int) ([]Email, error)
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

// AIService handles AI-related operations
type AIService interface {
	// SummarizeText chunks, summarizes and organizes text. Any model failure
	// is returned wrapped in ErrSummarizationFailed.
	SummarizeText(ctx context.Context, text string) (string, error)
	// StructureText is SummarizeText for callers that only need a result:
	// failures are reported once and yield ("", false).
	StructureText(ctx context.Context, text string) (string, bool)
	SetErrorReporter(reporter ErrorReporter)
}

// ChatService answers questions over the emails held in a session
type ChatService interface {
	Ask(ctx context.Context, session *Session, question string) (string, error)
}

// CacheService handles caching operations
type CacheService interface {
	GetSummary(ctx context.Context, text string) (string, bool, error)
	SaveSummary(ctx context.Context, text, summary string) error
	InvalidateSummary(ctx context.Context, text string) error
	ClearCache(ctx context.Context) error
}

// TimerService runs a single countdown at a time
type TimerService interface {
	Start(ctx context.Context, d time.Duration, onTick func(remaining time.Duration), onDone func()) error
	Stop()
	Running() bool
}

// ErrorReporter shows a failure to the user
type ErrorReporter func(err error)

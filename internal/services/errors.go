package services

import "errors"

// Service errors surfaced to the UI
var (
	// ErrSummarizationFailed wraps any model failure during hierarchical summarization
	ErrSummarizationFailed = errors.New("summarization failed")

	ErrNoEmails            = errors.New("no emails retrieved")
	ErrProviderUnavailable = errors.New("AI provider not available")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrTimerRunning        = errors.New("timer already running")
)

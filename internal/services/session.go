package services

import (
	"strings"
	"sync"
	"time"
)

// Email is a retrieved message with its summarized content
type Email struct {
	ID      string
	Sender  string
	Subject string
	Date    time.Time
	// Content is the final summary, empty when summarization was skipped or failed
	Content string
}

// ChatMessage is one turn of the conversation
type ChatMessage struct {
	Role    string
	Content string
}

// Session holds the state of one UI run: the last retrieved emails and the chat history.
type Session struct {
	mu      sync.RWMutex
	emails  []Email
	history []ChatMessage
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// SetEmails replaces the retrieved emails
func (s *Session) SetEmails(emails []Email) {
	cp := make([]Email, len(emails))
	copy(cp, emails)

	s.mu.Lock()
	s.emails = cp
	s.mu.Unlock()
}

// Emails returns a copy of the retrieved emails
func (s *Session) Emails() []Email {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]Email, len(s.emails))
	copy(cp, s.emails)
	return cp
}

func (s *Session) HasEmails() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.emails) > 0
}

// AddTurn appends a chat message
func (s *Session) AddTurn(role, content string) {
	s.mu.Lock()
	s.history = append(s.history, ChatMessage{Role: role, Content: content})
	s.mu.Unlock()
}

// History returns a copy of the chat history
func (s *Session) History() []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]ChatMessage, len(s.history))
	copy(cp, s.history)
	return cp
}

// ClearHistory drops the chat history and keeps the emails
func (s *Session) ClearHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

// Reset drops everything
func (s *Session) Reset() {
	s.mu.Lock()
	s.emails = nil
	s.history = nil
	s.mu.Unlock()
}

// Context renders the session emails for a question prompt
func (s *Session) Context() string {
	return BuildContext(s.Emails())
}

// BuildContext renders emails as the context block sent with every question
func BuildContext(emails []Email) string {
	var b strings.Builder
	b.WriteString("Here is the email data:\n\n")
	for _, e := range emails {
		b.WriteString("From: ")
		b.WriteString(e.Sender)
		b.WriteString("\nSubject: ")
		b.WriteString(e.Subject)
		b.WriteString("\nContent: ")
		b.WriteString(e.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

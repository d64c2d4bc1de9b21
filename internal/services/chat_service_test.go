package services

import (
	"context"
	"testing"

	"github.com/ajramos/timesaver/internal/config"
	"github.com/ajramos/timesaver/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionWithEmails() *Session {
	s := NewSession()
	s.SetEmails([]Email{{Sender: "jane@example.com", Subject: "Report", Content: "Due Friday."}})
	return s
}

func TestChatService_Ask(t *testing.T) {
	provider := &stubProvider{respond: func(string) string { return " It is due Friday.\nUser: " }}
	service := NewChatService(provider, config.DefaultConfig(), nil)
	session := sessionWithEmails()

	answer, err := service.Ask(context.Background(), session, "  When is the report due? ")
	require.NoError(t, err)
	assert.Equal(t, "It is due Friday.", answer)

	calls := provider.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, session.Context()+"\nQuestion: When is the report due?", calls[0])

	assert.Equal(t, []ChatMessage{
		{Role: render.RoleUser, Content: "When is the report due?"},
		{Role: render.RoleAssistant, Content: "It is due Friday."},
	}, session.History())
}

func TestChatService_Ask_NoEmails(t *testing.T) {
	provider := &stubProvider{}
	service := NewChatService(provider, nil, nil)
	session := NewSession()

	_, err := service.Ask(context.Background(), session, "anything new?")
	assert.ErrorIs(t, err, ErrNoEmails)
	assert.Empty(t, provider.calls())
	// The question is still recorded
	assert.Equal(t, []ChatMessage{{Role: render.RoleUser, Content: "anything new?"}}, session.History())
}

func TestChatService_Ask_InvalidInput(t *testing.T) {
	service := NewChatService(&stubProvider{}, nil, nil)

	_, err := service.Ask(context.Background(), sessionWithEmails(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.Ask(context.Background(), nil, "q")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestChatService_Ask_ProviderErrors(t *testing.T) {
	session := sessionWithEmails()

	_, err := NewChatService(nil, nil, nil).Ask(context.Background(), session, "q")
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	_, err = NewChatService(&stubProvider{failOn: 1}, nil, nil).Ask(context.Background(), session, "q2")
	assert.ErrorIs(t, err, errStub)

	// Only user turns were recorded
	for _, m := range session.History() {
		assert.Equal(t, render.RoleUser, m.Role)
	}
}

func TestChatService_Ask_CustomPrompt(t *testing.T) {
	provider := &stubProvider{}
	cfg := config.DefaultConfig()
	cfg.LLM.QuestionPrompt = "Q={{question}}|C={{context}}"
	service := NewChatService(provider, cfg, nil)
	session := sessionWithEmails()

	_, err := service.Ask(context.Background(), session, "why?")
	require.NoError(t, err)
	assert.Equal(t, "Q=why?|C="+session.Context(), provider.calls()[0])
}

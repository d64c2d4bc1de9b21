package services

import (
	"context"
	"errors"
	"sync"

	"github.com/ajramos/timesaver/internal/gmail"
	"github.com/stretchr/testify/mock"
	gmail_v1 "google.golang.org/api/gmail/v1"
)

// MockLLMProvider implements llm.Provider for testing
type MockLLMProvider struct {
	mock.Mock
}

func (m *MockLLMProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockLLMProvider) Generate(prompt string) (string, error) {
	args := m.Called(prompt)
	return args.String(0), args.Error(1)
}

// MockCacheService implements CacheService for testing
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetSummary(ctx context.Context, text string) (string, bool, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCacheService) SaveSummary(ctx context.Context, text, summary string) error {
	args := m.Called(ctx, text, summary)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateSummary(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

func (m *MockCacheService) ClearCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMessageRepository implements MessageRepository for testing
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) ListRecent(ctx context.Context, hours int, maxResults int64, label string) ([]*gmail_v1.Message, error) {
	args := m.Called(ctx, hours, maxResults, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*gmail_v1.Message), args.Error(1)
}

func (m *MockMessageRepository) GetMessagesParallel(ctx context.Context, ids []string, maxWorkers int) ([]*gmail.Message, error) {
	args := m.Called(ctx, ids, maxWorkers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*gmail.Message), args.Error(1)
}

func (m *MockMessageRepository) SendMessage(ctx context.Context, from, to, subject, body string) (string, error) {
	args := m.Called(ctx, from, to, subject, body)
	return args.String(0), args.Error(1)
}

// MockAIService implements AIService for testing
type MockAIService struct {
	mock.Mock
}

func (m *MockAIService) SummarizeText(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func (m *MockAIService) StructureText(ctx context.Context, text string) (string, bool) {
	args := m.Called(ctx, text)
	return args.String(0), args.Bool(1)
}

func (m *MockAIService) SetErrorReporter(reporter ErrorReporter) {
	m.Called(reporter)
}

var errStub = errors.New("model unavailable")

// stubProvider records every prompt and answers through respond.
// failOn makes the n-th call (1-based) fail.
type stubProvider struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) string
	failOn  int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Generate(prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	if p.failOn > 0 && len(p.prompts) == p.failOn {
		return "", errStub
	}
	if p.respond == nil {
		return "SUM:" + prompt, nil
	}
	return p.respond(prompt), nil
}

func (p *stubProvider) calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.prompts))
	copy(out, p.prompts)
	return out
}

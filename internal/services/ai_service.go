package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ajramos/timesaver/internal/chunk"
	"github.com/ajramos/timesaver/internal/config"
	"github.com/ajramos/timesaver/internal/llm"
)

// AIServiceImpl implements AIService
type AIServiceImpl struct {
	provider     llm.Provider
	cacheService CacheService
	config       *config.Config
	logger       *slog.Logger

	// one model call in flight at a time
	mu sync.Mutex

	reporterMu sync.RWMutex
	reporter   ErrorReporter
}

// NewAIService creates a new AI service
func NewAIService(provider llm.Provider, cacheService CacheService, cfg *config.Config, logger *slog.Logger) *AIServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &AIServiceImpl{
		provider:     provider,
		cacheService: cacheService,
		config:       cfg,
		logger:       logger,
	}
}

// SetErrorReporter registers where StructureText sends failures
func (s *AIServiceImpl) SetErrorReporter(reporter ErrorReporter) {
	s.reporterMu.Lock()
	s.reporter = reporter
	s.reporterMu.Unlock()
}

func (s *AIServiceImpl) llmConfig() config.LLMConfig {
	if s.config == nil {
		return config.DefaultLLMConfig()
	}
	return s.config.LLM
}

func (s *AIServiceImpl) chunkSize() int {
	if n := s.llmConfig().ChunkSize; n > 0 {
		return n
	}
	return chunk.DefaultMaxLength
}

// SummarizeText splits text into chunks, summarizes each in order, joins the
// summaries with a single space and asks the model to organize the result.
// The first failing call aborts the run.
func (s *AIServiceImpl) SummarizeText(ctx context.Context, text string) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("%w: %w", ErrSummarizationFailed, ErrProviderUnavailable)
	}

	chunks, err := chunk.Split(text, s.chunkSize())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSummarizationFailed, err)
	}

	cfg := s.llmConfig()
	chunkPrompt := cfg.GetChunkPrompt()

	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]string, 0, len(chunks))
	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", ErrSummarizationFailed, err)
		}
		out, err := s.provider.Generate(fillBody(chunkPrompt, c))
		if err != nil {
			return "", fmt.Errorf("%w: chunk %d of %d: %w", ErrSummarizationFailed, i+1, len(chunks), err)
		}
		summaries = append(summaries, out)
	}
	s.logger.Debug("chunks summarized", "chunks", len(chunks), "provider", s.provider.Name())

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSummarizationFailed, err)
	}
	combined := strings.Join(summaries, " ")
	final, err := s.provider.Generate(fillBody(cfg.GetOrganizePrompt(), combined))
	if err != nil {
		return "", fmt.Errorf("%w: organize: %w", ErrSummarizationFailed, err)
	}

	return llm.CleanResponse(final), nil
}

// StructureText returns the summary of text, served from the cache when possible.
// Blank text yields an empty summary without calling the model.
// On failure the error goes to the registered reporter and ok is false.
func (s *AIServiceImpl) StructureText(ctx context.Context, text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", true
	}
	useCache := s.cacheService != nil && s.llmConfig().CacheEnabled

	if useCache {
		if cached, found, err := s.cacheService.GetSummary(ctx, text); err == nil && found {
			return cached, true
		} else if err != nil {
			s.logger.Warn("summary cache lookup failed", "error", err)
		}
	}

	summary, err := s.SummarizeText(ctx, text)
	if err != nil {
		s.report(err)
		return "", false
	}

	if useCache && summary != "" {
		if err := s.cacheService.SaveSummary(ctx, text, summary); err != nil {
			s.logger.Warn("summary cache save failed", "error", err)
		}
	}
	return summary, true
}

func (s *AIServiceImpl) report(err error) {
	s.logger.Error("summarization failed", "error", err)

	s.reporterMu.RLock()
	r := s.reporter
	s.reporterMu.RUnlock()
	if r != nil {
		r(err)
	}
}

func fillBody(template, body string) string {
	return strings.NewReplacer("{{body}}", body).Replace(template)
}

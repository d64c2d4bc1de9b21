package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/timesaver/internal/db"
)

// CacheServiceImpl implements CacheService on top of the in-memory summary store
type CacheServiceImpl struct {
	store *db.CacheStore
	model string
}

// NewCacheService creates a new cache service. Entries are scoped to model.
func NewCacheService(store *db.CacheStore, model string) *CacheServiceImpl {
	return &CacheServiceImpl{
		store: store,
		model: model,
	}
}

// ContentHash returns the cache key for a text
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (s *CacheServiceImpl) modelKey() string {
	if strings.TrimSpace(s.model) == "" {
		return "default"
	}
	return s.model
}

func (s *CacheServiceImpl) GetSummary(ctx context.Context, text string) (string, bool, error) {
	if s.store == nil {
		return "", false, fmt.Errorf("cache store not available")
	}
	if strings.TrimSpace(text) == "" {
		return "", false, fmt.Errorf("text cannot be empty")
	}

	summary, found, err := s.store.LoadSummary(ctx, s.modelKey(), ContentHash(text))
	if err != nil {
		return "", false, fmt.Errorf("failed to load summary from cache: %w", err)
	}
	return summary, found, nil
}

func (s *CacheServiceImpl) SaveSummary(ctx context.Context, text, summary string) error {
	if s.store == nil {
		return fmt.Errorf("cache store not available")
	}
	if strings.TrimSpace(text) == "" || strings.TrimSpace(summary) == "" {
		return fmt.Errorf("text and summary cannot be empty")
	}

	if err := s.store.SaveSummary(ctx, s.modelKey(), ContentHash(text), summary, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save summary to cache: %w", err)
	}
	return nil
}

func (s *CacheServiceImpl) InvalidateSummary(ctx context.Context, text string) error {
	if s.store == nil {
		return fmt.Errorf("cache store not available")
	}
	if err := s.store.DeleteSummary(ctx, s.modelKey(), ContentHash(text)); err != nil {
		return fmt.Errorf("failed to invalidate summary: %w", err)
	}
	return nil
}

func (s *CacheServiceImpl) ClearCache(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("cache store not available")
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

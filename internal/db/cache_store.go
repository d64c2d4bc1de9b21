package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// CacheStore handles AI summary cache operations
type CacheStore struct {
	db *sql.DB
}

// NewCacheStore creates a new cache store from a base store
func NewCacheStore(store *Store) *CacheStore {
	if store == nil {
		return nil
	}
	return &CacheStore{db: store.DB()}
}

// SaveSummary upserts a summary for (model, text_hash)
func (cs *CacheStore) SaveSummary(ctx context.Context, model, textHash, summary string, updatedAt int64) error {
	if cs == nil || cs.db == nil {
		return fmt.Errorf("cache store not initialized")
	}
	if strings.TrimSpace(model) == "" || strings.TrimSpace(textHash) == "" || strings.TrimSpace(summary) == "" {
		return fmt.Errorf("invalid summary inputs")
	}
	_, err := cs.db.ExecContext(ctx, `INSERT INTO ai_summaries(model, text_hash, summary, updated_at)
VALUES(?,?,?,?)
ON CONFLICT(model, text_hash) DO UPDATE SET summary=excluded.summary, updated_at=excluded.updated_at;
`, model, textHash, summary, updatedAt)
	return err
}

// LoadSummary returns a cached summary if present
func (cs *CacheStore) LoadSummary(ctx context.Context, model, textHash string) (string, bool, error) {
	if cs == nil || cs.db == nil {
		return "", false, fmt.Errorf("cache store not initialized")
	}
	var out string
	err := cs.db.QueryRowContext(ctx, `SELECT summary FROM ai_summaries WHERE model=? AND text_hash=?`, model, textHash).Scan(&out)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// DeleteSummary removes a cached summary for (model, text_hash)
func (cs *CacheStore) DeleteSummary(ctx context.Context, model, textHash string) error {
	if cs == nil || cs.db == nil {
		return fmt.Errorf("cache store not initialized")
	}
	_, err := cs.db.ExecContext(ctx, `DELETE FROM ai_summaries WHERE model=? AND text_hash=?`, model, textHash)
	return err
}

// Count returns the number of cached summaries
func (cs *CacheStore) Count(ctx context.Context) (int, error) {
	if cs == nil || cs.db == nil {
		return 0, fmt.Errorf("cache store not initialized")
	}
	var n int
	if err := cs.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ai_summaries`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Clear removes every cached summary
func (cs *CacheStore) Clear(ctx context.Context) error {
	if cs == nil || cs.db == nil {
		return fmt.Errorf("cache store not initialized")
	}
	_, err := cs.db.ExecContext(ctx, `DELETE FROM ai_summaries`)
	return err
}

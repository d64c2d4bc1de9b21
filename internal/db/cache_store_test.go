package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCacheStore(t *testing.T) {
	assert.Nil(t, NewCacheStore(nil))

	store := newTestStore(t)
	cache := NewCacheStore(store)
	require.NotNil(t, cache)
	assert.Equal(t, store.db, cache.db)
}

func TestCacheStore_SaveSummary_ValidationErrors(t *testing.T) {
	cache := NewCacheStore(newTestStore(t))
	ctx := context.Background()

	tests := []struct {
		name     string
		model    string
		textHash string
		summary  string
	}{
		{"empty_model", "", "abc", "summary"},
		{"empty_hash", "falcon", "", "summary"},
		{"empty_summary", "falcon", "abc", ""},
		{"whitespace_summary", "falcon", "abc", "   "},
		{"all_empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cache.SaveSummary(ctx, tt.model, tt.textHash, tt.summary, time.Now().Unix())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid summary inputs")
		})
	}
}

func TestCacheStore_NotInitialized(t *testing.T) {
	ctx := context.Background()
	for _, cache := range []*CacheStore{nil, {db: nil}} {
		err := cache.SaveSummary(ctx, "m", "h", "s", 1)
		assert.ErrorContains(t, err, "cache store not initialized")

		summary, found, err := cache.LoadSummary(ctx, "m", "h")
		assert.ErrorContains(t, err, "cache store not initialized")
		assert.Empty(t, summary)
		assert.False(t, found)

		assert.ErrorContains(t, cache.DeleteSummary(ctx, "m", "h"), "cache store not initialized")
		assert.ErrorContains(t, cache.Clear(ctx), "cache store not initialized")
		_, err = cache.Count(ctx)
		assert.ErrorContains(t, err, "cache store not initialized")
	}
}

func TestCacheStore_SaveAndLoad(t *testing.T) {
	cache := NewCacheStore(newTestStore(t))
	ctx := context.Background()

	summary, found, err := cache.LoadSummary(ctx, "falcon", "abc")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, summary)

	require.NoError(t, cache.SaveSummary(ctx, "falcon", "abc", "First summary", 100))
	summary, found, err = cache.LoadSummary(ctx, "falcon", "abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "First summary", summary)

	// Same hash under a different model is a different entry
	_, found, err = cache.LoadSummary(ctx, "llama", "abc")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheStore_Upsert(t *testing.T) {
	cache := NewCacheStore(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, cache.SaveSummary(ctx, "falcon", "abc", "First summary", 100))
	require.NoError(t, cache.SaveSummary(ctx, "falcon", "abc", "Updated summary", 200))

	n, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var storedSummary string
	var storedUpdatedAt int64
	err = cache.db.QueryRowContext(ctx,
		"SELECT summary, updated_at FROM ai_summaries WHERE model = ? AND text_hash = ?",
		"falcon", "abc").Scan(&storedSummary, &storedUpdatedAt)
	require.NoError(t, err)
	assert.Equal(t, "Updated summary", storedSummary)
	assert.Equal(t, int64(200), storedUpdatedAt)
}

func TestCacheStore_DeleteAndClear(t *testing.T) {
	cache := NewCacheStore(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, cache.SaveSummary(ctx, "falcon", "a", "one", 1))
	require.NoError(t, cache.SaveSummary(ctx, "falcon", "b", "two", 1))

	require.NoError(t, cache.DeleteSummary(ctx, "falcon", "a"))
	_, found, err := cache.LoadSummary(ctx, "falcon", "a")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting a missing row is not an error
	assert.NoError(t, cache.DeleteSummary(ctx, "falcon", "missing"))

	require.NoError(t, cache.Clear(ctx))
	n, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

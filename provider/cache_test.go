package provider

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aurora.json")
	cache := NewFileCache(path, 5*time.Minute)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, ok := cache.Get(now)
	assert.False(t, ok, "empty cache should miss")

	payload := json.RawMessage(`{"kp": 4}`)
	require.NoError(t, cache.Put(now, payload))

	got, ok := cache.Get(now.Add(4 * time.Minute))
	require.True(t, ok)
	assert.JSONEq(t, `{"kp": 4}`, string(got))

	_, ok = cache.Get(now.Add(5 * time.Minute))
	assert.False(t, ok, "cache should expire at TTL")
}

func TestFileCacheCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tide.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	cache := NewFileCache(path, time.Hour)
	_, ok := cache.Get(time.Now())
	assert.False(t, ok)
}

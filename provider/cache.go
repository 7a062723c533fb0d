package provider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type cacheEnvelope struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Data      json.RawMessage `json:"data"`
}

// FileCache is a TTL cache for raw API payloads, backed by a JSON file so
// cached data survives restarts. Used by the slow-changing providers
// (aurora, tides) to avoid hammering their upstream APIs.
type FileCache struct {
	path string
	ttl  time.Duration
}

func NewFileCache(path string, ttl time.Duration) *FileCache {
	return &FileCache{path: path, ttl: ttl}
}

// Get returns the cached payload if it is younger than the TTL.
func (c *FileCache) Get(now time.Time) (json.RawMessage, bool) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}
	var env cacheEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false
	}
	if env.FetchedAt.IsZero() || now.Sub(env.FetchedAt) >= c.ttl {
		return nil, false
	}
	return env.Data, true
}

// Put stores a payload with the current fetch time.
func (c *FileCache) Put(now time.Time, data json.RawMessage) error {
	env := cacheEnvelope{FetchedAt: now.UTC(), Data: data}
	buf, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	return os.WriteFile(c.path, buf, 0o644)
}

package scores

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"criticdeck/models"
)

// cacheFileName carries the payload version; bumping the name is the
// migration mechanism when the payload shape changes incompatibly.
const cacheFileName = "scores.v2.json"

// cacheEntry is one timestamped payload in the persisted document.
type cacheEntry struct {
	Timestamp int64              `json:"timestamp"` // epoch millis, set at write time
	Payload   models.ScoreResult `json:"payload"`
}

// age returns how long ago the entry was written.
func (e cacheEntry) age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(e.Timestamp))
}

// scoreCache persists resolved scores as a single JSON document keyed by
// normalized title. The whole map is read, modified, and written back on
// every update: last writer wins, which is acceptable for a single-process
// cache but not safe across processes. Expired entries are never deleted;
// they stay readable as a degraded fallback when a fresh fetch fails. Any
// read or deserialization failure degrades to a miss, never an error.
type scoreCache struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	now  func() time.Time
}

func newScoreCache(fs afero.Fs, dir string, now func() time.Time) *scoreCache {
	if now == nil {
		now = time.Now
	}
	return &scoreCache{
		fs:   fs,
		path: filepath.Join(dir, cacheFileName),
		now:  now,
	}
}

// load reads the persisted document, returning an empty map when the file is
// absent or corrupt.
func (c *scoreCache) load() map[string]cacheEntry {
	raw, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		return map[string]cacheEntry{}
	}
	var entries map[string]cacheEntry
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return map[string]cacheEntry{}
	}
	return entries
}

// get looks up key in the persisted document. TTL is the caller's policy;
// get returns stale entries so callers can use them as a fallback.
func (c *scoreCache) get(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.load()[key]
	return entry, ok
}

// put stamps the payload with the current time and writes the whole document
// back. Write failures are logged and swallowed; a cache that cannot persist
// simply behaves as a miss on the next read.
func (c *scoreCache) put(key string, payload models.ScoreResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load()
	entries[key] = cacheEntry{Timestamp: c.now().UnixMilli(), Payload: payload}

	raw, err := json.Marshal(entries)
	if err != nil {
		log.Printf("[scores] warning: failed to encode cache: %v", err)
		return
	}
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		log.Printf("[scores] warning: failed to create cache dir: %v", err)
		return
	}
	if err := afero.WriteFile(c.fs, c.path, raw, 0o644); err != nil {
		log.Printf("[scores] warning: failed to write cache: %v", err)
	}
}

// clear removes the persisted document.
func (c *scoreCache) clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fs.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

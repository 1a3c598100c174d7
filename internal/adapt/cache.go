// Package adapt implements the adaptation-processing core: a content-addressed
// LRU cache of adapted text, a token-budget batch scheduler that turns many
// per-block requests into few external calls, and the fallback ladder that
// guarantees every block receives an adapted result.
package adapt

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// DefaultCacheCapacity bounds the process-wide adaptation cache.
const DefaultCacheCapacity = 2000

// cacheKey addresses one (normalized text, profile) pair.
type cacheKey struct {
	textHash string
	profile  string
}

// cacheEntry is the list payload; the element's position encodes recency.
type cacheEntry struct {
	key     cacheKey
	adapted string
}

// Cache is a bounded, concurrent-safe LRU store mapping
// (normalized text, profile) to adapted text. It is shared process-wide:
// entries persist across documents handled in the same run, and lookup,
// insertion, and eviction are atomic with respect to each other.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[cacheKey]*list.Element
	order    *list.List // front = most recently used

	hits   int
	misses int
}

// Stats is a point-in-time snapshot of cache usage.
type Stats struct {
	Size     int
	Capacity int
	Hits     int
	Misses   int
}

// HitRate returns the fraction of lookups served from the cache, 0 when none.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// NewCache creates a cache holding at most capacity entries.
// Non-positive capacities fall back to DefaultCacheCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[cacheKey]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached adaptation for (text, profileID) and refreshes its
// recency. The text is normalized before lookup, so formatting-only variants
// of the same content share one entry.
func (c *Cache) Get(text, profileID string) (string, bool) {
	key := keyFor(text, profileID)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}

	c.order.MoveToFront(el)
	c.hits++
	return el.Value.(*cacheEntry).adapted, true
}

// Put stores the adaptation for (text, profileID), evicting the
// least-recently-used entry when the cache is full. Re-putting an existing
// key updates its value and recency without growing the cache.
func (c *Cache) Put(text, profileID, adapted string) {
	key := keyFor(text, profileID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).adapted = adapted
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, adapted: adapted})
}

// Stats returns a snapshot of current usage.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:     c.order.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}

// keyFor builds the content-addressed key for one lookup.
func keyFor(text, profileID string) cacheKey {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return cacheKey{
		textHash: hex.EncodeToString(sum[:]),
		profile:  profileID,
	}
}

// NormalizeText canonicalizes text for cache addressing: NFKC normalization
// folds compatibility variants, then interior whitespace runs collapse to
// single spaces and the result is lowercased. Raising the hit rate here is
// safe because the adapted output is keyed, never re-derived, from this form.
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

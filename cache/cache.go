// Package cache provides memoization for L-system expansions.
// Caching pays off when the same grammar and pass count are expanded
// repeatedly, such as interactive front ends re-deriving on every redraw.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
	"sync"

	"github.com/pflow-xyz/go-lsystem/lsystem"
)

// ExpansionCache caches expansion results keyed by grammar and pass count.
type ExpansionCache struct {
	mu        sync.RWMutex
	cache     map[string][]lsystem.Symbol
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

// NewExpansionCache creates a cache with the specified maximum size.
// When the cache is full, an arbitrary entry is evicted.
// Set maxSize to 0 for an unlimited cache.
func NewExpansionCache(maxSize int) *ExpansionCache {
	return &ExpansionCache{
		cache:   make(map[string][]lsystem.Symbol),
		maxSize: maxSize,
	}
}

// hashKey creates a deterministic hash of a grammar and iteration count.
func hashKey(g *lsystem.Grammar, iterations int) string {
	h := sha256.New()
	buf := make([]byte, 8)

	binary.BigEndian.PutUint64(buf, uint64(iterations))
	h.Write(buf)

	writeSeq := func(seq []lsystem.Symbol) {
		binary.BigEndian.PutUint64(buf, uint64(len(seq)))
		h.Write(buf)
		for _, s := range seq {
			binary.BigEndian.PutUint64(buf, uint64(len(s)))
			h.Write(buf)
			h.Write([]byte(s))
		}
	}

	writeSeq(g.Variables)
	writeSeq(g.Constants)
	writeSeq(g.Start)

	// Sort rule keys for determinism
	keys := make([]string, 0, len(g.Rules))
	for k := range g.Rules {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		writeSeq(g.Rules[lsystem.Symbol(k)])
	}

	return string(h.Sum(nil))
}

// Get retrieves a cached expansion for the given grammar and pass count.
// Returns nil if not found. The result is a fresh copy owned by the caller,
// matching the ownership contract of lsystem.Expand.
func (c *ExpansionCache) Get(g *lsystem.Grammar, iterations int) []lsystem.Symbol {
	key := hashKey(g, iterations)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq, ok := c.cache[key]; ok {
		c.hits++
		out := make([]lsystem.Symbol, len(seq))
		copy(out, seq)
		return out
	}
	c.misses++
	return nil
}

// Put stores an expansion result in the cache. The sequence is copied, so
// the caller remains free to mutate its slice afterwards.
func (c *ExpansionCache) Put(g *lsystem.Grammar, iterations int, seq []lsystem.Symbol) {
	key := hashKey(g, iterations)

	stored := make([]lsystem.Symbol, len(seq))
	copy(stored, seq)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && len(c.cache) >= c.maxSize {
		for k := range c.cache {
			delete(c.cache, k)
			c.evictions++
			break
		}
	}

	c.cache[key] = stored
}

// GetOrCompute retrieves from cache or computes and caches the result.
// Errors from compute are returned without caching.
func (c *ExpansionCache) GetOrCompute(g *lsystem.Grammar, iterations int, compute func() ([]lsystem.Symbol, error)) ([]lsystem.Symbol, error) {
	if seq := c.Get(g, iterations); seq != nil {
		return seq, nil
	}

	seq, err := compute()
	if err != nil {
		return nil, err
	}
	c.Put(g, iterations, seq)
	return seq, nil
}

// Clear removes all entries from the cache.
func (c *ExpansionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string][]lsystem.Symbol)
}

// Size returns the current number of cached entries.
func (c *ExpansionCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Stats holds cache statistics.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
}

// Stats returns cache statistics.
func (c *ExpansionCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Size:      len(c.cache),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}

// CachedExpander wraps expansion of a single grammar with caching.
type CachedExpander struct {
	grammar *lsystem.Grammar
	opts    *lsystem.Options
	cache   *ExpansionCache
}

// NewCachedExpander creates an expander with built-in caching.
func NewCachedExpander(g *lsystem.Grammar, cacheSize int) *CachedExpander {
	return &CachedExpander{
		grammar: g,
		opts:    lsystem.DefaultOptions(),
		cache:   NewExpansionCache(cacheSize),
	}
}

// WithOptions sets expansion options.
func (e *CachedExpander) WithOptions(opts *lsystem.Options) *CachedExpander {
	e.opts = opts
	return e
}

// Expand returns the expansion for the given pass count, cached.
func (e *CachedExpander) Expand(iterations int) ([]lsystem.Symbol, error) {
	return e.cache.GetOrCompute(e.grammar, iterations, func() ([]lsystem.Symbol, error) {
		return lsystem.ExpandWithOptions(e.grammar, iterations, e.opts)
	})
}

// Cache returns the underlying cache for inspection.
func (e *CachedExpander) Cache() *ExpansionCache {
	return e.cache
}

// ClearCache clears the cache.
func (e *CachedExpander) ClearCache() {
	e.cache.Clear()
}

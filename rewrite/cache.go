package rewrite

import (
	"cmp"
	"sync"

	"github.com/cottand/boolex/expr"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// CacheKey identifies a subtree rewritten under a specific RuleSet
type CacheKey struct {
	Digest  expr.Digest
	RuleSet uint64
}

func keyOf[K cmp.Ordered](e expr.Expr[K], rules *RuleSet[K]) CacheKey {
	return CacheKey{Digest: e.Digest(), RuleSet: rules.ID()}
}

// Entry is a finished rewrite
type Entry[K cmp.Ordered] struct {
	Result expr.Expr[K]
	// Steps is the number of rule firings the rewrite took. A hit is charged these
	// steps, so limits trip the same way with a warm cache as with a cold one.
	Steps int
	// Peak is the size of the largest expression the rewrite produced
	Peak int
}

// Cache memoizes finished rewrites. Implementations must be safe for concurrent use.
// Store may be called repeatedly for the same key with equal values; a Cache may
// forget entries at any time.
type Cache[K cmp.Ordered] interface {
	Load(key CacheKey) (Entry[K], bool)
	Store(key CacheKey, entry Entry[K])
}

type mapCache[K cmp.Ordered] struct {
	entries sync.Map
}

// NewCache returns an unbounded Cache. The first value stored for a key wins, so
// concurrent rewrites of equal subtrees end up sharing one result.
func NewCache[K cmp.Ordered]() Cache[K] {
	return &mapCache[K]{}
}

func (c *mapCache[K]) Load(key CacheKey) (Entry[K], bool) {
	v, ok := c.entries.Load(key)
	if !ok {
		cacheMisses.WithLabelValues(cacheKindMap).Inc()
		return Entry[K]{}, false
	}
	cacheHits.WithLabelValues(cacheKindMap).Inc()
	return v.(Entry[K]), true
}

func (c *mapCache[K]) Store(key CacheKey, entry Entry[K]) {
	c.entries.LoadOrStore(key, entry)
}

type lruCache[K cmp.Ordered] struct {
	entries *lru.Cache[CacheKey, Entry[K]]
}

// NewLRUCache returns a Cache holding at most size entries, evicting the least
// recently used. Eviction only costs recomputation.
func NewLRUCache[K cmp.Ordered](size int) (Cache[K], error) {
	entries, err := lru.New[CacheKey, Entry[K]](size)
	if err != nil {
		return nil, errors.Wrapf(err, "creating rewrite cache of size %d", size)
	}
	return &lruCache[K]{entries: entries}, nil
}

func (c *lruCache[K]) Load(key CacheKey) (Entry[K], bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		cacheMisses.WithLabelValues(cacheKindLRU).Inc()
		return Entry[K]{}, false
	}
	cacheHits.WithLabelValues(cacheKindLRU).Inc()
	return v, true
}

func (c *lruCache[K]) Store(key CacheKey, entry Entry[K]) {
	c.entries.ContainsOrAdd(key, entry)
}

// Len reports the number of entries currently held
func (c *lruCache[K]) Len() int {
	return c.entries.Len()
}

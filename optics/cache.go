package optics

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the compiled-optic cache capacity used when none is
// configured.
const DefaultCacheSize = 128

// Cache is a bounded LRU of compiled optics keyed by script hash. Concurrent
// compiles of the same script are collapsed into one via singleflight, so a
// popular optic is compiled once no matter how many queries carry it.
//
// Compilation errors are not cached: a script that fails to compile fails
// identically on every attempt and is cheap to reject.
type Cache struct {
	mu        sync.Mutex
	capacity  int
	items     map[string]*list.Element
	evictList *list.List

	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	key   string
	optic *Optic
}

// NewCache creates a compiled-optic cache. capacity <= 0 selects
// DefaultCacheSize.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Compile returns the compiled form of source, from cache when possible.
func (c *Cache) Compile(source string) (*Optic, error) {
	key := hashSource(source)

	c.mu.Lock()
	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		c.mu.Unlock()
		c.hits.Add(1)
		return ent.Value.(*cacheEntry).optic, nil
	}
	c.mu.Unlock()
	c.misses.Add(1)

	v, err, _ := c.group.Do(key, func() (any, error) {
		o, err := Compile(source)
		if err != nil {
			return nil, err
		}
		c.add(key, o)
		return o, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Optic), nil
}

// Stats returns cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) add(key string, o *Optic) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		return
	}

	element := c.evictList.PushFront(&cacheEntry{key: key, optic: o})
	c.items[key] = element

	for len(c.items) > c.capacity {
		oldest := c.evictList.Back()
		if oldest == nil {
			break
		}
		c.evictList.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

func hashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

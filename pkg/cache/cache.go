// Package cache provides a thread-safe LRU cache for compiled
// expressions.
//
// Compiling is pure, so caching by source text is always safe. The cache
// lives entirely at the compile layer; the engine itself holds no mutable
// caches.
package cache

import (
	"container/list"
	"sync"

	"github.com/johanventer/jsonata-go/pkg/types"
)

// entry is a cache entry stored in the doubly-linked list.
type entry struct {
	key  string
	expr *types.Expression
}

// Cache is a thread-safe LRU cache for compiled expressions. Once the
// capacity is reached, the least recently accessed entry is evicted.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// New creates an LRU cache with the given capacity. A capacity <= 0
// defaults to 256.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a compiled expression and marks it most recently used.
func (c *Cache) Get(key string) (*types.Expression, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	alreadyFront := ok && c.ll.Front() == el
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !alreadyFront {
		c.mu.Lock()
		c.ll.MoveToFront(el)
		c.mu.Unlock()
	}
	return el.Value.(*entry).expr, true
}

// Put stores a compiled expression, evicting the least recently used
// entry when over capacity.
func (c *Cache) Put(key string, expr *types.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*entry).expr = expr
		return
	}

	el := c.ll.PushFront(&entry{key: key, expr: expr})
	c.items[key] = el

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
}

// GetOrCompile returns the cached expression for key, compiling and
// storing it on a miss. Compilation errors are not cached.
func (c *Cache) GetOrCompile(key string, compile func(string) (*types.Expression, error)) (*types.Expression, error) {
	if expr, ok := c.Get(key); ok {
		return expr, nil
	}
	expr, err := compile(key)
	if err != nil {
		return nil, err
	}
	c.Put(key, expr)
	return expr, nil
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ll.Len()
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

package cache

import "sync"

// Cache maps keys to reference-counted shared resources.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*entry[K, V]
	idle    lruList[K]
	limit   int
	onEvict func(K, V)
}

type entry[K comparable, V any] struct {
	value V
	refs  int
	node  *lruNode[K] // set while idle
}

// New creates a cache keeping at most idleLimit released entries alive.
// An idleLimit of 0 evicts entries as soon as their last holder releases
// them.
func New[K comparable, V any](idleLimit int) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*entry[K, V]),
		limit:   idleLimit,
	}
}

// OnEvict registers fn to be called, under the cache lock, for every
// entry leaving the cache.
func (c *Cache[K, V]) OnEvict(fn func(K, V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// Peek returns the value for key without taking a reference.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Acquire returns the value for key with a new reference, creating it with
// load when absent. load runs under the cache lock so a key is never
// loaded twice; its error is returned as is and nothing is cached.
func (c *Cache[K, V]) Acquire(key K, load func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.ref(e)
		return e.value, nil
	}
	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = &entry[K, V]{value: v, refs: 1}
	return v, nil
}

// Put stores v under key with one reference, replacing an existing entry.
func (c *Cache[K, V]) Put(key K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries[key]; ok {
		c.drop(key, old)
	}
	c.entries[key] = &entry[K, V]{value: v, refs: 1}
}

func (c *Cache[K, V]) ref(e *entry[K, V]) {
	if e.node != nil {
		c.idle.remove(e.node)
		e.node = nil
	}
	e.refs++
}

// Release drops one reference to key. It reports false when key is not
// cached or holds no references.
func (c *Cache[K, V]) Release(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.refs == 0 {
		return false
	}
	e.refs--
	if e.refs > 0 {
		return true
	}
	e.node = c.idle.pushFront(key)
	for c.idle.len > c.limit {
		n := c.idle.oldest()
		c.drop(n.key, c.entries[n.key])
	}
	return true
}

// Remove evicts key whatever its reference count.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok {
		c.drop(key, e)
	}
	return ok
}

// drop removes e. Caller must hold c.mu.
func (c *Cache[K, V]) drop(key K, e *entry[K, V]) {
	if e.node != nil {
		c.idle.remove(e.node)
		e.node = nil
	}
	delete(c.entries, key)
	if c.onEvict != nil {
		c.onEvict(key, e.value)
	}
}

// Refs returns the number of references held on key.
func (c *Cache[K, V]) Refs(key K) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of cached entries, idle ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache occupancy.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Len: len(c.entries), Idle: c.idle.len, IdleLimit: c.limit}
}

// Clear evicts every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		e.node = nil
		delete(c.entries, k)
		if c.onEvict != nil {
			c.onEvict(k, e.value)
		}
	}
	c.idle.clear()
}

// Stats describes cache occupancy.
type Stats struct {
	// Len is the number of cached entries.
	Len int
	// Idle is the number of entries nobody holds.
	Idle int
	// IdleLimit is the soft limit on idle entries.
	IdleLimit int
}

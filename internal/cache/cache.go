package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultMaxEntries bounds a cache created without an explicit limit.
const DefaultMaxEntries = 500

type entry struct {
	key         string
	value       []byte
	contentType string
	expires     time.Time
}

// TTL is an in-memory response cache with a fixed lifetime per entry and a
// bounded number of entries. Every entry lives for the same ttl, so the
// insertion order kept in order is also the expiry order.
type TTL struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	order      *list.List
	entries    map[string]*list.Element
	now        func() time.Time
}

// NewTTL returns a cache holding at most maxEntries entries for ttl each.
// maxEntries <= 0 selects DefaultMaxEntries.
func NewTTL(ttl time.Duration, maxEntries int) *TTL {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &TTL{
		ttl:        ttl,
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
		now:        time.Now,
	}
}

// Get returns a live entry for key.
func (c *TTL) Get(key string) ([]byte, string, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, "", false
	}
	e := el.Value.(*entry)
	if !c.now().Before(e.expires) {
		c.remove(el)
		return nil, "", false
	}
	return e.value, e.contentType, true
}

// Set stores value. Expired entries are dropped from the front of the expiry
// order; when the cache is still full the entry closest to expiry goes.
func (c *TTL) Set(key string, value []byte, contentType string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()

	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
	for front := c.order.Front(); front != nil; front = c.order.Front() {
		if now.Before(front.Value.(*entry).expires) {
			break
		}
		c.remove(front)
	}
	for c.order.Len() >= c.maxEntries {
		c.remove(c.order.Front())
	}

	e := &entry{key: key, value: value, contentType: contentType, expires: now.Add(c.ttl)}
	c.entries[key] = c.order.PushBack(e)
}

// Len reports the number of stored entries, expired ones included until
// they are pruned.
func (c *TTL) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *TTL) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*entry).key)
}

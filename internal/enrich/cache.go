package enrich

import (
	"sync"
	"time"
)

// DefaultTTL is how long a preview lookup, including a miss, is trusted.
const DefaultTTL = time.Hour

type entry struct {
	image     *string
	fetchedAt time.Time
}

// Cache maps article URL to its preview image, or to nil when the page had
// none or could not be fetched. Entries expire on read after the TTL; there
// is no other eviction.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates an empty cache. A non-positive ttl means DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

// Get returns the cached image and whether a fresh entry exists.
func (c *Cache) Get(url string) (*string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		delete(c.entries, url)
		return nil, false
	}
	return e.image, true
}

// Set records a lookup result. A nil image is a negative entry.
func (c *Cache) Set(url string, image *string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = entry{image: image, fetchedAt: c.now()}
}

// Len returns the number of entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

package index

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// SessionCache is an append-only memo for one session. Keys are only ever
// added; a second insert for an existing key keeps the first value.
type SessionCache struct {
	mu      sync.RWMutex
	entries map[string]any
	group   singleflight.Group
}

// NewSessionCache tạo mới SessionCache rỗng
func NewSessionCache() *SessionCache {
	return &SessionCache{entries: make(map[string]any)}
}

// Get trả về giá trị đã lưu
func (c *SessionCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// PutIfAbsent stores v unless key is already present and returns the stored value.
func (c *SessionCache) PutIfAbsent(key string, v any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	c.entries[key] = v
	return v
}

// Len số entry
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys liệt kê các key đã lưu
func (c *SessionCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// getOrLoad returns the memoized value for key, calling fn at most once per
// key across concurrent callers. Errors are returned but not memoized.
func getOrLoad[T any](c *SessionCache, key string, fn func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v.(T), nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		loaded, err := fn()
		if err != nil {
			return nil, err
		}
		return c.PutIfAbsent(key, loaded), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

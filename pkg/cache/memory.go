package cache

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("cache is closed")

// memoryCache is a bounded map with an access-ordered list.
// The list front holds the most recently used (LRU) or newest (FIFO) entry.
type memoryCache struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List
	stats   Stats
	closed  bool
	stopped chan struct{}
	wg      sync.WaitGroup
}

type entry struct {
	key       string
	value     interface{}
	expiresAt time.Time // zero means never
}

// New creates an in-memory cache from config.
// A positive CleanupInterval starts a background sweep stopped by Close.
//
// New 根据配置创建内存缓存。CleanupInterval 为正时启动后台清理，Close 时停止。
func New(config *Config) (ICache, error) {
	if config == nil {
		config = NewDefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache config: %w", err)
	}

	c := &memoryCache{
		config:  config,
		now:     config.Clock,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		stopped: make(chan struct{}),
	}
	if c.now == nil {
		c.now = time.Now
	}

	if config.CleanupInterval > 0 {
		c.wg.Add(1)
		go c.sweepLoop(config.CleanupInterval)
	}
	return c, nil
}

func (c *memoryCache) Get(ctx context.Context, key string) (interface{}, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, false, ErrClosed
	}

	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false, nil
	}

	e := el.Value.(*entry)
	if c.expired(e, c.now()) {
		c.removeElement(el)
		c.stats.Expirations++
		c.stats.Misses++
		return nil, false, nil
	}

	if c.config.EvictionPolicy == PolicyLRU {
		c.order.MoveToFront(el)
	}
	c.stats.Hits++
	return e.value, true, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	var expiresAt time.Time
	switch {
	case ttl > 0:
		expiresAt = c.now().Add(ttl)
	case ttl == 0 && c.config.DefaultTTL > 0:
		expiresAt = c.now().Add(c.config.DefaultTTL)
	}

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		if c.config.EvictionPolicy == PolicyLRU {
			c.order.MoveToFront(el)
		}
		return nil
	}

	if limit := c.config.MaxEntries; limit > 0 {
		for c.order.Len() >= limit {
			c.removeElement(c.order.Back())
			c.stats.Evictions++
		}
	}

	c.items[key] = c.order.PushFront(&entry{key: key, value: value, expiresAt: expiresAt})
	c.stats.EntryCount = int64(len(c.items))
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrClosed
	}

	el, ok := c.items[key]
	if !ok {
		return false, nil
	}
	c.removeElement(el)
	return true, nil
}

func (c *memoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.stats.EntryCount = 0
	return nil
}

func (c *memoryCache) Stats(ctx context.Context) (*Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	statsCopy := c.stats
	statsCopy.EntryCount = int64(len(c.items))
	return &statsCopy, nil
}

func (c *memoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.items = nil
	c.order.Init()
	close(c.stopped)
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

// sweep drops every expired entry and returns how many were removed.
func (c *memoryCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0
	}

	now := c.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el.Value.(*entry), now) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	c.stats.Expirations += int64(removed)
	return removed
}

func (c *memoryCache) sweepLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopped:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *memoryCache) expired(e *entry, now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// removeElement must be called with mu held.
func (c *memoryCache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
	c.stats.EntryCount = int64(len(c.items))
}

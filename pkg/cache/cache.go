// Package cache provides the thread-safe local cache that sits in front of the
// product repository. Entries are bounded by count, evicted in LRU or FIFO
// order, and expire after a TTL.
//
// Package cache 提供位于产品仓库前面的线程安全本地缓存。
// 条目数量有上限，按LRU或FIFO顺序淘汰，并在TTL后过期。
package cache

import (
	"context"
	"time"
)

// ICache is a keyed store of arbitrary values with per-entry expiry.
// All methods are safe for concurrent use.
//
// ICache 是带有按条目过期的键值缓存。所有方法都可以并发调用。
type ICache interface {
	// Get returns the value stored under key. Missing and expired entries
	// yield (nil, false, nil).
	//
	// Get 返回键对应的值。缺失或过期的条目返回 (nil, false, nil)。
	Get(ctx context.Context, key string) (interface{}, bool, error)

	// Set stores value under key. A zero ttl selects the configured default;
	// a negative ttl means the entry never expires.
	//
	// Set 存储值。ttl为0时使用默认TTL；ttl为负数时条目永不过期。
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes key and reports whether it was present.
	Delete(ctx context.Context, key string) (bool, error)

	// Clear drops every entry. Counters are kept.
	//
	// Clear 删除所有条目，统计计数保留。
	Clear(ctx context.Context) error

	// Stats returns a snapshot of the cache counters.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases background resources. The cache must not be used afterwards.
	Close() error
}

// Stats represents cache statistics.
// These counters are collected during cache operations and are exported
// alongside the service metrics.
//
// Stats 表示缓存统计信息。
// 这些计数在缓存操作期间收集，并与服务指标一起导出。
type Stats struct {
	// EntryCount is the current number of entries in the cache
	// EntryCount 是缓存中当前的条目数量
	EntryCount int64

	// Hits is the number of successful cache retrievals
	// Hits 是成功的缓存检索次数
	Hits int64

	// Misses is the number of cache retrievals where the key was not found
	// Misses 是未找到键的缓存检索次数
	Misses int64

	// Evictions is the number of entries removed due to capacity constraints
	// Evictions 是由于容量限制而删除的条目数
	Evictions int64

	// Expirations is the number of entries dropped because their TTL passed
	// Expirations 是因TTL到期而删除的条目数
	Expirations int64
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

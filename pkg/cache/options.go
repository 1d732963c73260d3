package cache

import "time"

// Option is a function that configures a Config.
//
// Option 是一个配置Config的函数。
type Option func(*Config)

// WithMaxEntryCount sets the maximum number of entries in the cache.
// If set to 0, there is no limit on the number of entries.
//
// WithMaxEntryCount 设置缓存中的最大条目数。
// 如果设置为0，则条目数量没有限制。
func WithMaxEntryCount(count int) Option {
	return func(c *Config) {
		c.MaxEntries = count
	}
}

// WithTTL sets the default time-to-live for cache entries.
//
// WithTTL 设置缓存条目的默认生存时间。
func WithTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.DefaultTTL = ttl
	}
}

// WithEviction sets the eviction policy ("lru" or "fifo").
//
// WithEviction 设置淘汰策略（"lru" 或 "fifo"）。
func WithEviction(policy string) Option {
	return func(c *Config) {
		c.EvictionPolicy = policy
	}
}

// WithCleanupInterval sets the interval of the background expiry sweep.
//
// WithCleanupInterval 设置后台过期清理的间隔。
func WithCleanupInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.CleanupInterval = interval
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Clock = now
	}
}

// NewWithOptions creates a new cache with the given options applied on top of
// NewDefaultConfig.
//
// NewWithOptions 在默认配置的基础上应用给定选项创建新的缓存。
func NewWithOptions(name string, options ...Option) (ICache, error) {
	config := NewDefaultConfig()
	config.Name = name

	for _, option := range options {
		option(config)
	}

	return New(config)
}

package cache

import (
	"fmt"
	"time"
)

// Eviction policies.
const (
	PolicyLRU  = "lru"
	PolicyFIFO = "fifo"
)

// Config defines the configuration options for a cache instance.
//
// Config 定义缓存实例的配置选项。
type Config struct {
	// Name of the cache instance, used in logs
	// 缓存实例的名称，用于日志记录
	Name string `json:"name" yaml:"name"`

	// MaxEntries bounds the entry count; 0 means unbounded
	// MaxEntries 限制条目数量；0 表示无限制
	MaxEntries int `json:"max_entries" yaml:"max_entries"`

	// DefaultTTL applies when Set is called with ttl 0; 0 means no expiry
	// DefaultTTL 在 Set 的 ttl 为 0 时使用；0 表示不过期
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl"`

	// EvictionPolicy is PolicyLRU or PolicyFIFO
	// EvictionPolicy 为 PolicyLRU 或 PolicyFIFO
	EvictionPolicy string `json:"eviction_policy" yaml:"eviction_policy"`

	// CleanupInterval is how often expired entries are swept; 0 disables the sweeper
	// CleanupInterval 是清理过期条目的间隔；0 表示禁用后台清理
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval"`

	// Clock returns the current time. Tests replace it.
	Clock func() time.Time `json:"-" yaml:"-"`
}

// NewDefaultConfig returns a Config with sensible default values.
//
// NewDefaultConfig 返回具有合理默认值的Config。
func NewDefaultConfig() *Config {
	return &Config{
		Name:            "hivestore",
		MaxEntries:      1024,
		DefaultTTL:      5 * time.Minute,
		EvictionPolicy:  PolicyLRU,
		CleanupInterval: time.Minute,
		Clock:           time.Now,
	}
}

// Validate checks if the configuration is valid.
//
// Validate 检查配置是否有效。
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("cache name cannot be empty")
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("max entries cannot be negative")
	}
	if c.DefaultTTL < 0 {
		return fmt.Errorf("default ttl cannot be negative")
	}
	switch c.EvictionPolicy {
	case PolicyLRU, PolicyFIFO:
	default:
		return fmt.Errorf("invalid eviction policy: %s", c.EvictionPolicy)
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("cleanup interval cannot be negative")
	}
	return nil
}

// Package configs provides configuration structures and utilities for the
// hivestore server. It offers mechanisms for loading, validating, and saving
// configuration from YAML and JSON files, and a Viper-backed variant with
// environment overrides and hot reloading.
//
// Package configs 提供hivestore服务器的配置结构和工具。
// 它提供从YAML和JSON文件加载、验证和保存配置的机制，
// 以及支持环境变量覆盖和热重载的Viper版本。
package configs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for hivestore.
// It is organized into one section per component.
//
// Config 表示hivestore的完整配置，每个组件对应一个部分。
type Config struct {
	// Server configures the HTTP listener and sessions
	// Server 配置HTTP监听和会话
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`

	// Catalog selects the product dataset
	// Catalog 选择产品数据集
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`

	// Latency configures the simulated repository delays
	// Latency 配置模拟的仓库延迟
	Latency LatencyConfig `json:"latency" yaml:"latency" mapstructure:"latency"`

	// Cache configures the listing cache in front of the repository
	// Cache 配置仓库前面的列表缓存
	Cache CacheConfig `json:"cache" yaml:"cache" mapstructure:"cache"`

	// Storage selects the key-value engine behind carts and search history
	// Storage 选择购物车和搜索历史使用的键值引擎
	Storage StorageConfig `json:"storage" yaml:"storage" mapstructure:"storage"`

	// Cart configures cart persistence
	// Cart 配置购物车持久化
	Cart CartConfig `json:"cart" yaml:"cart" mapstructure:"cart"`

	// Search configures search history persistence
	// Search 配置搜索历史持久化
	Search SearchConfig `json:"search" yaml:"search" mapstructure:"search"`

	// Metrics configures metrics collection and exposition
	// Metrics 配置指标收集和暴露
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`

	// Log configures the logging behavior
	// Log 配置日志行为
	Log LogConfig `json:"log" yaml:"log" mapstructure:"log"`

	// Extensions configures optional features like hot reloading
	// Extensions 配置可选功能，如热重载
	Extensions ExtensionsConfig `json:"extensions" yaml:"extensions" mapstructure:"extensions"`
}

// ServerConfig contains settings for the HTTP server.
//
// ServerConfig 包含HTTP服务器的设置。
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080"
	// Addr 是监听地址
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// Mode is the gin mode ("debug", "release", "test")
	// Mode 是gin的运行模式
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`

	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown
	// ShutdownTimeout 限制优雅关闭的时间
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// SessionCookie is the name of the session cookie
	// SessionCookie 是会话cookie的名称
	SessionCookie string `json:"session_cookie" yaml:"session_cookie" mapstructure:"session_cookie"`

	// SessionMaxAge is the cookie lifetime
	// SessionMaxAge 是cookie的有效期
	SessionMaxAge time.Duration `json:"session_max_age" yaml:"session_max_age" mapstructure:"session_max_age"`

	// MaxSessions bounds the sessions kept in memory; older ones are
	// rebuilt from storage on their next request
	// MaxSessions 限制内存中保留的会话数量；较旧的会话在下次请求时从存储重建
	MaxSessions int `json:"max_sessions" yaml:"max_sessions" mapstructure:"max_sessions"`
}

// CatalogConfig contains settings for the product dataset.
type CatalogConfig struct {
	// File is a YAML or JSON product file; empty selects the built-in seed
	// File 是YAML或JSON产品文件；为空时使用内置数据
	File string `json:"file" yaml:"file" mapstructure:"file"`
}

// DelayConfig describes one simulated delay.
// Mode "fixed" sleeps Min; mode "random" sleeps uniformly in [Min, Max].
//
// DelayConfig 描述一种模拟延迟。
type DelayConfig struct {
	Mode string        `json:"mode" yaml:"mode" mapstructure:"mode"` // none, fixed, random
	Min  time.Duration `json:"min" yaml:"min" mapstructure:"min"`
	Max  time.Duration `json:"max" yaml:"max" mapstructure:"max"`
}

// LatencyConfig contains the simulated repository delays.
//
// LatencyConfig 包含模拟的仓库延迟。
type LatencyConfig struct {
	// Lookup applies to listing queries and id/slug lookups
	// Lookup 应用于列表查询和按id或slug查找
	Lookup DelayConfig `json:"lookup" yaml:"lookup" mapstructure:"lookup"`

	// Listing applies to related, category, featured and on-sale lists
	// Listing 应用于相关、分类、精选和特价列表
	Listing DelayConfig `json:"listing" yaml:"listing" mapstructure:"listing"`
}

// CacheConfig contains settings for the listing cache.
//
// CacheConfig 包含列表缓存的设置。
type CacheConfig struct {
	// Enable determines whether the cache is active
	// Enable 确定缓存是否处于活动状态
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// Name is the identifier for this cache instance
	// Name 是此缓存实例的标识符
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// MaxEntries is the maximum number of items the cache can hold (0 = unlimited)
	// MaxEntries 是缓存可以容纳的最大项目数（0 = 无限制）
	MaxEntries int `json:"max_entries" yaml:"max_entries" mapstructure:"max_entries"`

	// DefaultTTL is the default time-to-live for cache entries
	// DefaultTTL 是缓存条目的默认生存时间
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl" mapstructure:"default_ttl"`

	// CleanupInterval is how often expired items are removed
	// CleanupInterval 是清除过期项目的频率
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval" mapstructure:"cleanup_interval"`

	// EvictionPolicy is "lru" or "fifo"
	// EvictionPolicy 是"lru"或"fifo"
	EvictionPolicy string `json:"eviction_policy" yaml:"eviction_policy" mapstructure:"eviction_policy"`
}

// StorageConfig contains settings for the key-value engine.
//
// StorageConfig 包含键值引擎的设置。
type StorageConfig struct {
	// Engine is one of "memory", "file", "sqlite", "redis"
	// Engine 是"memory"、"file"、"sqlite"、"redis"之一
	Engine string `json:"engine" yaml:"engine" mapstructure:"engine"`

	// Dir is the directory of the file engine
	// Dir 是文件引擎的目录
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// SQLitePath is the database file of the sqlite engine
	// SQLitePath 是sqlite引擎的数据库文件
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path" mapstructure:"sqlite_path"`

	Redis RedisConfig `json:"redis" yaml:"redis" mapstructure:"redis"`
}

// RedisConfig contains settings for the redis engine.
type RedisConfig struct {
	Addr     string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	Password string        `json:"password" yaml:"password" mapstructure:"password"`
	DB       int           `json:"db" yaml:"db" mapstructure:"db"`
	Prefix   string        `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// CartConfig contains settings for cart persistence.
type CartConfig struct {
	// Key is the storage key prefix of cart snapshots
	// Key 是购物车快照的存储键前缀
	Key string `json:"key" yaml:"key" mapstructure:"key"`

	// Codec is "json" or "yaml"
	// Codec 是"json"或"yaml"
	Codec string `json:"codec" yaml:"codec" mapstructure:"codec"`
}

// SearchConfig contains settings for search history persistence.
type SearchConfig struct {
	HistoryKey string `json:"history_key" yaml:"history_key" mapstructure:"history_key"`
	Codec      string `json:"codec" yaml:"codec" mapstructure:"codec"`
}

// MetricsConfig contains settings for metrics collection.
//
// MetricsConfig 包含指标收集的设置。
type MetricsConfig struct {
	// Enable determines whether the /metrics endpoint is served
	// Enable 确定是否提供/metrics端点
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// Level controls the detail of metrics collection ("basic", "detailed", "disabled")
	// Level 控制指标收集的详细程度（"basic"、"detailed"、"disabled"）
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Path is the route of the Prometheus endpoint
	// Path 是Prometheus端点的路由
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Prefix is prepended to every exported metric name
	// Prefix 添加到每个导出指标名称之前
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
}

// LogConfig contains settings for logging.
//
// LogConfig 包含日志记录的设置。
type LogConfig struct {
	// Level sets the minimum log level ("debug", "info", "warn", "error")
	// Level 设置最低日志级别（"debug"、"info"、"warn"、"error"）
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format specifies the log format ("console", "json")
	// Format 指定日志格式（"console"、"json"）
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output determines where logs are written ("stdout", "stderr", "file")
	// Output 确定日志写入的位置（"stdout"、"stderr"、"file"）
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// FilePath is the path to the log file when Output is "file"
	// FilePath 是当Output为"file"时的日志文件路径
	FilePath string `json:"file_path" yaml:"file_path" mapstructure:"file_path"`
}

// ExtensionsConfig contains settings for extensions.
//
// ExtensionsConfig 包含扩展的设置。
type ExtensionsConfig struct {
	// HotReload contains settings for dynamic configuration reloading
	// HotReload 包含动态配置重新加载的设置
	HotReload HotReloadConfig `json:"hot_reload" yaml:"hot_reload" mapstructure:"hot_reload"`
}

// HotReloadConfig contains settings for hot reloading.
//
// HotReloadConfig 包含热重载的设置。
type HotReloadConfig struct {
	// Enable determines whether hot reloading is active
	// Enable 确定是否启用热重载
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// WatchInterval is how often to poll for changes; zero uses file notifications
	// WatchInterval 是轮询更改的频率；为0时使用文件通知
	WatchInterval time.Duration `json:"watch_interval" yaml:"watch_interval" mapstructure:"watch_interval"`
}

// DefaultConfig returns a new Config with default values.
//
// DefaultConfig 返回具有默认值的新Config。
//
// Returns:
//   - *Config: A new configuration instance with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			SessionCookie:   "hive_session",
			SessionMaxAge:   30 * 24 * time.Hour,
			MaxSessions:     10000,
		},
		Latency: LatencyConfig{
			Lookup:  DelayConfig{Mode: "none"},
			Listing: DelayConfig{Mode: "none"},
		},
		Cache: CacheConfig{
			Enable:          true,
			Name:            "hivestore",
			MaxEntries:      1024,
			DefaultTTL:      5 * time.Minute,
			CleanupInterval: time.Minute,
			EvictionPolicy:  "lru",
		},
		Storage: StorageConfig{
			Engine:     "memory",
			Dir:        "data",
			SQLitePath: "hivestore.db",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "hivestore:",
			},
		},
		Cart: CartConfig{
			Key:   "cart-storage",
			Codec: "json",
		},
		Search: SearchConfig{
			HistoryKey: "royal-honey-search-history",
			Codec:      "json",
		},
		Metrics: MetricsConfig{
			Enable: true,
			Level:  "basic",
			Path:   "/metrics",
			Prefix: "hivestore",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Extensions: ExtensionsConfig{
			HotReload: HotReloadConfig{
				Enable: false,
			},
		},
	}
}

// LoadFromFile loads configuration from a file.
// It supports both YAML and JSON formats, automatically
// detecting the format based on the file extension.
// Missing fields keep their default values.
//
// LoadFromFile 从文件加载配置。
// 它支持YAML和JSON格式，根据文件扩展名自动检测格式。缺失的字段保留默认值。
//
// Parameters:
//   - filename: Path to the configuration file
//
// Returns:
//   - *Config: The loaded configuration
//   - error: An error if loading fails
func LoadFromFile(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer file.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return LoadFromReader(file, ext)
}

// LoadFromReader loads configuration from an io.Reader.
//
// LoadFromReader 从io.Reader加载配置。
//
// Parameters:
//   - r: The reader providing the configuration data
//   - format: The format of the data ("json", "yaml", or "yml")
//
// Returns:
//   - *Config: The loaded configuration
//   - error: An error if loading fails
func LoadFromReader(r io.Reader, format string) (*Config, error) {
	config := DefaultConfig()
	var err error

	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(config)
	case "json":
		err = json.NewDecoder(r).Decode(config)
	default:
		return nil, fmt.Errorf("unsupported configuration format: %s", format)
	}

	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
// The format is selected from the file extension.
//
// SaveToFile 将配置保存到文件，格式由文件扩展名决定。
func (c *Config) SaveToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".yaml", ".yml":
		encoder := yaml.NewEncoder(file)
		defer encoder.Close()
		err = encoder.Encode(c)
	case ".json":
		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(c)
	default:
		return fmt.Errorf("unsupported configuration file format: %s", ext)
	}

	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	return nil
}

// Validate validates the configuration and returns the first problem found.
//
// Validate 验证配置并返回发现的第一个问题。
//
// Returns:
//   - error: An error describing the validation failure, or nil if valid
func (c *Config) Validate() error {
	// Validate server settings
	// 验证服务器设置
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be one of: debug, release, test")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must be non-negative")
	}
	if c.Server.SessionCookie == "" {
		return fmt.Errorf("server.session_cookie must not be empty")
	}
	if c.Server.MaxSessions <= 0 {
		return fmt.Errorf("server.max_sessions must be positive")
	}

	// Validate latency settings
	// 验证延迟设置
	if err := c.Latency.Lookup.validate("latency.lookup"); err != nil {
		return err
	}
	if err := c.Latency.Listing.validate("latency.listing"); err != nil {
		return err
	}

	// Validate cache settings
	// 验证缓存设置
	if c.Cache.Enable {
		if c.Cache.MaxEntries < 0 {
			return fmt.Errorf("cache.max_entries must be non-negative")
		}
		if c.Cache.DefaultTTL < 0 {
			return fmt.Errorf("cache.default_ttl must be non-negative")
		}
		if c.Cache.CleanupInterval != 0 && c.Cache.CleanupInterval < time.Second {
			return fmt.Errorf("cache.cleanup_interval must be zero or at least 1 second")
		}
		switch c.Cache.EvictionPolicy {
		case "lru", "fifo":
		default:
			return fmt.Errorf("cache.eviction_policy must be one of: lru, fifo")
		}
	}

	// Validate storage settings
	// 验证存储设置
	switch c.Storage.Engine {
	case "memory":
	case "file":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir must be specified when storage.engine is 'file'")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path must be specified when storage.engine is 'sqlite'")
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr must be specified when storage.engine is 'redis'")
		}
		if c.Storage.Redis.TTL < 0 {
			return fmt.Errorf("storage.redis.ttl must be non-negative")
		}
	default:
		return fmt.Errorf("storage.engine must be one of: memory, file, sqlite, redis")
	}

	// Validate cart and search settings
	// 验证购物车和搜索设置
	if c.Cart.Key == "" {
		return fmt.Errorf("cart.key must not be empty")
	}
	if !validCodec(c.Cart.Codec) {
		return fmt.Errorf("cart.codec must be one of: json, yaml")
	}
	if c.Search.HistoryKey == "" {
		return fmt.Errorf("search.history_key must not be empty")
	}
	if !validCodec(c.Search.Codec) {
		return fmt.Errorf("search.codec must be one of: json, yaml")
	}

	// Validate metrics settings
	// 验证指标设置
	switch c.Metrics.Level {
	case "disabled", "basic", "detailed":
	default:
		return fmt.Errorf("metrics.level must be one of: disabled, basic, detailed")
	}
	if c.Metrics.Enable && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/'")
	}

	// Validate log settings
	// 验证日志设置
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be one of: console, json")
	}
	switch c.Log.Output {
	case "stdout", "stderr", "file":
	default:
		return fmt.Errorf("log.output must be one of: stdout, stderr, file")
	}
	if c.Log.Output == "file" && c.Log.FilePath == "" {
		return fmt.Errorf("log.file_path must be specified when log.output is 'file'")
	}

	// Validate extensions settings
	// 验证扩展设置
	if hr := c.Extensions.HotReload; hr.Enable && hr.WatchInterval != 0 && hr.WatchInterval < time.Second {
		return fmt.Errorf("extensions.hot_reload.watch_interval must be zero or at least 1 second")
	}

	return nil
}

func (d DelayConfig) validate(section string) error {
	switch d.Mode {
	case "none", "":
		return nil
	case "fixed":
		if d.Min < 0 {
			return fmt.Errorf("%s.min must be non-negative", section)
		}
	case "random":
		if d.Min < 0 || d.Max < d.Min {
			return fmt.Errorf("%s requires 0 <= min <= max", section)
		}
	default:
		return fmt.Errorf("%s.mode must be one of: none, fixed, random", section)
	}
	return nil
}

func validCodec(name string) bool {
	return name == "json" || name == "yaml"
}

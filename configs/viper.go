package configs

import (
	"bytes"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides. The key server.addr is
// read from HIVESTORE_SERVER_ADDR.
const EnvPrefix = "HIVESTORE"

// ViperConfig wraps a Config with Viper functionality for environment
// overrides and hot reloading. It provides thread-safe access to the current
// configuration and notifies subscribers when the file changes.
//
// ViperConfig 使用Viper功能包装Config，支持环境变量覆盖和热重载。
// 它提供对当前配置的线程安全访问，并在文件更改时通知订阅者。
type ViperConfig struct {
	config      *Config         // Current configuration / 当前配置
	viper       *viper.Viper    // Viper instance for configuration management / 用于配置管理的Viper实例
	configFile  string          // Path to the configuration file / 配置文件路径
	mu          sync.RWMutex    // Guards config and subscribers / 保护config和subscribers
	reloadMu    sync.Mutex      // Serializes access to viper / 串行化对viper的访问
	subscribers []func(*Config) // Notified on config changes / 配置更改时要通知的订阅者列表
	logger      *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// ViperOption configures a ViperConfig.
type ViperOption func(*ViperConfig)

// WithViperLogger sets the logger used to report reloads.
func WithViperLogger(l *zap.Logger) ViperOption {
	return func(vc *ViperConfig) { vc.logger = l }
}

// NewViperConfig creates a new ViperConfig.
// Values come from, in increasing priority: DefaultConfig, configFile (when
// not empty) and HIVESTORE_* environment variables. The result is validated.
//
// NewViperConfig 创建一个新的ViperConfig。
// 配置值的优先级从低到高为：DefaultConfig、configFile（非空时）和HIVESTORE_*环境变量。
//
// Parameters:
//   - configFile: Path to the configuration file, may be empty
//
// Returns:
//   - *ViperConfig: A new ViperConfig instance
//   - error: An error if loading or validation fails
func NewViperConfig(configFile string, opts ...ViperOption) (*ViperConfig, error) {
	v := viper.New()

	// Register every key so environment overrides apply to keys absent from the file
	// 注册所有键，使环境变量也能覆盖文件中没有的键
	if err := setDefaults(v); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType(strings.TrimPrefix(filepath.Ext(configFile), "."))

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	vc := &ViperConfig{
		viper:       v,
		configFile:  configFile,
		subscribers: make([]func(*Config), 0),
		logger:      zap.NewNop(),
		stop:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(vc)
	}

	config, err := vc.decode()
	if err != nil {
		return nil, err
	}
	vc.config = config
	return vc, nil
}

// setDefaults registers DefaultConfig as viper defaults.
func setDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	defaults := viper.New()
	defaults.SetConfigType("yaml")
	if err := defaults.ReadConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to read default config: %w", err)
	}
	for _, key := range defaults.AllKeys() {
		v.SetDefault(key, defaults.Get(key))
	}
	return nil
}

// decode unmarshals and validates the current viper state.
func (vc *ViperConfig) decode() (*Config, error) {
	config := DefaultConfig()
	if err := vc.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// EnableHotReload watches the configuration file with fsnotify. When it
// changes, the configuration is reloaded and all subscribers are notified.
// An invalid new file is logged and ignored.
//
// EnableHotReload 使用fsnotify监视配置文件。文件更改时重新加载配置并通知所有订阅者。
// 无效的新文件会被记录并忽略。
func (vc *ViperConfig) EnableHotReload() {
	if vc.configFile == "" {
		return
	}
	vc.viper.OnConfigChange(func(e fsnotify.Event) {
		vc.logger.Info("config file changed", zap.String("file", e.Name), zap.String("op", e.Op.String()))

		vc.reloadMu.Lock()
		config, err := vc.decode()
		vc.reloadMu.Unlock()
		if err != nil {
			vc.logger.Warn("ignoring config change", zap.Error(err))
			return
		}
		vc.apply(config)
	})
	vc.viper.WatchConfig()
}

// Reload re-reads the configuration file and, when the result differs from
// the current configuration, applies it and notifies subscribers.
// It reports whether anything changed.
//
// Reload 重新读取配置文件，如果结果与当前配置不同则应用并通知订阅者。
func (vc *ViperConfig) Reload() (bool, error) {
	vc.reloadMu.Lock()
	if vc.configFile != "" {
		if err := vc.viper.ReadInConfig(); err != nil {
			vc.reloadMu.Unlock()
			return false, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	config, err := vc.decode()
	vc.reloadMu.Unlock()
	if err != nil {
		return false, err
	}

	if configsEqual(vc.Get(), config) {
		return false, nil
	}
	vc.apply(config)
	return true, nil
}

func (vc *ViperConfig) apply(config *Config) {
	vc.mu.Lock()
	vc.config = config
	subscribers := make([]func(*Config), len(vc.subscribers))
	copy(subscribers, vc.subscribers)
	vc.mu.Unlock()

	for _, subscriber := range subscribers {
		subscriber(config)
	}
}

// Subscribe adds a subscriber that will be notified when the configuration changes.
// The subscriber function is called with the new configuration as its argument.
//
// Subscribe 添加一个在配置更改时将被通知的订阅者。
func (vc *ViperConfig) Subscribe(subscriber func(*Config)) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.subscribers = append(vc.subscribers, subscriber)
}

// Get returns the current configuration. The returned value must not be modified.
//
// Get 返回当前配置，返回值不得修改。
func (vc *ViperConfig) Get() *Config {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.config
}

// ConfigFile returns the path the configuration was read from.
func (vc *ViperConfig) ConfigFile() string {
	return vc.configFile
}

// Close stops a polling watcher started by WatchPeriodically.
func (vc *ViperConfig) Close() {
	vc.stopOnce.Do(func() { close(vc.stop) })
}

// WatchPeriodically polls the configuration file every interval.
// It is an alternative to EnableHotReload for file systems without
// reliable change notifications. Close stops it.
//
// WatchPeriodically 每隔interval轮询配置文件。
// 这是在文件系统通知不可靠的环境中EnableHotReload的替代方案。
func (vc *ViperConfig) WatchPeriodically(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-vc.stop:
				return
			case <-ticker.C:
				changed, err := vc.Reload()
				if err != nil {
					vc.logger.Warn("config poll failed", zap.Error(err))
					continue
				}
				if changed {
					vc.logger.Info("config file changed", zap.String("file", vc.configFile))
				}
			}
		}
	}()
}

// LoadViperConfig loads a configuration using Viper and starts watching it
// as configured by extensions.hot_reload.
//
// LoadViperConfig 使用Viper加载配置，并根据extensions.hot_reload启动监视。
//
// Parameters:
//   - configFile: Path to the configuration file, may be empty
//
// Returns:
//   - *ViperConfig: A new ViperConfig instance
//   - error: An error if loading fails
func LoadViperConfig(configFile string, opts ...ViperOption) (*ViperConfig, error) {
	vc, err := NewViperConfig(configFile, opts...)
	if err != nil {
		return nil, err
	}

	if hr := vc.Get().Extensions.HotReload; hr.Enable && configFile != "" {
		if hr.WatchInterval > 0 {
			vc.WatchPeriodically(hr.WatchInterval)
		} else {
			vc.EnableHotReload()
		}
	}

	return vc, nil
}

// configsEqual checks if two configs are equal.
//
// configsEqual 检查两个配置是否相等。
func configsEqual(c1, c2 *Config) bool {
	return reflect.DeepEqual(c1, c2)
}

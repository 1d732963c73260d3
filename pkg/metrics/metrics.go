// Package metrics provides storefront runtime metrics collection and reporting.
// Package metrics 提供商店运行时指标采集和输出功能。
//
// Counters are updated atomically and may be shared by every component.
// A nil *Metrics is valid and records nothing, so components can take an
// optional collector without extra checks.
//
// 计数器以原子方式更新，可以被所有组件共享。
// nil *Metrics 是有效的且不记录任何内容。
package metrics

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Level defines the metrics collection level.
// Level 定义指标采集级别。
type Level int32

const (
	// Disabled means metrics collection is turned off.
	// Disabled 表示禁用指标采集。
	Disabled Level = iota

	// Basic enables the counters.
	// Basic 启用计数器。
	Basic

	// Detailed additionally records the request latency histogram.
	// Detailed 额外记录请求延迟直方图。
	Detailed
)

// String returns the configuration name of the level.
func (l Level) String() string {
	switch l {
	case Disabled:
		return "disabled"
	case Basic:
		return "basic"
	case Detailed:
		return "detailed"
	}
	return fmt.Sprintf("Level(%d)", int32(l))
}

// ParseLevel parses "disabled", "basic" or "detailed".
// ParseLevel 解析级别名称。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "disabled", "off", "none":
		return Disabled, nil
	case "basic", "":
		return Basic, nil
	case "detailed":
		return Detailed, nil
	}
	return Disabled, fmt.Errorf("unknown metrics level: %q", s)
}

// Metrics is the storefront metrics collector.
//
// Metrics 是商店指标收集器。
type Metrics struct {
	level atomic.Int32

	// Catalog
	// 目录相关指标
	queries          atomic.Uint64 // product listing queries / 产品列表查询次数
	lookups          atomic.Uint64 // id/slug lookups / 按id或slug查找次数
	validationErrors atomic.Uint64 // rejected inputs / 输入校验失败次数
	notFound         atomic.Uint64 // unresolved lookups / 未找到次数
	cacheHits        atomic.Uint64 // query cache hits / 查询缓存命中次数
	cacheMisses      atomic.Uint64 // query cache misses / 查询缓存未命中次数
	searches         atomic.Uint64 // ranked searches / 搜索次数

	// Client state
	// 客户端状态相关指标
	cartMutations      atomic.Uint64 // cart writes / 购物车变更次数
	storageReadErrors  atomic.Uint64 // corrupt or unreadable payloads / 读取失败次数
	storageWriteErrors atomic.Uint64 // failed persists / 写入失败次数

	// HTTP
	requests      atomic.Uint64 // served requests / 请求数
	serverErrors  atomic.Uint64 // 5xx responses / 5xx 响应数
	clientErrors  atomic.Uint64 // 4xx responses / 4xx 响应数
	latency       *Histogram
	startedAtUnix int64
}

// Config defines metrics configuration options.
// Config 定义指标配置选项。
type Config struct {
	// Level determines the detail level of metrics collection
	// Level 指定指标采集的详细程度
	Level Level

	// LatencyBuckets overrides DefaultLatencyBuckets
	// LatencyBuckets 覆盖默认的延迟桶
	LatencyBuckets []time.Duration
}

// New creates a new metrics collector. A nil config means Basic.
//
// New 创建一个新的指标收集器。
func New(config *Config) *Metrics {
	if config == nil {
		config = &Config{Level: Basic}
	}
	m := &Metrics{
		latency:       NewHistogram(config.LatencyBuckets),
		startedAtUnix: time.Now().Unix(),
	}
	m.level.Store(int32(config.Level))
	return m
}

// Level returns the current collection level.
func (m *Metrics) Level() Level {
	if m == nil {
		return Disabled
	}
	return Level(m.level.Load())
}

// SetLevel changes the collection level at runtime.
// SetLevel 在运行时修改采集级别。
func (m *Metrics) SetLevel(l Level) {
	if m == nil {
		return
	}
	m.level.Store(int32(l))
}

func (m *Metrics) enabled() bool {
	return m != nil && Level(m.level.Load()) != Disabled
}

func (m *Metrics) inc(c *atomic.Uint64) {
	if m.enabled() {
		c.Add(1)
	}
}

// RecordQuery records a product listing query.
func (m *Metrics) RecordQuery() {
	if m != nil {
		m.inc(&m.queries)
	}
}

// RecordLookup records an id or slug lookup.
func (m *Metrics) RecordLookup() {
	if m != nil {
		m.inc(&m.lookups)
	}
}

// RecordValidationError records rejected caller input.
func (m *Metrics) RecordValidationError() {
	if m != nil {
		m.inc(&m.validationErrors)
	}
}

// RecordNotFound records a lookup that resolved to nothing.
func (m *Metrics) RecordNotFound() {
	if m != nil {
		m.inc(&m.notFound)
	}
}

// RecordCacheHit records a query cache hit.
//
// RecordCacheHit 记录查询缓存命中。
func (m *Metrics) RecordCacheHit() {
	if m != nil {
		m.inc(&m.cacheHits)
	}
}

// RecordCacheMiss records a query cache miss.
//
// RecordCacheMiss 记录查询缓存未命中。
func (m *Metrics) RecordCacheMiss() {
	if m != nil {
		m.inc(&m.cacheMisses)
	}
}

// RecordSearch records a ranked search.
func (m *Metrics) RecordSearch() {
	if m != nil {
		m.inc(&m.searches)
	}
}

// RecordCartMutation records a cart state change.
func (m *Metrics) RecordCartMutation() {
	if m != nil {
		m.inc(&m.cartMutations)
	}
}

// RecordStorageReadError records a persisted payload that could not be read
// or decoded.
//
// RecordStorageReadError 记录无法读取或解码的持久化数据。
func (m *Metrics) RecordStorageReadError() {
	if m != nil {
		m.inc(&m.storageReadErrors)
	}
}

// RecordStorageWriteError records a failed persist.
func (m *Metrics) RecordStorageWriteError() {
	if m != nil {
		m.inc(&m.storageWriteErrors)
	}
}

// RecordRequest records a served HTTP request.
// The latency histogram is only fed at the Detailed level.
//
// RecordRequest 记录一次HTTP请求。仅在 Detailed 级别记录延迟直方图。
func (m *Metrics) RecordRequest(status int, elapsed time.Duration) {
	if !m.enabled() {
		return
	}
	m.requests.Add(1)
	switch {
	case status >= 500:
		m.serverErrors.Add(1)
	case status >= 400:
		m.clientErrors.Add(1)
	}
	if Level(m.level.Load()) == Detailed {
		m.latency.Observe(elapsed)
	}
}

// Snapshot is a point-in-time copy of every counter.
// Snapshot 是所有计数器的时间点副本。
type Snapshot struct {
	Level              string             `json:"level"`
	Queries            uint64             `json:"queries"`
	Lookups            uint64             `json:"lookups"`
	ValidationErrors   uint64             `json:"validation_errors"`
	NotFound           uint64             `json:"not_found"`
	CacheHits          uint64             `json:"cache_hits"`
	CacheMisses        uint64             `json:"cache_misses"`
	CacheHitRatio      float64            `json:"cache_hit_ratio"`
	Searches           uint64             `json:"searches"`
	CartMutations      uint64             `json:"cart_mutations"`
	StorageReadErrors  uint64             `json:"storage_read_errors"`
	StorageWriteErrors uint64             `json:"storage_write_errors"`
	Requests           uint64             `json:"requests"`
	ClientErrors       uint64             `json:"client_errors"`
	ServerErrors       uint64             `json:"server_errors"`
	Latency            *HistogramSnapshot `json:"latency,omitempty"`
	UptimeSeconds      int64              `json:"uptime_seconds"`
}

// GetSnapshot returns the current counters. A nil collector yields a zero snapshot.
//
// GetSnapshot 返回当前计数。
func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{Level: Disabled.String()}
	}

	s := Snapshot{
		Level:              m.Level().String(),
		Queries:            m.queries.Load(),
		Lookups:            m.lookups.Load(),
		ValidationErrors:   m.validationErrors.Load(),
		NotFound:           m.notFound.Load(),
		CacheHits:          m.cacheHits.Load(),
		CacheMisses:        m.cacheMisses.Load(),
		Searches:           m.searches.Load(),
		CartMutations:      m.cartMutations.Load(),
		StorageReadErrors:  m.storageReadErrors.Load(),
		StorageWriteErrors: m.storageWriteErrors.Load(),
		Requests:           m.requests.Load(),
		ClientErrors:       m.clientErrors.Load(),
		ServerErrors:       m.serverErrors.Load(),
		UptimeSeconds:      time.Now().Unix() - m.startedAtUnix,
	}
	if total := s.CacheHits + s.CacheMisses; total > 0 {
		s.CacheHitRatio = float64(s.CacheHits) / float64(total)
	}
	if m.Level() == Detailed {
		h := m.latency.Snapshot()
		s.Latency = &h
	}
	return s
}

// JSON returns the snapshot encoded as JSON.
func (m *Metrics) JSON() ([]byte, error) {
	return json.Marshal(m.GetSnapshot())
}

// Reset zeroes every counter. The level is kept.
//
// Reset 将所有计数器归零，级别保持不变。
func (m *Metrics) Reset() {
	if m == nil {
		return
	}
	for _, c := range []*atomic.Uint64{
		&m.queries, &m.lookups, &m.validationErrors, &m.notFound,
		&m.cacheHits, &m.cacheMisses, &m.searches, &m.cartMutations,
		&m.storageReadErrors, &m.storageWriteErrors,
		&m.requests, &m.clientErrors, &m.serverErrors,
	} {
		c.Store(0)
	}
	m.latency.Reset()
}

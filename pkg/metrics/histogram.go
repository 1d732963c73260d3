package metrics

import (
	"sort"
	"sync"
	"time"
)

// DefaultLatencyBuckets 请求耗时的默认桶上界
var DefaultLatencyBuckets = []time.Duration{
	time.Millisecond,
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
	time.Second,
	2500 * time.Millisecond,
}

// Histogram 延迟直方图，桶上界按升序排列，超过最后一个上界的值只计入 +Inf
type Histogram struct {
	mu     sync.Mutex
	bounds []time.Duration
	counts []uint64 // 每个桶自身的计数（非累积）
	count  uint64
	sum    time.Duration
	max    time.Duration
}

// HistogramSnapshot 直方图快照，Cumulative 与 Bounds 一一对应
type HistogramSnapshot struct {
	Bounds     []time.Duration `json:"bounds"`
	Cumulative []uint64        `json:"cumulative"`
	Count      uint64          `json:"count"`
	Sum        time.Duration   `json:"sum"`
	Max        time.Duration   `json:"max"`
}

// NewHistogram 创建直方图；bounds 为空时使用 DefaultLatencyBuckets
func NewHistogram(bounds []time.Duration) *Histogram {
	if len(bounds) == 0 {
		bounds = DefaultLatencyBuckets
	}
	sorted := append([]time.Duration(nil), bounds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return &Histogram{
		bounds: sorted,
		counts: make([]uint64, len(sorted)),
	}
}

// Observe 记录一个耗时
func (h *Histogram) Observe(d time.Duration) {
	i := sort.Search(len(h.bounds), func(i int) bool { return d <= h.bounds[i] })

	h.mu.Lock()
	if i < len(h.counts) {
		h.counts[i]++
	}
	h.count++
	h.sum += d
	if d > h.max {
		h.max = d
	}
	h.mu.Unlock()
}

// Snapshot 获取直方图快照
func (h *Histogram) Snapshot() HistogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	cumulative := make([]uint64, len(h.counts))
	var running uint64
	for i, c := range h.counts {
		running += c
		cumulative[i] = running
	}

	return HistogramSnapshot{
		Bounds:     append([]time.Duration(nil), h.bounds...),
		Cumulative: cumulative,
		Count:      h.count,
		Sum:        h.sum,
		Max:        h.max,
	}
}

// Mean 平均耗时
func (s HistogramSnapshot) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / time.Duration(s.Count)
}

// Reset 清空直方图
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.counts {
		h.counts[i] = 0
	}
	h.count = 0
	h.sum = 0
	h.max = 0
}

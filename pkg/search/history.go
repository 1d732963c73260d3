package search

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/yourusername/hivestore/pkg/codec"
	herrors "github.com/yourusername/hivestore/pkg/errors"
	"github.com/yourusername/hivestore/pkg/kv"
	"github.com/yourusername/hivestore/pkg/metrics"
)

const (
	// DefaultHistoryKey is the storage key of the history list.
	DefaultHistoryKey = "royal-honey-search-history"

	// MaxHistory is how many distinct queries are remembered.
	MaxHistory = 5
)

// History is a most-recent-first list of distinct search queries,
// persisted as one encoded list under a single key.
//
// History 是按最近优先排列的不重复搜索词列表，以单个键持久化。
type History struct {
	mu      sync.Mutex
	entries []string

	storage kv.Storage
	codec   codec.Codec
	key     string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithHistoryKey sets the storage key.
func WithHistoryKey(key string) HistoryOption {
	return func(h *History) { h.key = key }
}

// WithHistoryCodec sets the encoding of the stored list.
func WithHistoryCodec(c codec.Codec) HistoryOption {
	return func(h *History) { h.codec = c }
}

// WithHistoryLogger sets the logger.
func WithHistoryLogger(l *zap.Logger) HistoryOption {
	return func(h *History) { h.logger = l }
}

// WithHistoryMetrics sets the metrics collector.
func WithHistoryMetrics(m *metrics.Metrics) HistoryOption {
	return func(h *History) { h.metrics = m }
}

// NewHistory loads the history stored in storage. A missing, unreadable or
// corrupt list yields an empty history; the latter two are logged and counted.
func NewHistory(ctx context.Context, storage kv.Storage, opts ...HistoryOption) *History {
	h := &History{
		storage: storage,
		codec:   codec.DefaultCodec(),
		key:     DefaultHistoryKey,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.entries = h.load(ctx)
	return h
}

func (h *History) load(ctx context.Context) []string {
	data, found, err := h.storage.Get(ctx, h.key)
	if err != nil {
		h.readFailed(err)
		return nil
	}
	if !found {
		return nil
	}

	var entries []string
	if err := h.codec.Unmarshal(data, &entries); err != nil {
		h.readFailed(fmt.Errorf("%w: %v", herrors.ErrCorruptState, err))
		return nil
	}
	if len(entries) > MaxHistory {
		entries = entries[:MaxHistory]
	}
	return entries
}

func (h *History) readFailed(err error) {
	h.metrics.RecordStorageReadError()
	h.logger.Warn("discarding unreadable search history",
		zap.String("key", h.key),
		zap.Error(err),
	)
}

// Entries returns a copy of the remembered queries, most recent first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.entries == nil {
		return []string{}
	}
	return slices.Clone(h.entries)
}

// Save records query as the most recent entry. Blank queries are ignored.
// An equal earlier entry is moved to the front rather than duplicated,
// and the list is capped at MaxHistory.
//
// Save 将查询记录为最新条目，忽略空白查询，去重并限制长度。
func (h *History) Save(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next := make([]string, 0, MaxHistory)
	next = append(next, query)
	for _, e := range h.entries {
		if e != query && len(next) < MaxHistory {
			next = append(next, e)
		}
	}
	h.entries = next

	data, err := h.codec.Marshal(next)
	if err == nil {
		err = h.storage.Set(ctx, h.key, data)
	}
	if err != nil {
		return h.writeFailed(err)
	}
	return nil
}

// Clear forgets every entry and removes the stored list.
func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil
	if err := h.storage.Remove(ctx, h.key); err != nil {
		return h.writeFailed(err)
	}
	return nil
}

func (h *History) writeFailed(err error) error {
	h.metrics.RecordStorageWriteError()
	h.logger.Warn("failed to persist search history", zap.String("key", h.key), zap.Error(err))
	return fmt.Errorf("persist search history: %w", err)
}

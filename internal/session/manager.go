// Package session maps HTTP client sessions to their cart and search history.
// A session is identified by a random UUID; its state lives in the shared
// key-value storage under per-session keys, so an in-memory session can be
// dropped at any time and rebuilt on the next request.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/hivestore/pkg/cache"
	"github.com/yourusername/hivestore/pkg/cart"
	"github.com/yourusername/hivestore/pkg/codec"
	"github.com/yourusername/hivestore/pkg/kv"
	"github.com/yourusername/hivestore/pkg/metrics"
	"github.com/yourusername/hivestore/pkg/search"
)

// DefaultMaxSessions bounds the in-memory session table.
const DefaultMaxSessions = 10000

// Session is the client state of one visitor.
type Session struct {
	ID      string
	Cart    *cart.Store
	History *search.History
}

// Config holds the settings shared by every session.
type Config struct {
	// CartKey and HistoryKey are suffixed with ":<session id>".
	CartKey    string
	HistoryKey string

	CartCodec    codec.Codec
	HistoryCodec codec.Codec

	// MaxSessions bounds the sessions kept in memory. Least recently used
	// sessions are dropped first.
	MaxSessions int

	Clock   func() time.Time
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Manager lazily builds sessions over a shared storage.
type Manager struct {
	storage  kv.Storage
	config   Config
	sessions cache.ICache

	// mu serializes construction so a session is rehydrated once, and
	// guards pinned.
	mu sync.Mutex

	// pinned holds sessions used by in-flight requests. They are served
	// from here even after the LRU table dropped them, so a session never
	// has two cart stores writing the same key.
	pinned map[string]*pin
}

type pin struct {
	session *Session
	refs    int
}

// NewManager creates a session manager.
func NewManager(storage kv.Storage, config Config) (*Manager, error) {
	if config.CartKey == "" {
		config.CartKey = cart.DefaultKey
	}
	if config.HistoryKey == "" {
		config.HistoryKey = search.DefaultHistoryKey
	}
	if config.CartCodec == nil {
		config.CartCodec = codec.DefaultCodec()
	}
	if config.HistoryCodec == nil {
		config.HistoryCodec = codec.DefaultCodec()
	}
	if config.MaxSessions <= 0 {
		config.MaxSessions = DefaultMaxSessions
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	sessions, err := cache.NewWithOptions("sessions",
		cache.WithMaxEntryCount(config.MaxSessions),
		cache.WithEviction(cache.PolicyLRU),
		cache.WithCleanupInterval(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create session table: %w", err)
	}

	return &Manager{storage: storage, config: config, sessions: sessions, pinned: make(map[string]*pin)}, nil
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id is a well-formed session id.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns the session id, building it from storage on first use.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("invalid session id %q", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(ctx, id)
}

// Acquire is Get for the duration of a request: the session stays the one
// returned for id until release is called, even if the table evicts it
// meanwhile. release must be called exactly once.
func (m *Manager) Acquire(ctx context.Context, id string) (s *Session, release func(), err error) {
	if !ValidID(id) {
		return nil, nil, fmt.Errorf("invalid session id %q", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, err = m.getLocked(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	p, ok := m.pinned[id]
	if !ok {
		p = &pin{session: s}
		m.pinned[id] = p
	}
	p.refs++

	var once sync.Once
	return s, func() { once.Do(func() { m.unpin(id) }) }, nil
}

func (m *Manager) unpin(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pinned[id]
	if !ok {
		return
	}
	if p.refs--; p.refs <= 0 {
		delete(m.pinned, id)
	}
}

// getLocked must be called with mu held.
func (m *Manager) getLocked(ctx context.Context, id string) (*Session, error) {
	if s, ok := m.lookup(ctx, id); ok {
		return s, nil
	}

	if p, ok := m.pinned[id]; ok {
		// evicted while in use; put it back rather than rebuild
		if err := m.sessions.Set(ctx, id, p.session, -1); err != nil {
			return nil, fmt.Errorf("store session: %w", err)
		}
		return p.session, nil
	}

	s := &Session{
		ID: id,
		Cart: cart.New(ctx, m.storage,
			cart.WithKey(m.config.CartKey+":"+id),
			cart.WithCodec(m.config.CartCodec),
			cart.WithClock(m.config.Clock),
			cart.WithLogger(m.config.Logger),
			cart.WithMetrics(m.config.Metrics),
		),
		History: search.NewHistory(ctx, m.storage,
			search.WithHistoryKey(m.config.HistoryKey+":"+id),
			search.WithHistoryCodec(m.config.HistoryCodec),
			search.WithHistoryLogger(m.config.Logger),
			search.WithHistoryMetrics(m.config.Metrics),
		),
	}
	if err := m.sessions.Set(ctx, id, s, -1); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	m.config.Logger.Debug("session loaded", zap.String("session", id))
	return s, nil
}

func (m *Manager) lookup(ctx context.Context, id string) (*Session, bool) {
	v, ok, err := m.sessions.Get(ctx, id)
	if err != nil || !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok
}

// Len returns the number of sessions held in memory.
func (m *Manager) Len(ctx context.Context) int {
	stats, err := m.sessions.Stats(ctx)
	if err != nil {
		return 0
	}
	return int(stats.EntryCount)
}

// Close releases the session table. The storage is left open.
func (m *Manager) Close() error {
	return m.sessions.Close()
}

// Package cart implements the shopping cart state store: a ledger of product
// quantities with derived totals, persisted as one snapshot in a key-value
// store after every mutation and rehydrated on construction.
//
// Package cart 实现购物车状态存储：产品数量账本及其派生合计，
// 每次变更后以一个快照持久化到键值存储中，并在构造时恢复。
package cart

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/hivestore/pkg/catalog"
	"github.com/yourusername/hivestore/pkg/codec"
	herrors "github.com/yourusername/hivestore/pkg/errors"
	"github.com/yourusername/hivestore/pkg/kv"
	"github.com/yourusername/hivestore/pkg/metrics"
)

const (
	// DefaultKey is the storage key of the cart snapshot.
	DefaultKey = "cart-storage"

	// TaxRate is applied to the subtotal.
	TaxRate = 0.10
)

// Item is one cart line.
type Item struct {
	Product  catalog.Product `json:"product" yaml:"product"`
	Quantity int             `json:"quantity" yaml:"quantity"`
	AddedAt  time.Time       `json:"addedAt" yaml:"addedAt"`
}

// LineTotal returns unit price times quantity.
func (i Item) LineTotal() float64 {
	return i.Product.Price.Amount * float64(i.Quantity)
}

// State is the persisted snapshot.
//
// State 是持久化的快照。
type State struct {
	Items  []Item `json:"items" yaml:"items"`
	IsOpen bool   `json:"isOpen" yaml:"isOpen"`
}

// Totals are derived from the items; they are never stored.
type Totals struct {
	ItemCount int              `json:"itemCount"`
	Subtotal  float64          `json:"subtotal"`
	Tax       float64          `json:"tax"`
	Total     float64          `json:"total"`
	Currency  catalog.Currency `json:"currency"`
}

// Store is a cart bound to one storage key. It is safe for concurrent use.
//
// Store 是绑定到一个存储键的购物车，可以并发使用。
type Store struct {
	mu    sync.Mutex
	state State

	storage kv.Storage
	codec   codec.Codec
	key     string
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key. The default is DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithCodec sets the snapshot encoding. The default is compact JSON.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithClock sets the time source used for AddedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates a Store over storage and rehydrates it. A missing snapshot
// yields an empty cart. An unreadable or undecodable snapshot is logged,
// counted as a storage read error, and also yields an empty cart.
//
// New 创建购物车并从存储恢复状态。快照缺失时为空购物车；
// 无法读取或解码的快照会被记录日志并计数，同样得到空购物车。
func New(ctx context.Context, storage kv.Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		codec:   codec.DefaultCodec(),
		key:     DefaultKey,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) State {
	data, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.readFailed(err)
		return State{}
	}
	if !found {
		return State{}
	}

	var st State
	if err := s.codec.Unmarshal(data, &st); err != nil {
		s.readFailed(fmt.Errorf("%w: %v", herrors.ErrCorruptState, err))
		return State{}
	}
	if err := validateState(st); err != nil {
		s.readFailed(err)
		return State{}
	}
	return st
}

func validateState(st State) error {
	seen := make(map[string]struct{}, len(st.Items))
	for _, it := range st.Items {
		if it.Product.ID == "" || it.Quantity < 1 {
			return fmt.Errorf("%w: item %q with quantity %d", herrors.ErrCorruptState, it.Product.ID, it.Quantity)
		}
		if _, dup := seen[it.Product.ID]; dup {
			return fmt.Errorf("%w: duplicate item %q", herrors.ErrCorruptState, it.Product.ID)
		}
		seen[it.Product.ID] = struct{}{}
	}
	return nil
}

func (s *Store) readFailed(err error) {
	s.metrics.RecordStorageReadError()
	s.logger.Warn("discarding unreadable cart snapshot",
		zap.String("key", s.key),
		zap.Error(err),
	)
}

// persist writes the current state. Must be called with mu held.
// The in-memory mutation stays applied when the write fails.
func (s *Store) persist(ctx context.Context) error {
	s.metrics.RecordCartMutation()

	data, err := s.codec.Marshal(s.state)
	if err == nil {
		err = s.storage.Set(ctx, s.key, data)
	}
	if err != nil {
		s.metrics.RecordStorageWriteError()
		s.logger.Warn("failed to persist cart", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func (s *Store) index(productID string) int {
	return slices.IndexFunc(s.state.Items, func(it Item) bool {
		return it.Product.ID == productID
	})
}

// AddItem adds quantity units of product, accumulating onto an existing line.
// quantity must be at least 1.
//
// AddItem 添加产品；已存在时累加数量。quantity 必须至少为 1。
func (s *Store) AddItem(ctx context.Context, product catalog.Product, quantity int) error {
	if quantity < 1 {
		return herrors.NewValidation("quantity", quantity, herrors.ErrInvalidQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(product.ID); i >= 0 {
		items := slices.Clone(s.state.Items)
		items[i].Quantity += quantity
		s.state.Items = items
	} else {
		s.state.Items = append(slices.Clip(s.state.Items), Item{
			Product:  product,
			Quantity: quantity,
			AddedAt:  s.now(),
		})
	}
	return s.persist(ctx)
}

// RemoveItem deletes the line for productID. Absent ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(productID)
	return s.persist(ctx)
}

func (s *Store) removeLocked(productID string) {
	s.state.Items = slices.DeleteFunc(slices.Clone(s.state.Items), func(it Item) bool {
		return it.Product.ID == productID
	})
}

// UpdateQuantity sets the quantity of productID exactly. A quantity of zero
// or less removes the line. Absent ids are ignored.
//
// UpdateQuantity 精确设置数量；数量小于等于 0 时删除该行。
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return s.persist(ctx)
	}

	if i := s.index(productID); i >= 0 {
		items := slices.Clone(s.state.Items)
		items[i].Quantity = quantity
		s.state.Items = items
	}
	return s.persist(ctx)
}

// Clear empties the cart. The open flag is kept.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Items = nil
	return s.persist(ctx)
}

// Open shows the cart.
func (s *Store) Open(ctx context.Context) error {
	return s.setOpen(ctx, func(bool) bool { return true })
}

// Close hides the cart.
func (s *Store) Close(ctx context.Context) error {
	return s.setOpen(ctx, func(bool) bool { return false })
}

// Toggle flips the open flag.
func (s *Store) Toggle(ctx context.Context) error {
	return s.setOpen(ctx, func(open bool) bool { return !open })
}

func (s *Store) setOpen(ctx context.Context, next func(bool) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.IsOpen = next(s.state.IsOpen)
	return s.persist(ctx)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{Items: slices.Clone(s.state.Items), IsOpen: s.state.IsOpen}
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []Item {
	return s.Snapshot().Items
}

// IsOpen reports the visibility flag.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsOpen
}

// HasItem reports whether productID is in the cart.
func (s *Store) HasItem(productID string) bool {
	_, ok := s.Item(productID)
	return ok
}

// Item returns the line for productID.
func (s *Store) Item(productID string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(productID); i >= 0 {
		return s.state.Items[i], true
	}
	return Item{}, false
}

// ItemCount returns the sum of quantities.
func (s *Store) ItemCount() int {
	return s.Totals().ItemCount
}

// Subtotal returns the sum of line totals.
func (s *Store) Subtotal() float64 {
	return s.Totals().Subtotal
}

// Tax returns Subtotal * TaxRate.
func (s *Store) Tax() float64 {
	return s.Totals().Tax
}

// Total returns Subtotal + Tax.
func (s *Store) Total() float64 {
	return s.Totals().Total
}

// Totals computes every derived amount from one consistent snapshot.
//
// Totals 从同一个快照计算所有派生金额。
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ComputeTotals(s.state.Items)
}

// ComputeTotals derives the totals of items.
func ComputeTotals(items []Item) Totals {
	t := Totals{Currency: catalog.CurrencyUSD}
	for i, it := range items {
		if i == 0 && it.Product.Price.Currency != "" {
			t.Currency = it.Product.Price.Currency
		}
		t.ItemCount += it.Quantity
		t.Subtotal += it.LineTotal()
	}
	t.Tax = t.Subtotal * TaxRate
	t.Total = t.Subtotal + t.Tax
	return t
}

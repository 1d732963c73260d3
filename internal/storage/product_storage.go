// Package storage holds the in-memory product repository used by the
// storefront. It serves a fixed, validated product collection and can
// simulate database latency through an injected delayer.
package storage

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/yourusername/hivestore/internal/latency"
	"github.com/yourusername/hivestore/internal/query"
	"github.com/yourusername/hivestore/pkg/catalog"
)

// ProductStorage is an immutable in-memory catalog.Repository.
type ProductStorage struct {
	products []catalog.Product
	byID     map[string]int
	bySlug   map[string]int

	// lookup applies to FindAll/FindByID/FindBySlug, listing to the
	// lighter related/category/featured/on-sale calls.
	lookup  latency.Delayer
	listing latency.Delayer

	accessCount atomic.Int64
	logger      *zap.Logger
}

var _ catalog.Repository = (*ProductStorage)(nil)

// Option configures a ProductStorage.
type Option func(*ProductStorage)

// WithDelayer sets the delay applied before every call.
func WithDelayer(d latency.Delayer) Option {
	return func(s *ProductStorage) {
		s.lookup = d
		s.listing = d
	}
}

// WithListingDelayer overrides the delay for related, category, featured
// and on-sale listings.
func WithListingDelayer(d latency.Delayer) Option {
	return func(s *ProductStorage) {
		s.listing = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *ProductStorage) {
		s.logger = l
	}
}

// NewProductStorage validates products and builds the id and slug indexes.
// The slice is copied; later changes by the caller are not observed.
func NewProductStorage(products []catalog.Product, opts ...Option) (*ProductStorage, error) {
	if err := catalog.ValidateCollection(products); err != nil {
		return nil, fmt.Errorf("invalid product collection: %w", err)
	}

	s := &ProductStorage{
		products: slices.Clone(products),
		byID:     make(map[string]int, len(products)),
		bySlug:   make(map[string]int, len(products)),
		lookup:   latency.None(),
		listing:  latency.None(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for i, p := range s.products {
		s.byID[p.ID] = i
		s.bySlug[p.Slug] = i
	}

	s.logger.Info("product storage ready", zap.Int("products", len(s.products)))
	return s, nil
}

// NewSeededStorage builds a ProductStorage over the built-in dataset.
func NewSeededStorage(opts ...Option) (*ProductStorage, error) {
	products, err := catalog.Seed()
	if err != nil {
		return nil, err
	}
	return NewProductStorage(products, opts...)
}

// Len returns the collection size.
func (s *ProductStorage) Len() int {
	return len(s.products)
}

// AccessCount returns how many repository calls have been served.
func (s *ProductStorage) AccessCount() int64 {
	return s.accessCount.Load()
}

// Products returns a copy of the whole collection in insertion order.
func (s *ProductStorage) Products() []catalog.Product {
	return slices.Clone(s.products)
}

func (s *ProductStorage) access(ctx context.Context, d latency.Delayer, op string) error {
	if err := d.Delay(ctx); err != nil {
		return err
	}
	n := s.accessCount.Add(1)
	if n%100 == 0 {
		s.logger.Debug("product storage access", zap.String("op", op), zap.Int64("count", n))
	}
	return nil
}

// FindAll implements catalog.Repository.
func (s *ProductStorage) FindAll(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	if err := s.access(ctx, s.lookup, "find_all"); err != nil {
		return catalog.Page{}, err
	}
	return query.Run(s.products, q)
}

// FindByID implements catalog.Repository.
func (s *ProductStorage) FindByID(ctx context.Context, id string) (catalog.Product, bool, error) {
	if err := s.access(ctx, s.lookup, "find_by_id"); err != nil {
		return catalog.Product{}, false, err
	}
	i, ok := s.byID[id]
	if !ok {
		return catalog.Product{}, false, nil
	}
	return s.products[i], true, nil
}

// FindBySlug implements catalog.Repository.
func (s *ProductStorage) FindBySlug(ctx context.Context, slug string) (catalog.Product, bool, error) {
	if err := s.access(ctx, s.lookup, "find_by_slug"); err != nil {
		return catalog.Product{}, false, err
	}
	i, ok := s.bySlug[slug]
	if !ok {
		return catalog.Product{}, false, nil
	}
	return s.products[i], true, nil
}

// FindRelated implements catalog.Repository.
func (s *ProductStorage) FindRelated(ctx context.Context, id string, limit int) ([]catalog.Product, error) {
	if err := s.access(ctx, s.listing, "find_related"); err != nil {
		return nil, err
	}
	i, ok := s.byID[id]
	if !ok {
		return []catalog.Product{}, nil
	}
	return query.Related(s.products, s.products[i], limit), nil
}

// FindByCategory implements catalog.Repository.
func (s *ProductStorage) FindByCategory(ctx context.Context, category catalog.Category, limit int) ([]catalog.Product, error) {
	if err := s.access(ctx, s.listing, "find_by_category"); err != nil {
		return nil, err
	}
	return query.ByCategory(s.products, category, limit), nil
}

// FindFeatured implements catalog.Repository.
func (s *ProductStorage) FindFeatured(ctx context.Context, limit int) ([]catalog.Product, error) {
	if err := s.access(ctx, s.listing, "find_featured"); err != nil {
		return nil, err
	}
	return query.Featured(s.products, limit), nil
}

// FindOnSale implements catalog.Repository.
func (s *ProductStorage) FindOnSale(ctx context.Context, limit int) ([]catalog.Product, error) {
	if err := s.access(ctx, s.listing, "find_on_sale"); err != nil {
		return nil, err
	}
	return query.OnSale(s.products, limit), nil
}

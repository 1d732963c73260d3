// Package loader fills the listing cache from the product repository.
// A Loader fetches one value on a miss; ReadThrough puts a cache in front of
// it and collapses concurrent misses for the same key into one load.
//
// Package loader 从产品仓库填充列表缓存。Loader 在未命中时加载单个值；
// ReadThrough 在其前面放置缓存，并将同一键的并发未命中合并为一次加载。
package loader

import (
	"context"
	"time"
)

// Loader fetches the value for key. A zero ttl keeps the cache default.
//
// Loader 获取键对应的值。ttl为0时使用缓存的默认值。
type Loader[T any] interface {
	Load(ctx context.Context, key string) (value T, ttl time.Duration, err error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc[T any] func(ctx context.Context, key string) (T, time.Duration, error)

func (f LoaderFunc[T]) Load(ctx context.Context, key string) (T, time.Duration, error) {
	return f(ctx, key)
}

// NewFunctionLoader wraps fn, whose results are stored with the default TTL.
func NewFunctionLoader[T any](fn func(ctx context.Context, key string) (T, error)) Loader[T] {
	return LoaderFunc[T](func(ctx context.Context, key string) (T, time.Duration, error) {
		value, err := fn(ctx, key)
		return value, 0, err
	})
}

package loader

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/yourusername/hivestore/pkg/cache"
)

// ReadThrough serves values from a cache and falls back to a Loader on a
// miss. Concurrent misses for one key share a single Load call. Cache
// failures never fail the read; they are reported to OnCacheError.
//
// ReadThrough 从缓存读取值，未命中时回源到Loader。
// 同一键的并发未命中只触发一次Load。缓存错误不会导致读取失败。
type ReadThrough[T any] struct {
	Cache  cache.ICache
	Loader Loader[T]

	// OnCacheError, if set, receives cache Get/Set failures.
	OnCacheError func(op, key string, err error)

	group singleflight.Group
}

// NewReadThrough returns a ReadThrough over c and l.
func NewReadThrough[T any](c cache.ICache, l Loader[T]) *ReadThrough[T] {
	return &ReadThrough[T]{Cache: c, Loader: l}
}

// Get returns the value for key and whether it came from the cache.
// A nil Cache always loads.
func (r *ReadThrough[T]) Get(ctx context.Context, key string) (T, bool, error) {
	return r.GetWith(ctx, key, r.Loader)
}

// GetWith is Get with a loader bound to this call, for keys whose load
// needs arguments the key alone does not carry.
//
// GetWith 与Get相同，但使用本次调用绑定的加载器。
func (r *ReadThrough[T]) GetWith(ctx context.Context, key string, l Loader[T]) (T, bool, error) {
	var zero T

	if r.Cache != nil {
		v, ok, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.cacheError("get", key, err)
		} else if ok {
			if typed, match := v.(T); match {
				return typed, true, nil
			}
			r.cacheError("get", key, fmt.Errorf("unexpected cached type %T", v))
		}
	}

	// The shared load must not inherit the first caller's cancellation;
	// each caller stops waiting on its own ctx instead.
	ch := r.group.DoChan(key, func() (interface{}, error) {
		loadCtx := context.WithoutCancel(ctx)
		value, ttl, err := l.Load(loadCtx, key)
		if err != nil {
			return nil, err
		}
		if r.Cache != nil {
			if err := r.Cache.Set(loadCtx, key, value, ttl); err != nil {
				r.cacheError("set", key, err)
			}
		}
		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		return res.Val.(T), false, nil
	}
}

// Forget drops key from the cache and from in-flight tracking.
func (r *ReadThrough[T]) Forget(ctx context.Context, key string) {
	r.group.Forget(key)
	if r.Cache != nil {
		if _, err := r.Cache.Delete(ctx, key); err != nil {
			r.cacheError("delete", key, err)
		}
	}
}

func (r *ReadThrough[T]) cacheError(op, key string, err error) {
	if r.OnCacheError != nil {
		r.OnCacheError(op, key, err)
	}
}

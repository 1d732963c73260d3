package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// BenchmarkCacheOperations measures the listing cache at sizes around the
// configured default.
//
// BenchmarkCacheOperations 在默认配置附近的容量下测量列表缓存的性能。
func BenchmarkCacheOperations(b *testing.B) {
	for _, size := range []int{256, 1024, 8192} {
		for _, policy := range []string{PolicyLRU, PolicyFIFO} {
			b.Run(fmt.Sprintf("Size=%d/Policy=%s", size, policy), func(b *testing.B) {
				runCacheBenchmarks(b, size, policy)
			})
		}
	}
}

func runCacheBenchmarks(b *testing.B, size int, policy string) {
	c, err := NewWithOptions("benchmark-cache",
		WithMaxEntryCount(size),
		WithEviction(policy),
		WithTTL(time.Hour),
		WithCleanupInterval(0),
	)
	if err != nil {
		b.Fatalf("Failed to create cache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	keys := make([]string, size*2)
	for i := range keys {
		keys[i] = fmt.Sprintf("products:{\"page\":%d,\"pageSize\":12}", i)
	}
	for i := 0; i < size; i++ {
		if err := c.Set(ctx, keys[i], i, 0); err != nil {
			b.Fatalf("Failed to set cache: %v", err)
		}
	}

	b.Run("Get/Hit", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			i := 0
			for pb.Next() {
				if _, ok, _ := c.Get(ctx, keys[i%size]); !ok {
					b.Fatalf("expected hit for %s", keys[i%size])
				}
				i++
			}
		})
	})

	b.Run("Get/Miss", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				_, _, _ = c.Get(ctx, "missing")
			}
		})
	})

	// every Set past capacity evicts
	b.Run("Set/Evict", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = c.Set(ctx, keys[i%len(keys)], i, 0)
		}
	})

	b.Run("Mixed/Read80Write20", func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			i := 0
			for pb.Next() {
				key := keys[i%len(keys)]
				if i%5 == 0 {
					_ = c.Set(ctx, key, i, 0)
				} else {
					_, _, _ = c.Get(ctx, key)
				}
				i++
			}
		})
	})
}

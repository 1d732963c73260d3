package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "localhost:6379"

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "cart-storage")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "cart-storage", []byte(`{"items":[]}`)))
	v, found, err := s.Get(ctx, "cart-storage")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"items":[]}`, string(v))

	require.NoError(t, s.Set(ctx, "cart-storage", []byte(`{"items":[1]}`)))
	v, _, err = s.Get(ctx, "cart-storage")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[1]}`, string(v))

	// keys with separators and unicode
	key := "royal-honey-search-history:0b6f/é"
	require.NoError(t, s.Set(ctx, key, []byte("[]")))
	_, found, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, s.Remove(ctx, "cart-storage"))
	_, found, err = s.Get(ctx, "cart-storage")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Remove(ctx, "never-set"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k := fmt.Sprintf("concurrent-%d", i%3)
			assert.NoError(t, s.Set(ctx, k, []byte{byte(i)}))
			_, _, err := s.Get(ctx, k)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseStorage(t, m)

	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[0] = 'x'
	v, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(v))

	require.NoError(t, m.Close())
	_, _, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	f, err := NewFile(dir)
	require.NoError(t, err)
	exerciseStorage(t, f)

	ctx := context.Background()
	require.NoError(t, f.Set(ctx, "persist", []byte("yes")))
	reopened, err := NewFile(dir)
	require.NoError(t, err)
	v, found, err := reopened.Get(ctx, "persist")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "yes", string(v))

	_, err = NewFile("")
	assert.Error(t, err)
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "state.db")

	s, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	exerciseStorage(t, s)
	require.NoError(t, s.Set(ctx, "persist", []byte("yes")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	v, found, err := reopened.Get(ctx, "persist")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "yes", string(v))
}

func TestSQLiteInMemory(t *testing.T) {
	s, err := NewSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()
	exerciseStorage(t, s)
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	prefix := fmt.Sprintf("hivestore-test:%d:", time.Now().UnixNano())
	r := NewRedisFromClient(client, prefix, time.Minute)
	defer r.Close()

	exerciseStorage(t, r)

	ttl, err := client.TTL(ctx, prefix+"royal-honey-search-history:0b6f/é").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, Config{Engine: EngineFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	s, err = Open(ctx, Config{Engine: EngineSQLite, SQLitePath: filepath.Join(t.TempDir(), "kv.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Engine: "bolt"})
	assert.ErrorIs(t, err, ErrUnknownEngine)

	_, err = Open(ctx, Config{Engine: EngineSQLite})
	assert.Error(t, err)
}

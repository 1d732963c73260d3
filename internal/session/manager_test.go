package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/hivestore/pkg/catalog"
	"github.com/yourusername/hivestore/pkg/kv"
)

func newManager(t *testing.T, storage kv.Storage, cfg Config) *Manager {
	t.Helper()
	m, err := NewManager(storage, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestIDs(t *testing.T) {
	id := NewID()
	assert.True(t, ValidID(id))
	assert.NotEqual(t, id, NewID())
	assert.False(t, ValidID("../../etc/passwd"))
	assert.False(t, ValidID(""))
}

func TestGetReturnsSameSession(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, kv.NewMemory(), Config{})
	id := NewID()

	a, err := m.Get(ctx, id)
	require.NoError(t, err)
	b, err := m.Get(ctx, id)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, m.Len(ctx))

	_, err = m.Get(ctx, "not-a-uuid")
	assert.Error(t, err)
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	m := newManager(t, storage, Config{})

	alice, err := m.Get(ctx, NewID())
	require.NoError(t, err)
	bob, err := m.Get(ctx, NewID())
	require.NoError(t, err)

	p := catalog.Product{ID: "rh-001", Price: catalog.Money{Amount: 10, Currency: catalog.CurrencyUSD}}
	require.NoError(t, alice.Cart.AddItem(ctx, p, 2))
	require.NoError(t, alice.History.Save(ctx, "acacia"))

	assert.Equal(t, 2, alice.Cart.ItemCount())
	assert.Zero(t, bob.Cart.ItemCount())
	assert.Empty(t, bob.History.Entries())

	_, found, err := storage.Get(ctx, "cart-storage:"+alice.ID)
	require.NoError(t, err)
	assert.True(t, found)
	_, found, err = storage.Get(ctx, "royal-honey-search-history:"+alice.ID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestEvictedSessionIsRebuiltFromStorage(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, kv.NewMemory(), Config{MaxSessions: 1})

	first := NewID()
	s, err := m.Get(ctx, first)
	require.NoError(t, err)
	require.NoError(t, s.Cart.AddItem(ctx, catalog.Product{ID: "hc-001"}, 3))
	require.NoError(t, s.Cart.Open(ctx))

	_, err = m.Get(ctx, NewID())
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len(ctx))

	rebuilt, err := m.Get(ctx, first)
	require.NoError(t, err)
	assert.NotSame(t, s, rebuilt)
	assert.Equal(t, 3, rebuilt.Cart.ItemCount())
	assert.True(t, rebuilt.Cart.IsOpen())
}

func TestAcquiredSessionSurvivesEviction(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemory()
	m := newManager(t, storage, Config{MaxSessions: 1})

	id := NewID()
	held, release, err := m.Acquire(ctx, id)
	require.NoError(t, err)

	// another visitor pushes the held session out of the table
	_, err = m.Get(ctx, NewID())
	require.NoError(t, err)

	again, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Same(t, held, again)

	// both handles write through the same store, nothing is lost
	require.NoError(t, held.Cart.AddItem(ctx, catalog.Product{ID: "rh-001"}, 1))
	require.NoError(t, again.Cart.AddItem(ctx, catalog.Product{ID: "hc-001"}, 2))

	release()
	release()

	_, err = m.Get(ctx, NewID())
	require.NoError(t, err)
	rebuilt, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.NotSame(t, held, rebuilt)
	assert.Equal(t, 3, rebuilt.Cart.ItemCount())
	assert.Len(t, rebuilt.Cart.Items(), 2)
}

func TestAcquireCountsNestedHolders(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, kv.NewMemory(), Config{MaxSessions: 1})

	id := NewID()
	a, releaseA, err := m.Acquire(ctx, id)
	require.NoError(t, err)
	b, releaseB, err := m.Acquire(ctx, id)
	require.NoError(t, err)
	assert.Same(t, a, b)

	releaseA()
	_, err = m.Get(ctx, NewID())
	require.NoError(t, err)

	c, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Same(t, a, c, "still held by the second request")
	releaseB()

	_, _, err = m.Acquire(ctx, "not-a-uuid")
	assert.Error(t, err)
}

package latency

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNone(t *testing.T) {
	start := time.Now()
	assert.NoError(t, None().Delay(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, None().Delay(ctx), context.Canceled)
}

func TestFixed(t *testing.T) {
	start := time.Now()
	assert.NoError(t, Fixed(20*time.Millisecond).Delay(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestFixedHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := Fixed(time.Hour).Delay(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRandomBounds(t *testing.T) {
	r := NewRandom(300*time.Millisecond, 800*time.Millisecond, rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		d := r.Next()
		assert.GreaterOrEqual(t, d, 300*time.Millisecond)
		assert.LessOrEqual(t, d, 800*time.Millisecond)
	}
}

func TestRandomDeterministicWithSeed(t *testing.T) {
	a := NewRandom(0, time.Second, rand.NewSource(7))
	b := NewRandom(0, time.Second, rand.NewSource(7))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestRandomSwapsBounds(t *testing.T) {
	r := NewRandom(5*time.Millisecond, time.Millisecond, nil)
	d := r.Next()
	assert.GreaterOrEqual(t, d, time.Millisecond)
	assert.LessOrEqual(t, d, 5*time.Millisecond)

	same := NewRandom(time.Millisecond, time.Millisecond, nil)
	assert.Equal(t, time.Millisecond, same.Next())
}

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burnnote/burner/internal/common"
)

func newRecord(t *testing.T, ttl time.Duration) *Record {
	t.Helper()
	id, err := NewID()
	require.NoError(t, err)
	return &Record{
		ID:      id,
		Payload: []byte("opaque-blob"),
		Created: time.Now(),
		TTL:     ttl,
	}
}

func TestMemoryStore_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := newRecord(t, time.Minute)
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Consume(ctx, rec.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, rec.Payload, got.Payload)

	_, err = s.Consume(ctx, rec.ID, time.Now())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStore_Get_NoSideEffect(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := newRecord(t, time.Minute)
	require.NoError(t, s.Put(ctx, rec))

	_, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	_, err = s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	_, err = s.Get(ctx, "missing-id")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStore_Consume_ExpiredOnFirstRead(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// born expired
	rec := newRecord(t, 0)
	require.NoError(t, s.Put(ctx, rec))

	_, err := s.Consume(ctx, rec.ID, time.Now())
	assert.ErrorIs(t, err, common.ErrExpired)

	// the expired record was deleted on the way out
	_, err = s.Consume(ctx, rec.ID, time.Now())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStore_Consume_PastTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := newRecord(t, time.Millisecond)
	require.NoError(t, s.Put(ctx, rec))

	_, err := s.Consume(ctx, rec.ID, rec.Created.Add(5*time.Millisecond))
	assert.ErrorIs(t, err, common.ErrExpired)
}

func TestMemoryStore_Consume_ConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := newRecord(t, time.Minute)
	require.NoError(t, s.Put(ctx, rec))

	const readers = 32
	var wg sync.WaitGroup
	var winners, losers atomicCounter

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Consume(ctx, rec.ID, time.Now())
			switch {
			case err == nil:
				winners.inc()
			case errors.Is(err, common.ErrNotFound):
				losers.inc()
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners.value())
	assert.Equal(t, readers-1, losers.value())
}

func TestMemoryStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	live := newRecord(t, time.Hour)
	dead := newRecord(t, time.Millisecond)
	require.NoError(t, s.Put(ctx, live))
	require.NoError(t, s.Put(ctx, dead))

	purged, err := s.PurgeExpired(ctx, time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = s.Consume(ctx, dead.ID, time.Now())
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = s.Consume(ctx, live.ID, time.Now())
	assert.NoError(t, err)
}

func TestMemoryStore_PurgeExpired_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := newRecord(t, time.Millisecond)
	require.NoError(t, s.Put(ctx, rec))

	later := time.Now().Add(time.Second)
	purged, err := s.PurgeExpired(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	purged, err = s.PurgeExpired(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, 0, purged)
}

func TestMemoryStore_PurgeConcurrentWithConsume(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	const n = 64
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		rec := newRecord(t, time.Millisecond)
		require.NoError(t, s.Put(ctx, rec))
		ids = append(ids, rec.ID)
	}

	later := time.Now().Add(time.Second)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := s.PurgeExpired(ctx, later); err != nil {
			t.Errorf("purge: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		for _, id := range ids {
			_, err := s.Consume(ctx, id, later)
			if err != nil && !errors.Is(err, common.ErrExpired) && !errors.Is(err, common.ErrNotFound) {
				t.Errorf("consume: %v", err)
			}
		}
	}()
	wg.Wait()

	assert.Equal(t, 0, s.Len())
}

func TestNewID_Properties(t *testing.T) {
	a, err := NewID()
	require.NoError(t, err)
	b, err := NewID()
	require.NoError(t, err)

	assert.Len(t, a, IDLength)
	assert.NotEqual(t, a, b)
}

type atomicCounter struct {
	mu sync.Mutex
	n  int
}

func (c *atomicCounter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *atomicCounter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

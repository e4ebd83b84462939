package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burnnote/burner/internal/common"
	"github.com/burnnote/burner/internal/logging"
	"github.com/burnnote/burner/internal/store"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSweeper_RemovesExpiredRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := store.NewMemoryStore()
	require.NoError(t, mem.Put(ctx, &store.Record{
		ID: "dead0000", Payload: []byte("x"), Created: time.Now().Add(-time.Hour), TTL: time.Minute,
	}))
	require.NoError(t, mem.Put(ctx, &store.Record{
		ID: "live0000", Payload: []byte("y"), Created: time.Now(), TTL: time.Hour,
	}))

	sweeper := NewSweeper(mem, discardLogger(), 5*time.Millisecond)
	go sweeper.Run(ctx)

	assert.Eventually(t, func() bool {
		_, err := mem.Get(ctx, "dead0000")
		return errors.Is(err, common.ErrNotFound)
	}, time.Second, 5*time.Millisecond)

	// a purged id behaves exactly like a consumed one
	_, err := mem.Consume(ctx, "dead0000", time.Now())
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = mem.Get(ctx, "live0000")
	assert.NoError(t, err)
}

func TestSweeper_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sweeper := NewSweeper(store.NewMemoryStore(), discardLogger(), time.Millisecond)

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}
}

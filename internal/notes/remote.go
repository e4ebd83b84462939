package notes

import (
	"context"
	"time"

	"github.com/burnnote/burner/internal/store"
)

// StoreRemote adapts a store.Store into a Remote for deployments where
// the store lives in the same process as the lifecycle logic (and for
// tests). Pull goes through Consume, so it shares the store's atomic
// delete-on-fetch path.
type StoreRemote struct {
	Store store.Store

	// Now is a clock seam for tests; defaults to time.Now.
	Now func() time.Time
}

var _ Remote = (*StoreRemote)(nil)

func (r *StoreRemote) Push(ctx context.Context, payload []byte, created time.Time, ttl time.Duration) (string, error) {
	id, err := store.NewID()
	if err != nil {
		return "", err
	}
	rec := &store.Record{ID: id, Payload: payload, Created: created, TTL: ttl}
	if err := r.Store.Put(ctx, rec); err != nil {
		return "", err
	}
	return id, nil
}

func (r *StoreRemote) Pull(ctx context.Context, shortID string) ([]byte, time.Time, time.Duration, error) {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	rec, err := r.Store.Consume(ctx, shortID, now())
	if err != nil {
		return nil, time.Time{}, 0, err
	}
	return rec.Payload, rec.Created, rec.TTL, nil
}

package store

import (
	"context"
	"sync"
	"time"

	"github.com/burnnote/burner/internal/common"
)

// MemoryStore keeps records in a map behind a mutex. It is the default
// backing for single-process deployments; state is an explicit, injected
// value rather than anything process-global.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Put(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Consume(_ context.Context, id string, now time.Time) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	// deletion happens under the same lock as the lookup, so concurrent
	// consumers race for the map entry and only one can win
	delete(s.records, id)

	if rec.Expired(now) {
		return nil, common.ErrExpired
	}
	return rec, nil
}

func (s *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, rec := range s.records {
		if rec.Expired(now) {
			delete(s.records, id)
			purged++
		}
	}
	return purged, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*Record)
	return nil
}

// Len reports the number of live-or-expired records currently held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

package server

import (
	"context"
	"time"

	"github.com/burnnote/burner/internal/logging"
	"github.com/burnnote/burner/internal/store"
)

// Sweeper periodically purges expired notes. It shares the store's
// deletion path with Consume, so a purge racing a concurrent read on the
// same id resolves to at most one winner.
type Sweeper struct {
	store    store.Store
	log      logging.Logger
	interval time.Duration
}

func NewSweeper(s store.Store, log logging.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    s,
		log:      log.With("module", "sweeper"),
		interval: interval,
	}
}

// Run sweeps on a ticker until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	purged, err := s.store.PurgeExpired(ctx, time.Now())
	if err != nil {
		s.log.Error(ctx, "purge failed", "error", err)
		return
	}
	if purged > 0 {
		s.log.Info(ctx, "purged expired notes", "count", purged)
	}
}

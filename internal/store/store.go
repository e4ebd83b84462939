// Package store provides keyed storage of encrypted note records with TTL
// and single-read consumption semantics. Two backings are available: an
// in-process map behind a mutex and a PostgreSQL table; both guarantee that
// under concurrent Consume calls on one id exactly one caller wins.
package store

import (
	"context"
	"time"

	"github.com/burnnote/burner/internal/randx"
)

// IDLength is the length of generated note identifiers. Eight characters
// of the 64-symbol URL-safe alphabet give 48 bits of entropy; guessing an
// id is equivalent to guessing the note's location, so ids are always
// random, never sequential.
const IDLength = 8

// Record is a stored encrypted note. The payload is an opaque blob to the
// store; only the token package knows its layout. Records are never
// mutated after Put: they are deleted by Consume or by an expiry sweep.
type Record struct {
	ID      string
	Payload []byte
	Created time.Time
	TTL     time.Duration
}

// ExpiresAt returns the absolute expiry instant.
func (r *Record) ExpiresAt() time.Time {
	return r.Created.Add(r.TTL)
}

// Expired reports whether the record's TTL has elapsed at the given
// instant. A non-positive TTL means the record is born expired.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt())
}

// Store is the note storage abstraction.
//
// Consume is the defining operation: retrieve-and-delete as one logical
// step, so that two concurrent readers can never both observe a live
// record. Implementations return common.ErrNotFound for unknown (or
// already consumed) ids and common.ErrExpired for records whose TTL has
// elapsed; an expired record is deleted on the way out even if this was
// its very first read.
type Store interface {
	// Put inserts a new record. The id must already be set to a
	// cryptographically random value (see NewID).
	Put(ctx context.Context, rec *Record) error

	// Get reads a record without side effects. Used only for
	// expiry-check composition; the retrieval path goes through Consume.
	Get(ctx context.Context, id string) (*Record, error)

	// Consume atomically retrieves and deletes the record.
	Consume(ctx context.Context, id string, now time.Time) (*Record, error)

	// PurgeExpired deletes every record whose TTL has elapsed and
	// returns the number removed. Safe to run concurrently with Consume
	// and with itself; deleting an already-deleted id is a no-op.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)

	// Close releases backing resources.
	Close() error
}

// NewID generates a fresh collision-resistant note identifier.
func NewID() (string, error) {
	return randx.ID(IDLength)
}

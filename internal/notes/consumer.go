package notes

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/burnnote/burner/internal/common"
	"github.com/burnnote/burner/internal/token"
)

// State is the recipient-side lifecycle state of one note.
type State int

const (
	// StateFresh: reference parsed, nothing fetched yet.
	StateFresh State = iota
	// StateAwaitingSecret: a password must still be supplied.
	StateAwaitingSecret
	// StateDecrypted: terminal; the plaintext was displayed exactly once.
	StateDecrypted
	// StateExpired and StateInvalid: terminal failures, each surfaced to
	// the user exactly once.
	StateExpired
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateAwaitingSecret:
		return "awaiting-secret"
	case StateDecrypted:
		return "decrypted"
	case StateExpired:
		return "expired"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Failure is the message kind handed to the display collaborator on a
// failed attempt.
type Failure int

const (
	FailureExpired Failure = iota
	FailureInvalid
	FailureWrongSecret
	FailureNetwork
)

// Display is the UI collaborator boundary. The core supplies data; the
// collaborator renders it (including any countdown timer for the expiry
// instant — the core never re-implements timer UI).
type Display interface {
	// ShowPlaintext is called exactly once, on reaching StateDecrypted.
	ShowPlaintext(plaintext []byte)

	// ShowFailure is called once per terminal failure, and once per
	// wrong-password attempt.
	ShowFailure(f Failure)

	// ShowExpiry supplies the absolute expiry instant for countdown
	// rendering.
	ShowExpiry(at time.Time)
}

// Consumer drives the recipient-side state machine for a single note.
//
// UI layers re-trigger retrieval redundantly (visibility changes, focus,
// hash-change events, overlapping timers). Consumer collapses all of that
// into at most one store fetch and at most one display event per outcome:
// an internal processed flag makes Run idempotent from the caller's view,
// on top of the store-side atomic delete.
type Consumer struct {
	svc     *Service
	display Display

	mu        sync.Mutex
	state     State
	ref       *token.Reference
	payload   *token.Payload
	fetched   bool
	plaintext []byte
	err       error
}

// Open parses a raw reference string and returns a Consumer positioned at
// StateFresh (or StateAwaitingSecret for password notes).
//
// Strings that do not look like a note at all fail with
// common.ErrNotAReference and no display event: callers ignore them
// silently, so arbitrary page fragments never raise user-visible errors.
// Malformed tokens yield a Consumer already in StateInvalid with the
// failure displayed once.
func Open(svc *Service, rawToken string, display Display) (*Consumer, error) {
	c := &Consumer{svc: svc, display: display}

	ref, err := token.Decode(rawToken)
	if err != nil {
		if errors.Is(err, common.ErrNotAReference) {
			return nil, err
		}
		c.state = StateInvalid
		c.err = err
		display.ShowFailure(FailureInvalid)
		return c, nil
	}
	if ref.Mode != svc.mode {
		// token from the other deployment variant; modes are never mixed
		c.state = StateInvalid
		c.err = common.ErrMalformedReference
		display.ShowFailure(FailureInvalid)
		return c, nil
	}

	c.ref = ref
	c.state = StateFresh
	if c.needsSecret() {
		c.state = StateAwaitingSecret
	}
	if ref.Mode == token.ModeSelfContained {
		display.ShowExpiry(ref.ExpiresAt())
	}
	return c, nil
}

// State returns the current lifecycle state.
func (c *Consumer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// NeedsSecret reports whether a password must be supplied before Run can
// decrypt.
func (c *Consumer) NeedsSecret() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateAwaitingSecret
}

func (c *Consumer) needsSecret() bool {
	return c.ref != nil && c.ref.Payload != nil && c.ref.Payload.Scheme.Password() ||
		c.ref != nil && c.ref.Mode == token.ModeShortID && len(c.ref.Key) == 0
}

// Run attempts retrieval and decryption. It is safe to call repeatedly:
// once a terminal state is reached every further call returns the same
// outcome without touching the store or the display again. A wrong
// password does not consume the attempt-local payload, so the recipient
// may retry the password — but in short-id mode the server-side record
// was already destroyed by the first fetch.
func (c *Consumer) Run(ctx context.Context, password []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateDecrypted, StateExpired, StateInvalid:
		return c.err
	}

	if !c.fetched {
		payload, expiresAt, err := c.svc.fetch(ctx, c.ref)
		if err != nil {
			return c.fail(err)
		}
		c.payload = payload
		c.fetched = true
		if c.ref.Mode == token.ModeShortID {
			c.display.ShowExpiry(expiresAt)
		}
	}

	plaintext, err := c.svc.open(c.ref, c.payload, password)
	if err != nil {
		if errors.Is(err, common.ErrAuthentication) {
			// not terminal: the caller may prompt again
			c.display.ShowFailure(FailureWrongSecret)
			return err
		}
		return c.fail(err)
	}

	c.state = StateDecrypted
	c.plaintext = plaintext
	c.payload = nil
	c.display.ShowPlaintext(plaintext)
	return nil
}

// Plaintext returns the decrypted note after StateDecrypted was reached.
func (c *Consumer) Plaintext() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plaintext
}

// fail surfaces a failed attempt. Expired and invalid outcomes are
// terminal; a transport failure only ends the current attempt — the
// record may still exist server-side, so the caller may invoke Run again
// later (the core itself never retries).
func (c *Consumer) fail(err error) error {
	switch {
	case errors.Is(err, common.ErrStorageUnavailable):
		c.display.ShowFailure(FailureNetwork)
	case errors.Is(err, common.ErrExpired):
		c.err = err
		c.state = StateExpired
		c.display.ShowFailure(FailureExpired)
	default:
		c.err = err
		c.state = StateInvalid
		c.display.ShowFailure(FailureInvalid)
	}
	return err
}

// Package notes orchestrates the note lifecycle: creation (encrypt, then
// store or self-encode, then hand out a reference token) and consumption
// (decode, fetch, liveness check, decrypt, destroy).
package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/burnnote/burner/internal/common"
	"github.com/burnnote/burner/internal/cryptox"
	"github.com/burnnote/burner/internal/logging"
	"github.com/burnnote/burner/internal/randx"
	"github.com/burnnote/burner/internal/token"
)

// Remote is the transport collaborator used in short-id deployments.
// Push stores an encrypted payload blob and returns its identifier; Pull
// retrieves and destroys it (delete-on-fetch, see the Service doc).
//
// Implementations map transport failures to common.ErrStorageUnavailable
// and the 404/410 outcomes to common.ErrNotFound / common.ErrExpired.
type Remote interface {
	Push(ctx context.Context, payload []byte, created time.Time, ttl time.Duration) (shortID string, err error)
	Pull(ctx context.Context, shortID string) (payload []byte, created time.Time, ttl time.Duration, err error)
}

// Options configures a Service.
type Options struct {
	// Mode selects the deployment variant. ModeSelfContained needs no
	// server; ModeShortID requires Remote. One mode per deployment, the
	// two are never mixed within a note's lifetime.
	Mode token.Mode

	// KDF is the key-derivation function for password notes.
	KDF cryptox.KDF

	Remote Remote
	Logger logging.Logger

	// Now is a clock seam for tests; defaults to time.Now.
	Now func() time.Time
}

// Service implements note creation and consumption for one deployment
// mode.
//
// Deletion order: in short-id mode the record is destroyed atomically
// when fetched, before decryption is attempted. The server never sees
// the key, so it cannot verify decryption first; the trade-off is that a
// wrong password permanently destroys the note. This is deliberate and
// surfaced in user documentation.
type Service struct {
	mode   token.Mode
	kdf    cryptox.KDF
	remote Remote
	log    logging.Logger
	now    func() time.Time
}

func NewService(opts Options) (*Service, error) {
	switch opts.Mode {
	case token.ModeSelfContained:
	case token.ModeShortID:
		if opts.Remote == nil {
			return nil, errors.New("notes: short-id mode requires a remote")
		}
	default:
		return nil, fmt.Errorf("notes: unknown mode %d", opts.Mode)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}

	return &Service{
		mode:   opts.Mode,
		kdf:    opts.KDF,
		remote: opts.Remote,
		log:    log.With("module", "notes"),
		now:    now,
	}, nil
}

// Create encrypts plaintext and returns the reference token plus the
// absolute expiry instant (for countdown rendering by the display
// collaborator).
//
// An empty password selects bearer-key mode: a fresh random 256-bit key
// is generated and travels inside the token, so anyone holding the full
// token can decrypt. A non-empty password selects password mode: the key
// is derived from it with a fresh per-note salt and the recipient
// supplies the password out-of-band.
func (s *Service) Create(ctx context.Context, plaintext, password []byte, ttl time.Duration) (string, time.Time, error) {
	if len(plaintext) == 0 {
		return "", time.Time{}, errors.New("notes: empty plaintext")
	}
	if ttl <= 0 {
		return "", time.Time{}, errors.New("notes: ttl must be positive")
	}

	payload, bearerKey, err := s.seal(plaintext, password)
	if err != nil {
		return "", time.Time{}, err
	}

	created := s.now()
	ref := &token.Reference{Mode: s.mode, Key: bearerKey}

	switch s.mode {
	case token.ModeSelfContained:
		ref.Payload = payload
		ref.Created = created
		ref.TTL = ttl

	case token.ModeShortID:
		blob, err := payload.MarshalBinary()
		if err != nil {
			return "", time.Time{}, err
		}
		shortID, err := s.remote.Push(ctx, blob, created, ttl)
		if err != nil {
			return "", time.Time{}, err
		}
		ref.ShortID = shortID
	}

	tok, err := token.Encode(ref)
	if err != nil {
		return "", time.Time{}, err
	}

	s.log.Info(ctx, "note created", "mode", s.mode, "scheme", payload.Scheme, "ttl", ttl)
	return tok, created.Add(ttl), nil
}

// Consume decodes the token, retrieves the payload, verifies liveness and
// decrypts. One-shot form of the Consumer state machine: callers that may
// be re-triggered redundantly should use a Consumer instead.
func (s *Service) Consume(ctx context.Context, rawToken string, password []byte) ([]byte, error) {
	ref, err := token.Decode(rawToken)
	if err != nil {
		return nil, err
	}
	if ref.Mode != s.mode {
		// token from the other deployment variant; modes are never mixed
		return nil, fmt.Errorf("%w: token mode %d does not match deployment", common.ErrMalformedReference, ref.Mode)
	}
	payload, _, err := s.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.open(ref, payload, password)
}

// seal encrypts plaintext, returning the payload and, in bearer mode, the
// key to embed in the token.
func (s *Service) seal(plaintext, password []byte) (*token.Payload, []byte, error) {
	payload := &token.Payload{}

	var key []byte
	var bearerKey []byte

	if len(password) > 0 {
		salt, err := cryptox.GenerateSalt()
		if err != nil {
			return nil, nil, err
		}
		key, err = cryptox.DeriveKey(password, salt, s.kdf)
		if err != nil {
			return nil, nil, err
		}
		defer randx.Wipe(key)
		payload.Salt = salt
		payload.Scheme = schemeForKDF(s.kdf)
	} else {
		var err error
		key, err = cryptox.GenerateKey()
		if err != nil {
			return nil, nil, err
		}
		bearerKey = key
		payload.Scheme = token.SchemeBearer
	}

	ciphertext, nonce, err := cryptox.Encrypt(plaintext, key)
	if err != nil {
		return nil, nil, err
	}
	payload.Ciphertext = ciphertext
	payload.Nonce = nonce
	return payload, bearerKey, nil
}

// fetch resolves a reference to its payload, enforcing expiry. In
// short-id mode the record is destroyed by this call.
func (s *Service) fetch(ctx context.Context, ref *token.Reference) (*token.Payload, time.Time, error) {
	switch ref.Mode {
	case token.ModeSelfContained:
		expiresAt := ref.ExpiresAt()
		if !s.now().Before(expiresAt) {
			return nil, time.Time{}, common.ErrExpired
		}
		return ref.Payload, expiresAt, nil

	case token.ModeShortID:
		blob, created, ttl, err := s.remote.Pull(ctx, ref.ShortID)
		if err != nil {
			return nil, time.Time{}, err
		}
		payload, err := token.UnmarshalPayload(blob)
		if err != nil {
			return nil, time.Time{}, err
		}
		return payload, created.Add(ttl), nil

	default:
		return nil, time.Time{}, fmt.Errorf("%w: unknown mode %d", common.ErrMalformedReference, ref.Mode)
	}
}

// open derives or extracts the key and decrypts the payload.
func (s *Service) open(ref *token.Reference, payload *token.Payload, password []byte) ([]byte, error) {
	var key []byte

	if payload.Scheme.Password() {
		if len(password) == 0 {
			return nil, common.ErrAuthentication
		}
		kdf, err := kdfForScheme(payload.Scheme)
		if err != nil {
			return nil, err
		}
		key, err = cryptox.DeriveKey(password, payload.Salt, kdf)
		if err != nil {
			return nil, err
		}
		defer randx.Wipe(key)
	} else {
		if len(ref.Key) == 0 {
			return nil, fmt.Errorf("%w: bearer note without key", common.ErrMalformedReference)
		}
		key = ref.Key
	}

	return cryptox.Decrypt(payload.Ciphertext, payload.Nonce, key)
}

func schemeForKDF(kdf cryptox.KDF) token.Scheme {
	if kdf == cryptox.KDFArgon2id {
		return token.SchemeArgon2id
	}
	return token.SchemePBKDF2
}

func kdfForScheme(scheme token.Scheme) (cryptox.KDF, error) {
	switch scheme {
	case token.SchemePBKDF2:
		return cryptox.KDFPBKDF2, nil
	case token.SchemeArgon2id:
		return cryptox.KDFArgon2id, nil
	default:
		return 0, fmt.Errorf("%w: scheme %d has no kdf", common.ErrMalformedReference, scheme)
	}
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger          { return n }

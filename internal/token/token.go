// Package token implements the reference token wire format: the URL-safe
// text a sender hands to a recipient, binding together ciphertext, nonce,
// salt and (in bearer-key mode) the symmetric key itself.
//
// A token is a versioned binary structure encoded with unpadded base64url:
//
//	version(1) | mode(1) | body
//
//	self-contained body: created(8, unix-ms BE) | ttl(8, ms BE) |
//	                     keyLen(1) | key | payload blob
//	short-id body:       idLen(1) | id | keyLen(1) | key
//
// The payload blob (also stored server-side in short-id mode) is:
//
//	scheme(1) | nonce(12) | salt(16, password schemes only) | ciphertext
//
// All field lengths are fixed or length-prefixed, so record boundaries are
// never ambiguous and no external lookup is needed to parse a token.
package token

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/burnnote/burner/internal/common"
)

// Version is the current wire format version. Unknown versions fail with
// common.ErrMalformedReference rather than being misparsed, so the format
// can evolve without corrupting tokens already issued.
const Version = 0x01

// Mode discriminates the two deployment variants of the protocol.
type Mode byte

const (
	// ModeSelfContained tokens carry the whole encrypted note; there is
	// no server state and the token itself is the note.
	ModeSelfContained Mode = 0x01
	// ModeShortID tokens carry only a store identifier (plus the key in
	// bearer mode); the ciphertext is held server-side.
	ModeShortID Mode = 0x02
)

// Scheme describes how the decryption key is obtained.
type Scheme byte

const (
	// SchemePBKDF2 and SchemeArgon2id derive the key from a password
	// supplied out-of-band by the recipient.
	SchemePBKDF2   Scheme = 0x00
	SchemeArgon2id Scheme = 0x01
	// SchemeBearer keys are random and travel inside the token.
	SchemeBearer Scheme = 0x02
)

// Password reports whether the scheme requires a recipient-supplied
// password (and therefore a salt alongside the ciphertext).
func (s Scheme) Password() bool {
	return s == SchemePBKDF2 || s == SchemeArgon2id
}

const (
	nonceSize = 12
	saltSize  = 16
	keySize   = 32
	tagSize   = 16

	minIDLen = 8

	// Anything shorter cannot be a token of either mode; such strings
	// are reported as ErrNotAReference so callers can silently ignore
	// arbitrary page fragments (see Decode).
	minTokenLen = 16
)

// Payload is the encrypted note material: what a self-contained token
// embeds and what the server stores under a short id.
type Payload struct {
	Scheme     Scheme
	Nonce      []byte // 12 bytes
	Salt       []byte // 16 bytes for password schemes, nil otherwise
	Ciphertext []byte // includes the GCM tag
}

// MarshalBinary serializes the payload into its opaque blob form.
func (p *Payload) MarshalBinary() ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(p.Nonce)+len(p.Salt)+len(p.Ciphertext))
	out = append(out, byte(p.Scheme))
	out = append(out, p.Nonce...)
	out = append(out, p.Salt...)
	out = append(out, p.Ciphertext...)
	return out, nil
}

func (p *Payload) validate() error {
	switch p.Scheme {
	case SchemePBKDF2, SchemeArgon2id:
		if len(p.Salt) != saltSize {
			return fmt.Errorf("payload: salt must be %d bytes, got %d", saltSize, len(p.Salt))
		}
	case SchemeBearer:
		if p.Salt != nil {
			return fmt.Errorf("payload: bearer scheme carries no salt")
		}
	default:
		return fmt.Errorf("payload: unknown scheme %d", p.Scheme)
	}
	if len(p.Nonce) != nonceSize {
		return fmt.Errorf("payload: nonce must be %d bytes, got %d", nonceSize, len(p.Nonce))
	}
	if len(p.Ciphertext) < tagSize {
		return fmt.Errorf("payload: ciphertext shorter than GCM tag")
	}
	return nil
}

// UnmarshalPayload parses an opaque payload blob. Structural failures
// return common.ErrMalformedReference: a blob either parses completely or
// is rejected, there is no partial result.
func UnmarshalPayload(b []byte) (*Payload, error) {
	if len(b) < 1+nonceSize+tagSize {
		return nil, fmt.Errorf("%w: payload truncated", common.ErrMalformedReference)
	}
	p := &Payload{Scheme: Scheme(b[0])}
	rest := b[1:]

	p.Nonce = append([]byte(nil), rest[:nonceSize]...)
	rest = rest[nonceSize:]

	switch p.Scheme {
	case SchemePBKDF2, SchemeArgon2id:
		if len(rest) < saltSize+tagSize {
			return nil, fmt.Errorf("%w: payload truncated", common.ErrMalformedReference)
		}
		p.Salt = append([]byte(nil), rest[:saltSize]...)
		rest = rest[saltSize:]
	case SchemeBearer:
	default:
		return nil, fmt.Errorf("%w: unknown scheme %d", common.ErrMalformedReference, b[0])
	}

	if len(rest) < tagSize {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", common.ErrMalformedReference)
	}
	p.Ciphertext = append([]byte(nil), rest...)
	return p, nil
}

// Reference is the decoded form of a token.
type Reference struct {
	Mode Mode

	// Key is the bearer key; nil when the payload scheme is a password
	// scheme (the secret is supplied out-of-band).
	Key []byte

	// Self-contained mode only.
	Payload *Payload
	Created time.Time
	TTL     time.Duration

	// Short-id mode only.
	ShortID string
}

// ExpiresAt returns the absolute expiry instant of a self-contained
// reference.
func (r *Reference) ExpiresAt() time.Time {
	return r.Created.Add(r.TTL)
}

// Encode serializes the reference into its URL-safe text form.
func Encode(ref *Reference) (string, error) {
	var body []byte

	switch ref.Mode {
	case ModeSelfContained:
		if ref.Payload == nil {
			return "", fmt.Errorf("encode: self-contained reference without payload")
		}
		blob, err := ref.Payload.MarshalBinary()
		if err != nil {
			return "", fmt.Errorf("encode: %w", err)
		}
		if err := checkKey(ref.Key, ref.Payload.Scheme); err != nil {
			return "", fmt.Errorf("encode: %w", err)
		}
		body = make([]byte, 0, 8+8+1+len(ref.Key)+len(blob))
		body = binary.BigEndian.AppendUint64(body, uint64(ref.Created.UnixMilli()))
		body = binary.BigEndian.AppendUint64(body, uint64(ref.TTL.Milliseconds()))
		body = append(body, byte(len(ref.Key)))
		body = append(body, ref.Key...)
		body = append(body, blob...)

	case ModeShortID:
		if len(ref.ShortID) < minIDLen || len(ref.ShortID) > 255 {
			return "", fmt.Errorf("encode: short id length %d out of range", len(ref.ShortID))
		}
		if len(ref.Key) != 0 && len(ref.Key) != keySize {
			return "", fmt.Errorf("encode: key must be %d bytes or absent", keySize)
		}
		body = make([]byte, 0, 1+len(ref.ShortID)+1+len(ref.Key))
		body = append(body, byte(len(ref.ShortID)))
		body = append(body, ref.ShortID...)
		body = append(body, byte(len(ref.Key)))
		body = append(body, ref.Key...)

	default:
		return "", fmt.Errorf("encode: unknown mode %d", ref.Mode)
	}

	raw := make([]byte, 0, 2+len(body))
	raw = append(raw, Version, byte(ref.Mode))
	raw = append(raw, body...)
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func checkKey(key []byte, scheme Scheme) error {
	if scheme == SchemeBearer {
		if len(key) != keySize {
			return fmt.Errorf("bearer scheme requires a %d-byte key", keySize)
		}
		return nil
	}
	if len(key) != 0 {
		return fmt.Errorf("password scheme must not carry a key")
	}
	return nil
}

// Decode parses a token string.
//
// Strings too short to be a token of either mode fail with
// common.ErrNotAReference and can be silently ignored by the caller
// (arbitrary page fragments land here). Strings long enough to plausibly
// be a note but failing the encoding or structural validation fail with
// common.ErrMalformedReference and should be reported to the user.
// Decode never panics on arbitrary input.
func Decode(s string) (*Reference, error) {
	if len(s) < minTokenLen {
		return nil, common.ErrNotAReference
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64url", common.ErrMalformedReference)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: truncated", common.ErrMalformedReference)
	}
	if raw[0] != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", common.ErrMalformedReference, raw[0])
	}

	ref := &Reference{Mode: Mode(raw[1])}
	body := raw[2:]

	switch ref.Mode {
	case ModeSelfContained:
		return decodeSelfContained(ref, body)
	case ModeShortID:
		return decodeShortID(ref, body)
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", common.ErrMalformedReference, raw[1])
	}
}

func decodeSelfContained(ref *Reference, body []byte) (*Reference, error) {
	if len(body) < 8+8+1 {
		return nil, fmt.Errorf("%w: truncated", common.ErrMalformedReference)
	}
	ref.Created = time.UnixMilli(int64(binary.BigEndian.Uint64(body[:8])))
	ref.TTL = time.Duration(int64(binary.BigEndian.Uint64(body[8:16]))) * time.Millisecond
	body = body[16:]

	keyLen := int(body[0])
	body = body[1:]
	if keyLen != 0 && keyLen != keySize {
		return nil, fmt.Errorf("%w: bad key length %d", common.ErrMalformedReference, keyLen)
	}
	if len(body) < keyLen {
		return nil, fmt.Errorf("%w: truncated", common.ErrMalformedReference)
	}
	if keyLen > 0 {
		ref.Key = append([]byte(nil), body[:keyLen]...)
		body = body[keyLen:]
	}

	payload, err := UnmarshalPayload(body)
	if err != nil {
		return nil, err
	}
	if err := checkKey(ref.Key, payload.Scheme); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedReference, err)
	}
	ref.Payload = payload
	return ref, nil
}

func decodeShortID(ref *Reference, body []byte) (*Reference, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("%w: truncated", common.ErrMalformedReference)
	}
	idLen := int(body[0])
	body = body[1:]
	if idLen < minIDLen {
		return nil, fmt.Errorf("%w: short id length %d below minimum", common.ErrMalformedReference, idLen)
	}
	if len(body) < idLen+1 {
		return nil, fmt.Errorf("%w: truncated", common.ErrMalformedReference)
	}
	ref.ShortID = string(body[:idLen])
	body = body[idLen:]

	keyLen := int(body[0])
	body = body[1:]
	if keyLen != 0 && keyLen != keySize {
		return nil, fmt.Errorf("%w: bad key length %d", common.ErrMalformedReference, keyLen)
	}
	if len(body) != keyLen {
		return nil, fmt.Errorf("%w: trailing data", common.ErrMalformedReference)
	}
	if keyLen > 0 {
		ref.Key = append([]byte(nil), body...)
	}
	return ref, nil
}

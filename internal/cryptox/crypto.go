// Package cryptox implements the note encryption scheme: AES-256-GCM
// with keys either derived from a password (PBKDF2 or Argon2id) or
// generated randomly and carried inside the reference token.
//
// Keys and passwords are never persisted by this package; they exist
// only for the duration of a single call. Callers should wipe secret
// material with randx.Wipe when done.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	"github.com/burnnote/burner/internal/common"
	"github.com/burnnote/burner/internal/randx"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
	// SaltSize is the KDF salt length in bytes.
	SaltSize = 16

	// PBKDF2Iterations matches the parameters of tokens issued by the
	// original web client, so password notes remain decodable.
	PBKDF2Iterations = 100_000
)

// KDF selects the password key-derivation function.
type KDF byte

const (
	KDFPBKDF2 KDF = iota
	KDFArgon2id
)

func (k KDF) String() string {
	switch k {
	case KDFPBKDF2:
		return "pbkdf2"
	case KDFArgon2id:
		return "argon2id"
	default:
		return fmt.Sprintf("kdf(%d)", byte(k))
	}
}

// ParseKDF maps a config string to a KDF identifier.
func ParseKDF(s string) (KDF, error) {
	switch s {
	case "", "pbkdf2":
		return KDFPBKDF2, nil
	case "argon2id":
		return KDFArgon2id, nil
	default:
		return 0, fmt.Errorf("unknown kdf %q", s)
	}
}

// DeriveKey derives a 256-bit key from a password and salt. Deterministic
// given identical inputs.
//
//   - KDFPBKDF2: PBKDF2-HMAC-SHA256, 100 000 iterations.
//   - KDFArgon2id: argon2.IDKey with t=1, m=64 MiB, p=4.
func DeriveKey(password, salt []byte, kdf KDF) ([]byte, error) {
	switch kdf {
	case KDFPBKDF2:
		return pbkdf2.Key(password, salt, PBKDF2Iterations, KeySize, sha256.New), nil
	case KDFArgon2id:
		return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize), nil
	default:
		return nil, fmt.Errorf("unknown kdf %q", kdf)
	}
}

// GenerateKey returns a fresh random 256-bit key for bearer-key mode.
func GenerateKey() ([]byte, error) {
	return randx.Bytes(KeySize)
}

// GenerateSalt returns a fresh random KDF salt. A new salt is generated
// per note and travels alongside the ciphertext.
func GenerateSalt() ([]byte, error) {
	return randx.Bytes(SaltSize)
}

// Encrypt seals plaintext with AES-256-GCM under key. A fresh random
// 12-byte nonce is generated inside every call; reusing a (key, nonce)
// pair breaks confidentiality, so the nonce is deliberately not a
// parameter. The returned ciphertext has the GCM tag appended.
func Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce, err = randx.Bytes(NonceSize)
	if err != nil {
		return nil, nil, err
	}

	ciphertext = aead.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Decrypt opens ciphertext produced by Encrypt. Any tag mismatch (wrong
// password or key, corrupted or tampered data, wrong nonce) fails with
// common.ErrAuthentication; no partial plaintext is ever returned.
func Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(nonce) != NonceSize {
		return nil, common.ErrAuthentication
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrAuthentication
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

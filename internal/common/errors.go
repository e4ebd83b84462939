// Package common defines shared sentinel errors used across client and
// server layers of burner. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound = errors.New("note not found")
	ErrExpired  = errors.New("note expired")

	// Crypto errors. Tag mismatch covers wrong password, wrong key and
	// tampered ciphertext alike; they are never distinguished further.
	ErrAuthentication = errors.New("authentication failed")

	// Reference token errors. ErrNotAReference means the input does not
	// even look like a token (too short, not base64url) and can be
	// silently ignored; ErrMalformedReference means a plausible token
	// failed structural validation and should be reported.
	ErrNotAReference      = errors.New("not a reference token")
	ErrMalformedReference = errors.New("malformed reference token")

	// Transport errors.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

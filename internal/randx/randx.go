// Package randx provides crypto/rand helpers for identifiers, key
// material and secure memory wiping.
package randx

import "crypto/rand"

// idAlphabet is the URL-safe alphabet used for short note identifiers.
const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// Bytes returns size cryptographically random bytes.
func Bytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ID generates a collision-resistant identifier of length URL-safe
// characters. Identifiers index stored notes, so they must never be
// predictable or sequential.
//
// Example:
//
//	id, err := randx.ID(8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(id) // e.g., "f3Xp-9aQ"
func ID(length int) (string, error) {
	b, err := Bytes(length)
	if err != nil {
		return "", err
	}
	for i := range b {
		b[i] = idAlphabet[int(b[i])&63]
	}
	return string(b), nil
}

// Wipe overwrites the contents of the provided byte slice with zeros.
// This is useful for removing sensitive data such as passwords or
// cryptographic keys from memory after use.
//
// If the slice is nil, the function does nothing.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

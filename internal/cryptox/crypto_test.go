package cryptox

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burnnote/burner/internal/common"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	for _, kdf := range []KDF{KDFPBKDF2, KDFArgon2id} {
		key1, err := DeriveKey(password, salt, kdf)
		require.NoError(t, err)
		key2, err := DeriveKey(password, salt, kdf)
		require.NoError(t, err)

		// same inputs -> same output
		if !bytes.Equal(key1, key2) {
			t.Errorf("%v: expected same result for same inputs, got different", kdf)
		}
	}
}

func TestDeriveKey_KnownVectors(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	// snapshot tests pinning the KDF parameters
	vectors := map[KDF]string{
		KDFPBKDF2:   "9748d9ecd89f2a27d5d46a4a8fc18fbd1a09c6b3a02e47d152ab0d03e7bb1ee1",
		KDFArgon2id: "9290403300158e19f27e48e7087f7383b03065bf5b25ef23ebc40229616cd8b3",
	}

	for kdf, expected := range vectors {
		key, err := DeriveKey(password, salt, kdf)
		require.NoError(t, err)
		if got := hex.EncodeToString(key); got != expected {
			t.Errorf("%v: expected %s, got %s", kdf, expected, got)
		}
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	key1, err := DeriveKey(password, []byte("salt-1"), KDFPBKDF2)
	require.NoError(t, err)
	key2, err := DeriveKey(password, []byte("salt-2"), KDFPBKDF2)
	require.NoError(t, err)

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestParseKDF(t *testing.T) {
	kdf, err := ParseKDF("")
	require.NoError(t, err)
	assert.Equal(t, KDFPBKDF2, kdf)

	kdf, err = ParseKDF("argon2id")
	require.NoError(t, err)
	assert.Equal(t, KDFArgon2id, kdf)

	_, err = ParseKDF("scrypt")
	assert.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	plaintext := []byte("the quick brown fox")
	ciphertext, nonce, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	require.Len(t, nonce, NonceSize)
	// GCM appends a 16-byte tag
	assert.Equal(t, len(plaintext)+16, len(ciphertext))

	got, err := Decrypt(ciphertext, nonce, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	_, nonce1, err := Encrypt([]byte("p"), key)
	require.NoError(t, err)
	_, nonce2, err := Encrypt([]byte("p"), key)
	require.NoError(t, err)

	assert.NotEqual(t, nonce1, nonce2)
}

func TestDecrypt_WrongKey(t *testing.T) {
	key1, err := GenerateKey()
	require.NoError(t, err)
	key2, err := GenerateKey()
	require.NoError(t, err)

	ciphertext, nonce, err := Encrypt([]byte("secret"), key1)
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, nonce, key2)
	assert.ErrorIs(t, err, common.ErrAuthentication)
}

func TestDecrypt_WrongPassword(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	key1, err := DeriveKey([]byte("pw1"), salt, KDFPBKDF2)
	require.NoError(t, err)
	key2, err := DeriveKey([]byte("pw2"), salt, KDFPBKDF2)
	require.NoError(t, err)

	ciphertext, nonce, err := Encrypt([]byte("secret"), key1)
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, nonce, key2)
	assert.ErrorIs(t, err, common.ErrAuthentication)
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	ciphertext, nonce, err := Encrypt([]byte("secret"), key)
	require.NoError(t, err)
	ciphertext[0] ^= 0xff

	_, err = Decrypt(ciphertext, nonce, key)
	assert.ErrorIs(t, err, common.ErrAuthentication)
}

func TestDecrypt_BadNonceLength(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	ciphertext, _, err := Encrypt([]byte("secret"), key)
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, []byte("short"), key)
	assert.ErrorIs(t, err, common.ErrAuthentication)
}

func TestEncrypt_InvalidKeySize(t *testing.T) {
	_, _, err := Encrypt([]byte("p"), []byte("too-short"))
	assert.Error(t, err)
}

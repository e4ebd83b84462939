package randx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_LengthAndAlphabet(t *testing.T) {
	id, err := ID(8)
	require.NoError(t, err)
	assert.Len(t, id, 8)
	for _, c := range id {
		assert.True(t, strings.ContainsRune(idAlphabet, c), "unexpected character %q", c)
	}
}

func TestID_EntropyHint(t *testing.T) {
	a, err := ID(16)
	require.NoError(t, err)
	b, err := ID(16)
	require.NoError(t, err)
	// astronomically unlikely to collide
	assert.NotEqual(t, a, b)
}

func TestBytes_Size(t *testing.T) {
	b, err := Bytes(32)
	require.NoError(t, err)
	assert.Len(t, b, 32)
}

func TestWipe(t *testing.T) {
	b := []byte("sensitive")
	Wipe(b)
	for i, c := range b {
		if c != 0 {
			t.Fatalf("byte %d not wiped", i)
		}
	}
	Wipe(nil) // must not panic
}

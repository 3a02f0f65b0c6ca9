package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong-pass"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("same-input")
	require.NoError(t, err)
	h2, err := HashPassword("same-input")
	require.NoError(t, err)
	// Fresh salt per call, so the digests must differ.
	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword(h1, "same-input"))
	assert.True(t, VerifyPassword(h2, "same-input"))
}

func TestHashPasswordFormat(t *testing.T) {
	hash, err := HashPassword("abc123")
	require.NoError(t, err)
	parts := strings.Split(hash, ".")
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 64) // 32-byte key, hex
	assert.Len(t, parts[1], 32) // 16-byte salt, hex
}

func TestVerifyPasswordMalformedStored(t *testing.T) {
	for _, stored := range []string{
		"",
		"no-separator",
		"deadbeef.",
		".deadbeef",
		"zzzz.zzzz",
		"deadbeef.nothex!",
	} {
		assert.False(t, VerifyPassword(stored, "whatever"), "stored=%q", stored)
	}
}

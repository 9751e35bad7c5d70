package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("128 bit", func(t *testing.T) {
		tok, err := GenerateToken(TokenSize128)
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(tok)
		require.NoError(t, err)
		require.Len(t, raw, TokenSize128)
	})

	t.Run("256 bit", func(t *testing.T) {
		tok, err := GenerateToken(TokenSize256)
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(tok)
		require.NoError(t, err)
		require.Len(t, raw, TokenSize256)
	})

	t.Run("unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			tok, err := GenerateToken(TokenSize128)
			require.NoError(t, err)
			require.False(t, seen[tok], "tokens must not repeat")
			seen[tok] = true
		}
	})
}

func TestFingerprintToken(t *testing.T) {
	tok, err := GenerateToken(TokenSize256)
	require.NoError(t, err)

	fp1 := FingerprintToken(tok)
	fp2 := FingerprintToken(tok)
	require.Equal(t, fp1, fp2, "fingerprint must be deterministic")
	require.NotEqual(t, tok, fp1)

	other, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, fp1, FingerprintToken(other))
}

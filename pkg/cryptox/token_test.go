package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		size    int
		wantLen int
	}{
		{TokenSize128, 22},
		{TokenSize256, 43},
		{TokenSize512, 86},
	}
	for _, tt := range tests {
		a, err := GenerateToken(tt.size)
		require.NoError(t, err)
		require.Len(t, a, tt.wantLen)

		b, err := GenerateToken(tt.size)
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		tok, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, tok)
	}
	require.Panics(t, func() { MustGenerateToken(0) })
}

func TestFingerprintToken(t *testing.T) {
	require.Equal(t, FingerprintToken("a"), FingerprintToken("a"))
	require.NotEqual(t, FingerprintToken("a"), FingerprintToken("b"))
	require.Len(t, FingerprintToken("a"), 43)
}

func TestTokensEqual(t *testing.T) {
	require.True(t, TokensEqual("secret", "secret"))
	require.False(t, TokensEqual("secret", "Secret"))
	require.False(t, TokensEqual("secret", ""))
}

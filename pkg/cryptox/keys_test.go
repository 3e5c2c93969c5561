package cryptox_test

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/aussiebroadwan/dds2/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func parsePEM(t *testing.T, b []byte) any {
	t.Helper()
	block, _ := pem.Decode(b)
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	return key
}

func TestGenerateEd25519Key(t *testing.T) {
	b, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	key, ok := parsePEM(t, b).(ed25519.PrivateKey)
	require.True(t, ok)
	require.Len(t, key, ed25519.PrivateKeySize)
}

func TestGenerateES256Key(t *testing.T) {
	b, err := cryptox.GenerateES256Key()
	require.NoError(t, err)

	key, ok := parsePEM(t, b).(*ecdsa.PrivateKey)
	require.True(t, ok)
	require.Equal(t, elliptic.P256(), key.Curve)
}

func TestGeneratedKeysAreUnique(t *testing.T) {
	a, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	b, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

package jwtx_test

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"testing"

	"github.com/aussiebroadwan/dds2/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestKeySet_AddAndGet(t *testing.T) {
	ks := jwtx.NewKeySet()
	require.False(t, ks.IsReady())

	km := newKM(t, "dds")
	s := km.GetSigner()
	require.NoError(t, ks.AddSigner(s))
	require.True(t, ks.IsReady())

	pub, err := ks.Get(s.KID())
	require.NoError(t, err)
	require.IsType(t, ed25519.PublicKey{}, pub)

	require.Error(t, ks.AddSigner(s), "duplicate kid")

	_, err = ks.Get("missing")
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}

func TestKeySet_ES256RoundTrip(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "dds", Algorithm: jwtx.AlgorithmES256, NumKeys: 1})
	require.NoError(t, err)

	jwk := km.KeySet.PublicJWKS().Keys[0]
	require.Equal(t, "EC", jwk.Kty)
	require.Equal(t, "P-256", jwk.Crv)
	require.Len(t, jwk.X, 43)
	require.Len(t, jwk.Y, 43)

	pub, err := km.KeySet.Get(jwk.Kid)
	require.NoError(t, err)
	require.IsType(t, &ecdsa.PublicKey{}, pub)
}

func TestKeySet_RejectsUnsupported(t *testing.T) {
	ks := jwtx.NewKeySet()
	require.Error(t, ks.AddJWK(jwtx.JWK{Kty: "RSA", Kid: "r"}))
	require.Error(t, ks.AddJWK(jwtx.JWK{Kty: "OKP", Crv: "X25519", Kid: "x"}))
	require.Error(t, ks.AddJWK(jwtx.JWK{Kty: "OKP", Crv: "Ed25519", Kid: "e", X: "!!"}))
}

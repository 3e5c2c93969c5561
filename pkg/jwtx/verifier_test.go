package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/dds2/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newKM(t *testing.T, issuer string) *jwtx.KeyManager {
	t.Helper()
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: issuer, NumKeys: 1})
	require.NoError(t, err)
	return km
}

func TestVerify_RejectsOtherKeySet(t *testing.T) {
	a, b := newKM(t, "dds"), newKM(t, "dds")

	tok, err := a.GetSigner().Sign(jwtx.NewAccessClaims("u", "", nil, time.Minute, "dds", time.Now()))
	require.NoError(t, err)

	_, err = b.Verifier.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}

func TestVerify_RejectsWrongIssuer(t *testing.T) {
	km := newKM(t, "dds")
	tok, err := km.GetSigner().Sign(jwtx.NewAccessClaims("u", "", nil, time.Minute, "elsewhere", time.Now()))
	require.NoError(t, err)

	_, err = km.Verifier.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerify_RejectsExpired(t *testing.T) {
	km := newKM(t, "dds")
	tok, err := km.GetSigner().Sign(jwtx.NewAccessClaims("u", "", nil, time.Minute, "dds", time.Now().Add(-time.Hour)))
	require.NoError(t, err)

	_, err = km.Verifier.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerify_RejectsTampered(t *testing.T) {
	km := newKM(t, "dds")
	tok, err := km.GetSigner().Sign(jwtx.NewAccessClaims("u", "", nil, time.Minute, "dds", time.Now()))
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	other, err := km.GetSigner().Sign(jwtx.NewAccessClaims("admin", "", nil, time.Minute, "dds", time.Now()))
	require.NoError(t, err)
	forged := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]

	_, err = km.Verifier.Verify(forged)
	require.Error(t, err)

	_, err = km.Verifier.Verify("not-a-jwt")
	require.Error(t, err)
}

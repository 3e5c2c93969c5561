package jwtx

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ES256Signer signs tokens with an ECDSA P-256 key.
type ES256Signer struct {
	kid string
	key *ecdsa.PrivateKey
}

func newES256Signer(kid string, priv any) (*ES256Signer, error) {
	key, ok := priv.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an ECDSA private key")
	}
	if key.Curve != elliptic.P256() {
		return nil, errors.New("jwtx: ES256 requires a P-256 key")
	}
	return &ES256Signer{kid: kid, key: key}, nil
}

func (s *ES256Signer) Alg() string { return AlgorithmES256 }
func (s *ES256Signer) KID() string { return s.kid }

func (s *ES256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

func (s *ES256Signer) PublicJWK() JWK {
	return NewES256JWK(s.kid, "sig", AlgorithmES256, &s.key.PublicKey)
}

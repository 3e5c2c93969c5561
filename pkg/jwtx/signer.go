package jwtx

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// Supported JWT signing algorithms.
const (
	AlgorithmES256 = "ES256"
	AlgorithmEdDSA = "EdDSA"
)

// Signer is anything that can sign access tokens and publish its public key.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	PublicJWK() JWK
}

// NewSigner builds a signer for alg from a PKCS8 PEM private key.
func NewSigner(alg, kid string, pemKey []byte) (Signer, error) {
	priv, err := parsePKCS8(pemKey)
	if err != nil {
		return nil, err
	}

	var s Signer
	switch alg {
	case AlgorithmEdDSA:
		s, err = newEdDSASigner(kid, priv)
	case AlgorithmES256:
		s, err = newES256Signer(kid, priv)
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: EdDSA, ES256)", alg)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func parsePKCS8(pemKey []byte) (any, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM private key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (PKCS8 required)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	return priv, nil
}

package jwtx

import (
	"fmt"
	"math/rand/v2"

	"github.com/aussiebroadwan/dds2/pkg/cryptox"
)

// KeyManager owns the in-memory signing keys for one process. Keys are never
// persisted, so every restart invalidates outstanding access tokens; refresh
// tokens live in the database and survive.
type KeyManager struct {
	Verifier  Verifier
	KeySet    *KeySet
	algorithm string
	signers   []Signer
}

// KeyManagerOptions configures NewEphemeralKeyManager.
type KeyManagerOptions struct {
	// Algorithm is EdDSA (default) or ES256.
	Algorithm string

	// Issuer is stamped into and required on every token.
	Issuer string

	// NumKeys is clamped to [1, 10]; zero means 3.
	NumKeys int
}

// NewEphemeralKeyManager generates NumKeys fresh signing keys with random key
// IDs and wires them into a KeySet and a Verifier.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}
	if opts.Algorithm == "" {
		opts.Algorithm = AlgorithmEdDSA
	}

	n := opts.NumKeys
	if n <= 0 {
		n = 3
	}
	n = min(n, 10)

	keyset := NewKeySet()
	signers := make([]Signer, 0, n)
	for i := range n {
		signer, err := generateSigner(opts.Algorithm)
		if err != nil {
			return nil, fmt.Errorf("jwtx: generate signer %d: %w", i+1, err)
		}
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: add signer %d to keyset: %w", i+1, err)
		}
		signers = append(signers, signer)
	}

	return &KeyManager{
		Verifier:  NewVerifier(keyset, opts.Issuer),
		KeySet:    keyset,
		algorithm: opts.Algorithm,
		signers:   signers,
	}, nil
}

func generateSigner(alg string) (Signer, error) {
	kid, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, err
	}

	var pemKey []byte
	switch alg {
	case AlgorithmEdDSA:
		pemKey, err = cryptox.GenerateEd25519Key()
	case AlgorithmES256:
		pemKey, err = cryptox.GenerateES256Key()
	default:
		return nil, fmt.Errorf("unsupported algorithm %q (supported: EdDSA, ES256)", alg)
	}
	if err != nil {
		return nil, err
	}

	return NewSigner(alg, kid, pemKey)
}

// Algorithm returns the signing algorithm in use.
func (km *KeyManager) Algorithm() string { return km.algorithm }

// IsReady reports whether verification keys are loaded.
func (km *KeyManager) IsReady() bool { return km.KeySet.IsReady() }

// GetSigner picks one of the signing keys at random to spread signatures
// across keys.
func (km *KeyManager) GetSigner() Signer {
	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

// NumSigners returns the number of signing keys.
func (km *KeyManager) NumSigners() int { return len(km.signers) }

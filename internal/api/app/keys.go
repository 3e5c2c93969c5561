package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/dds2/pkg/jwtx"
)

// InitKeys generates the signing keys for access tokens.
//
// Keys are ephemeral: they live in memory only, so every access token
// becomes invalid when the process restarts. Refresh tokens are stored in the
// database and keep working, which lets clients recover transparently.
//
// Supported algorithms: EdDSA (default) and ES256. API_NUM_KEYS controls how
// many keys are generated; each token is signed by one of them at random.
func InitKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	logger.Info("initializing ephemeral key manager",
		"algorithm", cfg.Algorithm,
		"num_keys", cfg.NumKeys,
	)

	keyManager, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: cfg.Algorithm,
		Issuer:    cfg.Issuer,
		NumKeys:   cfg.NumKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
	}

	logger.Info("generated ephemeral signing keys",
		"algorithm", keyManager.Algorithm(),
		"num_keys", keyManager.NumSigners(),
		"issuer", cfg.Issuer,
	)
	logger.Warn("access tokens issued before this start are no longer valid")
	return keyManager, nil
}

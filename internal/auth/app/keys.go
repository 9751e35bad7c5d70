package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/inkcart/inkcart/pkg/cryptox"
	"github.com/inkcart/inkcart/pkg/jwtx"
)

// InitSigningKey loads the Ed25519 signing key from cfg.SigningKeyFile,
// generating and persisting one on first start. The key id is derived from
// the key material so it stays stable across restarts.
func InitSigningKey(cfg Config, logger *slog.Logger) (*jwtx.EdDSAKeyPair, error) {
	pem, err := os.ReadFile(cfg.SigningKeyFile)
	if os.IsNotExist(err) {
		pem, err = cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		if err := os.WriteFile(cfg.SigningKeyFile, pem, 0o600); err != nil {
			return nil, fmt.Errorf("persist signing key: %w", err)
		}
		logger.Info("generated new signing key", "path", cfg.SigningKeyFile)
	} else if err != nil {
		return nil, fmt.Errorf("read signing key: %w", err)
	}

	kid := cryptox.FingerprintToken(string(pem))[:8]

	keys, err := jwtx.NewEdDSAKeyPair(kid, pem, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}

	logger.Info("signing key loaded", "kid", kid, "issuer", cfg.Issuer)
	return keys, nil
}

package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token entropy sizes in bytes before encoding.
const (
	// TokenSize128 suits short-lived values such as state nonces and backup codes.
	TokenSize128 = 16
	// TokenSize256 is the recommended size for refresh tokens.
	TokenSize256 = 32
)

// GenerateToken returns a cryptographically random, base64url-encoded opaque
// token of the given byte size.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}
	buf, err := randomBytes(size)
	if err != nil {
		return "", fmt.Errorf("cryptox: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the deterministic base64url SHA-256 digest of a
// token. Stores hold fingerprints, never the opaque value, so a database
// leak does not leak usable bearer secrets.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

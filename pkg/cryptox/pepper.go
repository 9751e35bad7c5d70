package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// A pepper is a server-side secret mixed into every password hash so that a
// leaked database alone is not enough to mount an offline attack. It lives
// in a file outside the database; the first startup generates one.
var (
	pepperOnce sync.Once
	pepperFile = "pepper"
	pepper     string
)

// SetPepperPath overrides the pepper file location. Call before the first
// hash or verify.
func SetPepperPath(path string) { pepperFile = path }

// GetPepper returns the pepper, loading or generating it on first use.
func GetPepper() string {
	pepperOnce.Do(func() {
		p, err := loadOrGeneratePepper(pepperFile)
		if err != nil {
			slog.Error("cryptox: pepper unavailable", "err", err)
			os.Exit(1)
		}
		pepper = p
	})
	return pepper
}

func loadOrGeneratePepper(path string) (string, error) {
	path = filepath.Clean(path)

	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		return string(data), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", err
	}

	raw, err := randomBytes(32)
	if err != nil {
		return "", err
	}
	p := base64.RawURLEncoding.EncodeToString(raw)

	if err := os.WriteFile(path, []byte(p), 0o600); err != nil {
		return "", err
	}
	return p, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

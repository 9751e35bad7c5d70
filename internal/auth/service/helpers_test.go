package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inkcart/inkcart/internal/auth/store/drivers/sqlite"
	"github.com/inkcart/inkcart/pkg/cryptox"
	"github.com/inkcart/inkcart/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// The pepper is a process-wide singleton; point it at a throwaway file
	// before the first hash is computed.
	path := filepath.Join(os.TempDir(), "inkcart-service-test-pepper")
	_ = os.Remove(path)
	cryptox.SetPepperPath(path)

	code := m.Run()
	_ = os.Remove(path)
	os.Exit(code)
}

type testEnv struct {
	Store     *sqlite.Store
	Keys      *jwtx.EdDSAKeyPair
	Tokens    *TokenService
	Auth      *AuthService
	TwoFactor *TwoFactorService
	Linker    *LinkerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "auth.db") + "?_busy_timeout=5000"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	keys, err := jwtx.NewEdDSAKeyPair("test-key", pemKey, "inkcart-test")
	require.NoError(t, err)

	tokens := &TokenService{
		Signer:     keys,
		Store:      st,
		Issuer:     "inkcart-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}

	return &testEnv{
		Store:     st,
		Keys:      keys,
		Tokens:    tokens,
		Auth:      &AuthService{Store: st, Tokens: tokens},
		TwoFactor: &TwoFactorService{Store: st, Issuer: "InkCart"},
		Linker:    &LinkerService{Store: st, Tokens: tokens},
	}
}

func (e *testEnv) register(t *testing.T, email, password string) string {
	t.Helper()

	_, u, err := e.Auth.Register(t.Context(), RegisterParams{
		Email:       email,
		Password:    password,
		DisplayName: "Test Reader",
	})
	require.NoError(t, err)
	return u.ID
}

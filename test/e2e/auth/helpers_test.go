package auth_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inkcart/inkcart/internal/auth/domain"
	authhttp "github.com/inkcart/inkcart/internal/auth/http"
	"github.com/inkcart/inkcart/internal/auth/oauth"
	"github.com/inkcart/inkcart/internal/auth/service"
	"github.com/inkcart/inkcart/internal/auth/store/drivers/sqlite"
	"github.com/inkcart/inkcart/pkg/authsdk"
	"github.com/inkcart/inkcart/pkg/cryptox"
	"github.com/inkcart/inkcart/pkg/httpx"
	"github.com/inkcart/inkcart/pkg/jwtx"
	"github.com/inkcart/inkcart/pkg/slogx"

	"github.com/stretchr/testify/require"
)

/*
 * Common setup and helpers for the auth service end-to-end tests. Each test
 * runs the full router in-process against its own sqlite database and talks
 * to it through the SDK client.
 */

const (
	testPassword = "Sup3rSecret!pass"
)

// Production rate limits are kept aside so the rate-limit test can opt back
// into them; every other test runs with limits high enough to never trip.
var (
	productionStrict   = httpx.StrictLimit
	productionModerate = httpx.ModerateLimit
)

func TestMain(m *testing.M) {
	pepper := filepath.Join(os.TempDir(), "inkcart-e2e-test-pepper")
	_ = os.Remove(pepper)
	cryptox.SetPepperPath(pepper)

	// Tests make many rapid requests from one address; the production
	// limits would turn that into spurious 429s.
	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed

	code := m.Run()
	_ = os.Remove(pepper)
	os.Exit(code)
}

// fakeGoogle implements oauth.Provider without the network. Exchange resolves
// codes from a fixture map.
type fakeGoogle struct {
	identities map[string]oauth.Identity
}

func (f *fakeGoogle) Name() domain.Provider { return domain.ProviderGoogle }

func (f *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.google.example/o/oauth2/auth?state=" + state
}

func (f *fakeGoogle) Exchange(_ context.Context, code string) (oauth.Identity, error) {
	id, ok := f.identities[code]
	if !ok {
		return oauth.Identity{}, fmt.Errorf("unknown code %q", code)
	}
	return id, nil
}

type testServer struct {
	URL    string
	Client *authsdk.Client
	Store  *sqlite.Store
	Google *fakeGoogle
}

// startServer wires the full service against a throwaway database and serves
// it from an in-process listener.
func startServer(t *testing.T) *testServer {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "auth.db") + "?_busy_timeout=5000"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	keys, err := jwtx.NewEdDSAKeyPair("e2e-key", pemKey, "inkcart-e2e")
	require.NoError(t, err)

	tokens := &service.TokenService{
		Signer:     keys,
		Store:      st,
		Issuer:     "inkcart-e2e",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	google := &fakeGoogle{identities: map[string]oauth.Identity{}}

	router := authhttp.NewRouter(keys, keys, "e2e", st, slogx.New(slogx.Config{
		Level:   "error",
		Format:  "text",
		Service: "inkcart-auth-e2e",
	}))
	router.AuthService = &service.AuthService{Store: st, Tokens: tokens}
	router.TokenService = tokens
	router.LinkerService = &service.LinkerService{Store: st, Tokens: tokens}
	router.TwoFactorService = &service.TwoFactorService{Store: st, Issuer: "InkCart"}
	router.GoogleProvider = google
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		Client: authsdk.NewClient(srv.URL),
		Store:  st,
		Google: google,
	}
}

// registerUser signs up a fresh account and returns its first session.
func registerUser(t *testing.T, ts *testServer, email string) authsdk.TokenResponse {
	t.Helper()

	resp, err := ts.Client.Register(t.Context(), authsdk.RegisterRequest{
		Email:       email,
		Password:    testPassword,
		DisplayName: "E2E Reader",
	})
	require.NoError(t, err)
	assertTokenResponse(t, resp)
	return resp
}

// promoteToAdmin raises a user's role directly in the store, standing in for
// the out-of-band bootstrap a fresh deployment would use.
func promoteToAdmin(t *testing.T, ts *testServer, userID string) {
	t.Helper()
	require.NoError(t, ts.Store.Users().UpdateRole(t.Context(), userID, domain.RoleAdmin))
}

func assertTokenResponse(t *testing.T, resp authsdk.TokenResponse) {
	t.Helper()
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Positive(t, resp.ExpiresIn)
	require.NotNil(t, resp.User)
}

func assertStatusCode(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
}

// noRedirectClient returns redirects to the caller instead of following
// them, so tests can inspect Location headers and cookies.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 10 * time.Second,
	}
}

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/inkcart/inkcart/internal/auth/domain"
	"github.com/inkcart/inkcart/internal/auth/oauth"
	"github.com/inkcart/inkcart/pkg/authsdk"

	"github.com/stretchr/testify/require"
)

// startGoogleFlow hits the consent redirect and returns the state nonce plus
// the cookie carrying it.
func startGoogleFlow(t *testing.T, ts *testServer) (string, *http.Cookie) {
	t.Helper()

	resp, err := noRedirectClient().Get(ts.URL + "/auth/google")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "accounts.google.example", loc.Host)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	var stateCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "oauth_state" {
			stateCookie = c
		}
	}
	require.NotNil(t, stateCookie, "redirect must set the state cookie")
	require.Equal(t, state, stateCookie.Value, "cookie and redirect carry the same nonce")
	require.True(t, stateCookie.HttpOnly)

	return state, stateCookie
}

// completeGoogleFlow runs the callback leg and decodes the session response.
func completeGoogleFlow(t *testing.T, ts *testServer, code, state string, cookie *http.Cookie) authsdk.TokenResponse {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet,
		ts.URL+"/auth/google/callback?code="+url.QueryEscape(code)+"&state="+url.QueryEscape(state), nil)
	require.NoError(t, err)
	req.AddCookie(cookie)

	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session authsdk.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	return session
}

func TestGoogleSignIn_ProvisionsAccount(t *testing.T) {
	ts := startServer(t)
	ts.Google.identities["code-new"] = oauth.Identity{
		Provider: domain.ProviderGoogle,
		Subject:  "google-sub-100",
		Email:    "fresh@example.com",
		Name:     "Fresh Reader",
	}

	state, cookie := startGoogleFlow(t, ts)
	session := completeGoogleFlow(t, ts, "code-new", state, cookie)
	assertTokenResponse(t, session)
	require.Equal(t, "fresh@example.com", session.User.Email)
	require.Equal(t, "CUSTOMER", session.User.Role)

	t.Run("session works like any other", func(t *testing.T) {
		me, err := ts.Client.Me(t.Context(), session.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "Fresh Reader", me.DisplayName)

		_, err = ts.Client.Refresh(t.Context(), session.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("returning subject maps to the same account", func(t *testing.T) {
		state, cookie := startGoogleFlow(t, ts)
		again := completeGoogleFlow(t, ts, "code-new", state, cookie)
		require.Equal(t, session.User.ID, again.User.ID)
	})
}

func TestGoogleSignIn_LinksExistingAccount(t *testing.T) {
	ts := startServer(t)
	existing := registerUser(t, ts, "linked@example.com")

	ts.Google.identities["code-link"] = oauth.Identity{
		Provider: domain.ProviderGoogle,
		Subject:  "google-sub-200",
		Email:    "LINKED@example.com",
		Name:     "Linked Reader",
	}

	state, cookie := startGoogleFlow(t, ts)
	session := completeGoogleFlow(t, ts, "code-link", state, cookie)
	require.Equal(t, existing.User.ID, session.User.ID, "matching email links instead of duplicating")

	// Password login still works on the linked account.
	resp, challenge, err := ts.Client.Login(t.Context(), "linked@example.com", testPassword)
	require.NoError(t, err)
	require.Nil(t, challenge)
	assertTokenResponse(t, resp)
}

func TestGoogleCallback_Failures(t *testing.T) {
	ts := startServer(t)
	ts.Google.identities["code-ok"] = oauth.Identity{
		Provider: domain.ProviderGoogle,
		Subject:  "google-sub-300",
		Email:    "cb@example.com",
	}

	get := func(t *testing.T, path string, cookies ...*http.Cookie) *http.Response {
		t.Helper()
		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, ts.URL+path, nil)
		require.NoError(t, err)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		resp, err := noRedirectClient().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("missing params", func(t *testing.T) {
		resp := get(t, "/auth/google/callback")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("state mismatch", func(t *testing.T) {
		_, cookie := startGoogleFlow(t, ts)
		resp := get(t, "/auth/google/callback?code=code-ok&state=tampered", cookie)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing state cookie", func(t *testing.T) {
		state, _ := startGoogleFlow(t, ts)
		resp := get(t, "/auth/google/callback?code=code-ok&state="+state)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown code", func(t *testing.T) {
		state, cookie := startGoogleFlow(t, ts)
		resp := get(t, "/auth/google/callback?code=bogus&state="+state, cookie)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

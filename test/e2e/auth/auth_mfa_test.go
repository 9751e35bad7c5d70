package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/inkcart/inkcart/pkg/authsdk"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

// enrollMFA drives the full setup-then-verify flow over the API and returns
// the setup material for minting codes later.
func enrollMFA(t *testing.T, ts *testServer, accessToken string) authsdk.TwoFactorSetupResponse {
	t.Helper()

	setup, err := ts.Client.TwoFactorSetup(t.Context(), accessToken)
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.NotEmpty(t, setup.OTPAuthURL)
	require.Len(t, setup.BackupCodes, 10)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, ts.Client.TwoFactorVerify(t.Context(), accessToken, code))

	return setup
}

func TestMFAEnrollment(t *testing.T) {
	ts := startServer(t)
	session := registerUser(t, ts, "mfa@example.com")

	setup := enrollMFA(t, ts, session.AccessToken)

	me, err := ts.Client.Me(t.Context(), session.AccessToken)
	require.NoError(t, err)
	require.True(t, me.TwoFactor)

	t.Run("plain login returns a challenge", func(t *testing.T) {
		resp, challenge, err := ts.Client.Login(t.Context(), "mfa@example.com", testPassword)
		require.NoError(t, err)
		require.NotNil(t, challenge)
		require.True(t, challenge.TwoFactorRequired)
		require.Empty(t, resp.AccessToken, "no tokens before the second factor")
	})

	t.Run("totp completes the login", func(t *testing.T) {
		code, err := totp.GenerateCode(setup.Secret, time.Now())
		require.NoError(t, err)

		resp, err := ts.Client.LoginWithTwoFactor(t.Context(), "mfa@example.com", testPassword, code)
		require.NoError(t, err)
		assertTokenResponse(t, resp)
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		_, err := ts.Client.LoginWithTwoFactor(t.Context(), "mfa@example.com", testPassword, "000000")
		assertStatusCode(t, err, http.StatusUnauthorized)
	})

	t.Run("backup code works exactly once", func(t *testing.T) {
		backup := setup.BackupCodes[0]

		resp, err := ts.Client.LoginWithTwoFactor(t.Context(), "mfa@example.com", testPassword, backup)
		require.NoError(t, err)
		assertTokenResponse(t, resp)

		_, err = ts.Client.LoginWithTwoFactor(t.Context(), "mfa@example.com", testPassword, backup)
		assertStatusCode(t, err, http.StatusUnauthorized)
	})
}

func TestMFAVerify_Failures(t *testing.T) {
	ts := startServer(t)
	session := registerUser(t, ts, "mfa-verify@example.com")

	t.Run("verify before setup", func(t *testing.T) {
		err := ts.Client.TwoFactorVerify(t.Context(), session.AccessToken, "123456")
		assertStatusCode(t, err, http.StatusBadRequest)
	})

	t.Run("wrong code does not activate", func(t *testing.T) {
		_, err := ts.Client.TwoFactorSetup(t.Context(), session.AccessToken)
		require.NoError(t, err)

		err = ts.Client.TwoFactorVerify(t.Context(), session.AccessToken, "000000")
		assertStatusCode(t, err, http.StatusBadRequest)

		me, err := ts.Client.Me(t.Context(), session.AccessToken)
		require.NoError(t, err)
		require.False(t, me.TwoFactor)
	})

	t.Run("requires authentication", func(t *testing.T) {
		_, err := ts.Client.TwoFactorSetup(t.Context(), "")
		assertStatusCode(t, err, http.StatusForbidden)
	})
}

func TestMFADisable(t *testing.T) {
	ts := startServer(t)
	session := registerUser(t, ts, "mfa-off@example.com")
	setup := enrollMFA(t, ts, session.AccessToken)

	t.Run("wrong code keeps it on", func(t *testing.T) {
		err := ts.Client.TwoFactorDisable(t.Context(), session.AccessToken, "000000")
		assertStatusCode(t, err, http.StatusBadRequest)
	})

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, ts.Client.TwoFactorDisable(t.Context(), session.AccessToken, code))

	me, err := ts.Client.Me(t.Context(), session.AccessToken)
	require.NoError(t, err)
	require.False(t, me.TwoFactor)

	// Plain login is back to a single factor.
	resp, challenge, err := ts.Client.Login(t.Context(), "mfa-off@example.com", testPassword)
	require.NoError(t, err)
	require.Nil(t, challenge)
	assertTokenResponse(t, resp)
}

func TestMFASetup_RejectedWhenEnabled(t *testing.T) {
	ts := startServer(t)
	session := registerUser(t, ts, "mfa-twice@example.com")
	enrollMFA(t, ts, session.AccessToken)

	_, err := ts.Client.TwoFactorSetup(t.Context(), session.AccessToken)
	assertStatusCode(t, err, http.StatusBadRequest)
}

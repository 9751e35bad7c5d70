package service

import (
	"testing"
	"time"

	"github.com/inkcart/inkcart/internal/auth/domain"
	"github.com/inkcart/inkcart/pkg/cryptox"
	"github.com/inkcart/inkcart/pkg/idx"

	"github.com/stretchr/testify/require"
)

func TestIssuePair(t *testing.T) {
	env := newTestEnv(t)
	userID := env.register(t, "issue@example.com", "hunter2hunter2")

	u, err := env.Auth.GetUserByID(t.Context(), userID)
	require.NoError(t, err)

	pair, err := env.Tokens.IssuePair(t.Context(), u)
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.Equal(t, 15*time.Minute, pair.ExpiresIn)

	claims, err := env.Keys.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, claims.Subject)
	require.Equal(t, "inkcart-test", claims.Issuer)

	// The opaque refresh value is stored only as a fingerprint.
	rt, err := env.Store.RefreshTokens().GetByHash(t.Context(), cryptox.FingerprintToken(pair.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, userID, rt.UserID)
	require.NotEqual(t, pair.RefreshToken, rt.TokenHash)
}

func TestRotate(t *testing.T) {
	env := newTestEnv(t)
	pair, _, err := env.Auth.Register(t.Context(), RegisterParams{
		Email:       "rotate@example.com",
		Password:    "hunter2hunter2",
		DisplayName: "Rotator",
	})
	require.NoError(t, err)

	next, u, err := env.Tokens.Rotate(t.Context(), pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "rotate@example.com", u.Email)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	t.Run("consumed token is rejected", func(t *testing.T) {
		_, _, err := env.Tokens.Rotate(t.Context(), pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("new token still works", func(t *testing.T) {
		_, _, err := env.Tokens.Rotate(t.Context(), next.RefreshToken)
		require.NoError(t, err)
	})
}

func TestRotate_Expired(t *testing.T) {
	env := newTestEnv(t)
	userID := env.register(t, "stale@example.com", "hunter2hunter2")

	const opaque = "stale-opaque-value"
	require.NoError(t, env.Store.RefreshTokens().Create(t.Context(), domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(opaque),
		ExpiresAt: time.Now().Add(-time.Minute).UTC(),
	}))

	_, _, err := env.Tokens.Rotate(t.Context(), opaque)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotate_DisabledUser(t *testing.T) {
	env := newTestEnv(t)
	pair, u, err := env.Auth.Register(t.Context(), RegisterParams{
		Email:       "frozen@example.com",
		Password:    "hunter2hunter2",
		DisplayName: "Frozen",
	})
	require.NoError(t, err)
	require.NoError(t, env.Store.Users().SetActive(t.Context(), u.ID, false))

	_, _, err = env.Tokens.Rotate(t.Context(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRevoke(t *testing.T) {
	env := newTestEnv(t)
	pair, _, err := env.Auth.Register(t.Context(), RegisterParams{
		Email:       "revoke@example.com",
		Password:    "hunter2hunter2",
		DisplayName: "Revoker",
	})
	require.NoError(t, err)

	require.NoError(t, env.Tokens.Revoke(t.Context(), pair.RefreshToken))

	_, _, err = env.Tokens.Rotate(t.Context(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Revoking again, or revoking garbage, is not an error.
	require.NoError(t, env.Tokens.Revoke(t.Context(), pair.RefreshToken))
	require.NoError(t, env.Tokens.Revoke(t.Context(), "never-issued"))
}

func TestRevokeAll(t *testing.T) {
	env := newTestEnv(t)
	userID := env.register(t, "everywhere@example.com", "hunter2hunter2")

	var pairs []*domain.TokenPair
	for i := 0; i < 3; i++ {
		pair, _, err := env.Auth.Login(t.Context(), "everywhere@example.com", "hunter2hunter2")
		require.NoError(t, err)
		pairs = append(pairs, pair)
	}

	require.NoError(t, env.Tokens.RevokeAll(t.Context(), userID))

	for _, pair := range pairs {
		_, _, err := env.Tokens.Rotate(t.Context(), pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

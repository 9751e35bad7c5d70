package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoleOrdering(t *testing.T) {
	require.True(t, RoleSuperAdmin.AtLeast(RoleAdmin))
	require.True(t, RoleAdmin.AtLeast(RoleAdmin))
	require.True(t, RoleModerator.AtLeast(RoleSeller))
	require.False(t, RoleSeller.AtLeast(RoleModerator))
	require.False(t, RoleCustomer.AtLeast(RoleSeller))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("ADMIN")
	require.True(t, ok)
	require.Equal(t, RoleAdmin, r)

	_, ok = ParseRole("admin")
	require.False(t, ok, "roles are case sensitive")

	_, ok = ParseRole("WIZARD")
	require.False(t, ok)
}

func TestUserPublic_OmitsSecrets(t *testing.T) {
	hash := "$argon2id$..."
	secret := "JBSWY3DPEHPK3PXP"
	at := time.Now().UTC()

	u := User{
		ID:              "01HZXW",
		Email:           "reader@example.com",
		PasswordHash:    &hash,
		DisplayName:     "Reader",
		Role:            RoleCustomer,
		TwoFactorSecret: &secret,
		TwoFactorAt:     &at,
		Active:          true,
	}

	raw, err := json.Marshal(u.Public())
	require.NoError(t, err)

	body := string(raw)
	require.NotContains(t, body, hash)
	require.NotContains(t, body, secret)
	require.Contains(t, body, `"two_factor_enabled":true`)
}

func TestTwoFactorEnabled(t *testing.T) {
	var u User
	require.False(t, u.TwoFactorEnabled())

	secret := "JBSWY3DPEHPK3PXP"
	u.TwoFactorSecret = &secret
	require.False(t, u.TwoFactorEnabled(), "a pending secret alone does not enable 2FA")

	at := time.Now()
	u.TwoFactorAt = &at
	require.True(t, u.TwoFactorEnabled())
}

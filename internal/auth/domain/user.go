package domain

import "time"

// Role is the single role assigned to a user account. Roles are ordered:
// a higher rank may do everything a lower rank may do.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleModerator  Role = "MODERATOR"
	RoleSeller     Role = "SELLER"
	RoleCustomer   Role = "CUSTOMER"
)

var roleRank = map[Role]int{
	RoleCustomer:   0,
	RoleSeller:     1,
	RoleModerator:  2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks at or above min.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

func (r Role) String() string { return string(r) }

// ParseRole validates a role string. Returns RoleCustomer, false for
// anything unknown.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	if !r.Valid() {
		return RoleCustomer, false
	}
	return r, true
}

// User is a local account. A user always has a password hash or at least
// one linked OAuth account, never neither.
type User struct {
	ID              string
	Email           string
	PasswordHash    *string // nil for OAuth-only accounts
	DisplayName     string
	FirstName       *string
	LastName        *string
	Role            Role
	EmailVerified   bool
	TwoFactorSecret *string    // TOTP secret, base32 (nil until enrolled)
	TwoFactorAt     *time.Time // when 2FA was activated (nil = disabled)
	AvatarURL       *string
	Locale          *string
	Timezone        *string
	LastLoginAt     *time.Time
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TwoFactorEnabled reports whether the user has completed 2FA activation.
func (u User) TwoFactorEnabled() bool { return u.TwoFactorAt != nil }

// HasPassword reports whether the account can authenticate by password.
func (u User) HasPassword() bool { return u.PasswordHash != nil && *u.PasswordHash != "" }

// PublicUser is the caller-facing projection of a User. Password hash and
// 2FA secret never leave the service.
type PublicUser struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	DisplayName   string     `json:"display_name"`
	FirstName     *string    `json:"first_name,omitempty"`
	LastName      *string    `json:"last_name,omitempty"`
	Role          Role       `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	TwoFactor     bool       `json:"two_factor_enabled"`
	AvatarURL     *string    `json:"avatar_url,omitempty"`
	Locale        *string    `json:"locale,omitempty"`
	Timezone      *string    `json:"timezone,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Public returns the projection of u safe to hand to callers.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		TwoFactor:     u.TwoFactorEnabled(),
		AvatarURL:     u.AvatarURL,
		Locale:        u.Locale,
		Timezone:      u.Timezone,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
}

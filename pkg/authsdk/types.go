package authsdk

import "time"

// ErrorResponse is the error envelope every non-2xx response carries.
type ErrorResponse struct {
	// Error is a stable machine-readable code (e.g. "invalid_credentials")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// TokenResponse carries a freshly issued session.
type TokenResponse struct {
	// AccessToken is the JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque single-use token for obtaining new sessions
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds
	ExpiresIn int `json:"expires_in"`

	// User is the public projection of the authenticated account
	User *UserResponse `json:"user,omitempty"`
}

// TwoFactorChallengeResponse signals that password verification succeeded
// but a second factor is required to complete the login.
type TwoFactorChallengeResponse struct {
	TwoFactorRequired bool `json:"two_factor_required"`
}

// UserResponse is the public projection of an account.
type UserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	DisplayName   string     `json:"display_name"`
	FirstName     *string    `json:"first_name,omitempty"`
	LastName      *string    `json:"last_name,omitempty"`
	Role          string     `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	TwoFactor     bool       `json:"two_factor_enabled"`
	AvatarURL     *string    `json:"avatar_url,omitempty"`
	Locale        *string    `json:"locale,omitempty"`
	Timezone      *string    `json:"timezone,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RegisterRequest creates a password account.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
}

// LoginRequest authenticates by email and password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TwoFactorLoginRequest completes a login that requires a second factor.
// Code accepts either a TOTP code or an unused backup code.
type TwoFactorLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// RefreshRequest exchanges a refresh token for a new session. The token may
// instead travel in the refresh_token cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest revokes one refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TwoFactorSetupResponse returns enrollment material. The secret and backup
// codes are shown exactly once.
type TwoFactorSetupResponse struct {
	Secret      string   `json:"secret"`
	OTPAuthURL  string   `json:"otpauth_url"`
	Issuer      string   `json:"issuer"`
	Account     string   `json:"account"`
	BackupCodes []string `json:"backup_codes"`
}

// TwoFactorCodeRequest carries a TOTP code for activation or disable.
type TwoFactorCodeRequest struct {
	Code string `json:"code"`
}

// RoleChangeRequest assigns a role to a user.
type RoleChangeRequest struct {
	Role string `json:"role"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthChecks reports per-dependency status on the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

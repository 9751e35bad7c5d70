package domain

import "time"

// Provider identifies an external identity provider.
type Provider string

const (
	ProviderGoogle   Provider = "GOOGLE"
	ProviderFacebook Provider = "FACEBOOK"
	ProviderGitHub   Provider = "GITHUB"
	ProviderApple    Provider = "APPLE"
)

// OAuthAccount links an external provider identity to a local user.
// (provider, provider_id) is globally unique; a user holds at most one
// account per provider.
type OAuthAccount struct {
	ID           string
	UserID       string
	Provider     Provider
	ProviderID   string // provider-assigned subject
	AccessToken  *string
	RefreshToken *string
	ExpiresAt    *time.Time
	Scope        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

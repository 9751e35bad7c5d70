// Package oauth talks to external identity providers. The provider exchange
// completes before any database write begins, so account-linking writes stay
// fast local transactions.
package oauth

import (
	"context"
	"time"

	"github.com/inkcart/inkcart/internal/auth/domain"
)

// Identity is a verified assertion from an external provider.
type Identity struct {
	Provider domain.Provider
	Subject  string // provider-assigned stable subject id
	Email    string
	Name     string
	Picture  string

	// Provider-side token material, persisted on the link for later API use.
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Scope        string
}

// Provider drives the authorization-code flow for one external provider.
type Provider interface {
	// Name identifies the provider for link rows.
	Name() domain.Provider

	// AuthCodeURL returns the consent-page redirect for a state nonce.
	AuthCodeURL(state string) string

	// Exchange redeems an authorization code for a verified identity.
	Exchange(ctx context.Context, code string) (Identity, error)
}

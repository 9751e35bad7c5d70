package domain

import "time"

// TokenPair is what successful authentication returns: a short-lived signed
// access token and an opaque single-use refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // access token lifetime, seconds
}

// RefreshToken is the stored server-side half of a refresh credential. Only
// the SHA-256 fingerprint of the opaque value is persisted; the plaintext is
// shown once at issuance and never logged.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 of the opaque token
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

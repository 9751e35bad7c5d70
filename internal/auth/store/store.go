package store

import (
	"context"
	"errors"
	"time"

	"github.com/inkcart/inkcart/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by concrete drivers
// (sqlite today). It exposes one repository per entity plus transactional
// helpers for multi-row operations that must be atomic, such as refresh
// rotation and user+oauth-account creation.
type Store interface {
	Users() Users
	OAuthAccounts() OAuthAccounts
	RefreshTokens() RefreshTokens
	BackupCodes() BackupCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller must Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil and
	// rolling back otherwise. Preferred over Tx for most call sites.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is the login and account-linking lookup.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists when the email
	// is taken; the unique index is the authority, not application checks.
	CreateUser(ctx context.Context, u domain.User) error

	UpdateProfile(ctx context.Context, userID string, displayName string, firstName, lastName *string) error
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// SetActive soft-deactivates (or restores) an account.
	SetActive(ctx context.Context, userID string, active bool) error

	// UpdateTwoFactorSecret stores a pending TOTP secret without enabling 2FA.
	UpdateTwoFactorSecret(ctx context.Context, userID string, secret string) error

	// EnableTwoFactor stamps two_factor_at; the secret must already be set.
	EnableTwoFactor(ctx context.Context, userID string, at time.Time) error

	// DisableTwoFactor clears the secret and the enabled stamp.
	DisableTwoFactor(ctx context.Context, userID string) error

	// DeleteUser cascades to oauth_accounts, refresh_tokens and backup_codes.
	DeleteUser(ctx context.Context, userID string) error
}

type OAuthAccounts interface {
	// GetByProviderSubject resolves an external identity to a linked account.
	GetByProviderSubject(ctx context.Context, provider domain.Provider, providerID string) (domain.OAuthAccount, error)

	// GetByUserProvider returns the user's link for one provider, if any.
	GetByUserProvider(ctx context.Context, userID string, provider domain.Provider) (domain.OAuthAccount, error)

	// Create inserts a link row. ErrAlreadyExists on either uniqueness clash
	// ((provider, provider_id) or (user_id, provider)).
	Create(ctx context.Context, a domain.OAuthAccount) error

	// UpdateProviderTokens refreshes the stored provider token fields, the
	// only mutation an existing link permits.
	UpdateProviderTokens(ctx context.Context, id string, accessToken, refreshToken *string, expiresAt *time.Time, scope *string) error

	// DeleteByUserProvider unlinks a provider from a user.
	DeleteByUserProvider(ctx context.Context, userID string, provider domain.Provider) error

	ListByUser(ctx context.Context, userID string) ([]domain.OAuthAccount, error)
}

type RefreshTokens interface {
	Create(ctx context.Context, t domain.RefreshToken) error

	// GetByHash returns a token row by fingerprint, expired rows included;
	// expiry policy belongs to the caller.
	GetByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// DeleteByHash removes one row and reports whether a row existed. Rotation
	// relies on this: of two racing rotations, only one observes deleted=true.
	DeleteByHash(ctx context.Context, hash string) (deleted bool, err error)

	// DeleteAllForUser implements logout-all.
	DeleteAllForUser(ctx context.Context, userID string) error

	DeleteExpired(ctx context.Context) error
}

type BackupCodes interface {
	Create(ctx context.Context, userID string, codeHash string) error

	// Consume deletes a matching code and reports whether it existed. Backup
	// codes are single-use, so verification and consumption are one step.
	Consume(ctx context.Context, userID string, codeHash string) (bool, error)

	DeleteAllForUser(ctx context.Context, userID string) error
	CountForUser(ctx context.Context, userID string) (int, error)
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/inkcart/inkcart/internal/auth/domain"
	"github.com/inkcart/inkcart/internal/auth/store"
	"github.com/inkcart/inkcart/pkg/cryptox"
	"github.com/inkcart/inkcart/pkg/idx"
	"github.com/inkcart/inkcart/pkg/slogx"

	"github.com/pquerna/otp/totp"
)

// AuthService is the request-facing gateway for password authentication:
// register, login, and the two-factor login step.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
}

// RegisterParams are the register inputs. Email is normalized to lower case
// before any lookup or insert.
type RegisterParams struct {
	Email       string
	Password    string
	DisplayName string
	FirstName   *string
	LastName    *string
	Locale      *string
	Timezone    *string
}

// Register creates a password account and signs the user in. A taken email
// fails with ErrEmailTaken; the unique index on users.email is the authority,
// so two concurrent registers cannot both succeed.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*domain.TokenPair, domain.User, error) {
	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return nil, domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        normalizeEmail(p.Email),
		PasswordHash: &hash,
		DisplayName:  p.DisplayName,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Role:         domain.RoleCustomer,
		Locale:       p.Locale,
		Timezone:     p.Timezone,
		Active:       true,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domain.User{}, ErrEmailTaken
		}
		return nil, domain.User{}, err
	}

	// Reload for store-assigned timestamps.
	u, err = s.Store.Users().GetUserByID(ctx, u.ID)
	if err != nil {
		return nil, domain.User{}, err
	}

	pair, err := s.Tokens.IssuePair(ctx, u)
	if err != nil {
		return nil, domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", u.ID)
	return pair, u, nil
}

// Login authenticates by email and password. When the account has 2FA
// enabled it returns ErrTwoFactorRequired and no tokens; the caller must
// retry through LoginWithTwoFactor.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, domain.User, error) {
	u, err := s.checkPassword(ctx, email, password)
	if err != nil {
		return nil, domain.User{}, err
	}

	if u.TwoFactorEnabled() {
		return nil, domain.User{}, ErrTwoFactorRequired
	}

	return s.finishLogin(ctx, u)
}

// LoginWithTwoFactor authenticates by email, password and a one-time code.
// A current TOTP code is accepted, and failing that a single-use backup code
// is consumed.
func (s *AuthService) LoginWithTwoFactor(ctx context.Context, email, password, code string) (*domain.TokenPair, domain.User, error) {
	u, err := s.checkPassword(ctx, email, password)
	if err != nil {
		return nil, domain.User{}, err
	}

	if !u.TwoFactorEnabled() || u.TwoFactorSecret == nil {
		// No second factor to verify; plain login applies.
		return s.finishLogin(ctx, u)
	}

	if !totp.Validate(code, *u.TwoFactorSecret) {
		consumed, err := s.Store.BackupCodes().Consume(ctx, u.ID, cryptox.FingerprintToken(code))
		if err != nil {
			return nil, domain.User{}, err
		}
		if !consumed {
			return nil, domain.User{}, ErrInvalidTwoFactorCode
		}
		slogx.FromContext(ctx).Info("backup code consumed", "user_id", u.ID)
	}

	return s.finishLogin(ctx, u)
}

// ChangeRole assigns a new role to a user. Callers gate this behind an
// admin check.
func (s *AuthService) ChangeRole(ctx context.Context, userID string, role domain.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if err := s.Store.Users().UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// GetUserByID fetches a user for the profile endpoint.
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// checkPassword resolves the account and verifies the password, covering the
// shared first half of both login variants.
func (s *AuthService) checkPassword(ctx context.Context, email, password string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if !u.Active {
		return domain.User{}, ErrAccountDisabled
	}

	// OAuth-only accounts have no password; that is invalid credentials,
	// not a missing user.
	if !u.HasPassword() {
		return domain.User{}, ErrInvalidCredentials
	}
	if !cryptox.VerifyPassword(password, *u.PasswordHash) {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *AuthService) finishLogin(ctx context.Context, u domain.User) (*domain.TokenPair, domain.User, error) {
	now := time.Now().UTC()
	if err := s.Store.Users().UpdateLastLogin(ctx, u.ID, now); err != nil {
		return nil, domain.User{}, err
	}
	u.LastLoginAt = &now

	pair, err := s.Tokens.IssuePair(ctx, u)
	if err != nil {
		return nil, domain.User{}, err
	}
	return pair, u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

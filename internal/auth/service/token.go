package service

import (
	"context"
	"errors"
	"time"

	"github.com/inkcart/inkcart/internal/auth/domain"
	"github.com/inkcart/inkcart/internal/auth/store"
	"github.com/inkcart/inkcart/pkg/cryptox"
	"github.com/inkcart/inkcart/pkg/idx"
	"github.com/inkcart/inkcart/pkg/jwtx"
)

// TokenService mints access/refresh pairs and owns refresh rotation.
type TokenService struct {
	Signer     jwtx.Signer
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssuePair signs a fresh access token and persists a new refresh token for
// the user. The opaque refresh value is returned once and stored only as a
// fingerprint.
func (s *TokenService) IssuePair(ctx context.Context, u domain.User) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	access, err := s.signAccess(u, now)
	if err != nil {
		return nil, err
	}

	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(opaque),
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	if err := s.Store.RefreshTokens().Create(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: opaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Rotate exchanges a refresh token for a new pair, consuming the old one.
// The old row is deleted before the new one is created, all in one
// transaction, so two calls racing on the same token produce exactly one
// winner; the loser finds no row and fails with ErrInvalidToken.
func (s *TokenService) Rotate(ctx context.Context, refreshOpaque string) (*domain.TokenPair, domain.User, error) {
	now := time.Now().UTC()
	fp := cryptox.FingerprintToken(refreshOpaque)

	var (
		pair *domain.TokenPair
		user domain.User
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if now.After(rt.ExpiresAt) {
			return ErrInvalidToken
		}

		deleted, err := tx.RefreshTokens().DeleteByHash(ctx, fp)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrInvalidToken
		}

		u, err := tx.Users().GetUserByID(ctx, rt.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if !u.Active {
			return ErrAccountDisabled
		}

		access, err := s.signAccess(u, now)
		if err != nil {
			return err
		}

		opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}

		next := domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: cryptox.FingerprintToken(opaque),
			ExpiresAt: now.Add(s.RefreshTTL),
		}
		if err := tx.RefreshTokens().Create(ctx, next); err != nil {
			return err
		}

		pair = &domain.TokenPair{
			AccessToken:  access,
			RefreshToken: opaque,
			TokenType:    "Bearer",
			ExpiresIn:    s.AccessTTL,
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, domain.User{}, err
	}
	return pair, user, nil
}

// Revoke deletes one refresh token by opaque value. Idempotent: revoking an
// unknown token is not an error.
func (s *TokenService) Revoke(ctx context.Context, refreshOpaque string) error {
	_, err := s.Store.RefreshTokens().DeleteByHash(ctx, cryptox.FingerprintToken(refreshOpaque))
	return err
}

// RevokeAll deletes every refresh token the user holds (logout everywhere).
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	return s.Store.RefreshTokens().DeleteAllForUser(ctx, userID)
}

func (s *TokenService) signAccess(u domain.User, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(u.ID, u.Role.String(), u.Email, s.Issuer, s.AccessTTL, now)
	return s.Signer.Sign(claims)
}

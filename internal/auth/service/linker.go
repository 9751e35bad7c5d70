package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkcart/inkcart/internal/auth/domain"
	"github.com/inkcart/inkcart/internal/auth/oauth"
	"github.com/inkcart/inkcart/internal/auth/store"
	"github.com/inkcart/inkcart/pkg/idx"
)

// LinkerService maps external identities onto local accounts. The provider
// subject is the durable key; email is only consulted the first time a
// subject is seen, and only because providers guarantee the address was
// verified before we ever receive it.
type LinkerService struct {
	Store  store.Store
	Tokens *TokenService
}

// Resolve exchanges a provider identity for a local session. Three cases:
//
//  1. The (provider, subject) pair is already linked: refresh the stored
//     provider tokens and log the linked user in.
//  2. No link exists but a local account carries the same email: attach the
//     link to that account so the user keeps one identity.
//  3. Nothing matches: provision a passwordless account and link it.
//
// Disabled accounts are rejected in every case.
func (s *LinkerService) Resolve(ctx context.Context, id oauth.Identity) (*domain.TokenPair, domain.User, error) {
	if id.Subject == "" {
		return nil, domain.User{}, fmt.Errorf("identity missing provider subject")
	}

	acct, err := s.Store.OAuthAccounts().GetByProviderSubject(ctx, id.Provider, id.Subject)
	switch {
	case err == nil:
		return s.loginLinked(ctx, acct, id)
	case errors.Is(err, store.ErrNotFound):
		return s.linkOrProvision(ctx, id)
	default:
		return nil, domain.User{}, err
	}
}

func (s *LinkerService) loginLinked(ctx context.Context, acct domain.OAuthAccount, id oauth.Identity) (*domain.TokenPair, domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, acct.UserID)
	if err != nil {
		return nil, domain.User{}, err
	}
	if !u.Active {
		return nil, domain.User{}, ErrAccountDisabled
	}

	fresh := newOAuthAccount(acct.UserID, id)
	if err := s.Store.OAuthAccounts().UpdateProviderTokens(ctx, acct.ID, fresh.AccessToken, fresh.RefreshToken, fresh.ExpiresAt, fresh.Scope); err != nil {
		return nil, domain.User{}, err
	}

	return s.finish(ctx, u)
}

func (s *LinkerService) linkOrProvision(ctx context.Context, id oauth.Identity) (*domain.TokenPair, domain.User, error) {
	var u domain.User

	existing, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(id.Email))
	switch {
	case err == nil:
		if !existing.Active {
			return nil, domain.User{}, ErrAccountDisabled
		}
		u = existing
		if err := s.createLink(ctx, u.ID, id); err != nil {
			return nil, domain.User{}, err
		}
	case errors.Is(err, store.ErrNotFound):
		u, err = s.provision(ctx, id)
		if err != nil {
			return nil, domain.User{}, err
		}
	default:
		return nil, domain.User{}, err
	}

	return s.finish(ctx, u)
}

// createLink attaches a provider identity to an existing user. Two callbacks
// racing for the same subject both reach this point; the unique index on
// (provider, provider_id) lets one insert win, and the loser proceeds as if
// the link already existed.
func (s *LinkerService) createLink(ctx context.Context, userID string, id oauth.Identity) error {
	err := s.Store.OAuthAccounts().Create(ctx, newOAuthAccount(userID, id))
	if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return err
	}
	return nil
}

func (s *LinkerService) provision(ctx context.Context, id oauth.Identity) (domain.User, error) {
	name := id.Name
	if name == "" {
		name = id.Email
	}

	u := domain.User{
		ID:            idx.New().String(),
		Email:         normalizeEmail(id.Email),
		DisplayName:   name,
		Role:          domain.RoleCustomer,
		EmailVerified: true,
		Active:        true,
	}
	if id.Picture != "" {
		pic := id.Picture
		u.AvatarURL = &pic
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.OAuthAccounts().Create(ctx, newOAuthAccount(u.ID, id))
	})
	if err != nil {
		// A racing callback may have provisioned the same email or
		// subject first. Fall back to whichever row won.
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.Store.Users().GetUserByEmail(ctx, u.Email)
		}
		return domain.User{}, err
	}

	return s.Store.Users().GetUserByID(ctx, u.ID)
}

func (s *LinkerService) finish(ctx context.Context, u domain.User) (*domain.TokenPair, domain.User, error) {
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

func newOAuthAccount(userID string, id oauth.Identity) domain.OAuthAccount {
	acct := domain.OAuthAccount{
		ID:         idx.New().String(),
		UserID:     userID,
		Provider:   id.Provider,
		ProviderID: id.Subject,
	}
	if id.AccessToken != "" {
		tok := id.AccessToken
		acct.AccessToken = &tok
	}
	if id.RefreshToken != "" {
		tok := id.RefreshToken
		acct.RefreshToken = &tok
	}
	if id.ExpiresAt != nil {
		at := *id.ExpiresAt
		acct.ExpiresAt = &at
	}
	if id.Scope != "" {
		sc := id.Scope
		acct.Scope = &sc
	}
	return acct
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkcart/inkcart/internal/auth/domain"
	"github.com/inkcart/inkcart/internal/auth/store"
	"github.com/inkcart/inkcart/pkg/cryptox"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	backupCodeCount = 10
	backupCodeBytes = cryptox.TokenSize128
)

// TwoFactorService owns TOTP enrollment. Enrollment is two-step: Setup
// stores a pending secret, and only a successful Activate with a code from
// that secret flips the enabled flag. A user can never lock themselves out
// with a secret they never proved they can produce codes for.
type TwoFactorService struct {
	Store  store.Store
	Issuer string // TOTP issuer label shown in authenticator apps
}

// Setup generates a pending TOTP secret plus fresh backup codes and returns
// them once. 2FA stays disabled until Activate succeeds. Calling Setup again
// before activation replaces the pending secret and codes.
func (s *TwoFactorService) Setup(ctx context.Context, userID string) (domain.TwoFactorSetup, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TwoFactorSetup{}, ErrUserNotFound
		}
		return domain.TwoFactorSetup{}, err
	}
	if u.TwoFactorEnabled() {
		return domain.TwoFactorSetup{}, ErrTwoFactorAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("generate TOTP key: %w", err)
	}

	codes := make([]string, backupCodeCount)
	for i := range codes {
		c, err := cryptox.GenerateToken(backupCodeBytes)
		if err != nil {
			return domain.TwoFactorSetup{}, fmt.Errorf("generate backup code: %w", err)
		}
		codes[i] = c
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateTwoFactorSecret(ctx, userID, key.Secret()); err != nil {
			return err
		}
		if err := tx.BackupCodes().DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		for _, c := range codes {
			if err := tx.BackupCodes().Create(ctx, userID, cryptox.FingerprintToken(c)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.TwoFactorSetup{}, err
	}

	return domain.TwoFactorSetup{
		Secret:      key.Secret(),
		OTPAuthURL:  key.URL(),
		Issuer:      s.Issuer,
		Account:     u.Email,
		BackupCodes: codes,
	}, nil
}

// Activate verifies a code against the pending secret and enables 2FA.
func (s *TwoFactorService) Activate(ctx context.Context, userID, code string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.TwoFactorEnabled() {
		return ErrTwoFactorAlreadyEnabled
	}
	if u.TwoFactorSecret == nil || *u.TwoFactorSecret == "" {
		return ErrTwoFactorNotEnrolled
	}

	if !totp.Validate(code, *u.TwoFactorSecret) {
		return ErrInvalidTwoFactorCode
	}

	return s.Store.Users().EnableTwoFactor(ctx, userID, time.Now().UTC())
}

// Disable turns 2FA off after verifying a current code, and discards the
// secret and remaining backup codes.
func (s *TwoFactorService) Disable(ctx context.Context, userID, code string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !u.TwoFactorEnabled() || u.TwoFactorSecret == nil {
		return ErrTwoFactorNotEnrolled
	}

	if !totp.Validate(code, *u.TwoFactorSecret) {
		return ErrInvalidTwoFactorCode
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		return tx.Users().DisableTwoFactor(ctx, userID)
	})
}

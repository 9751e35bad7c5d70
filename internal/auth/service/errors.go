package service

import "errors"

// Expected-flow failures. Handlers map each to its own client-facing status;
// none of these are retried server-side.
var (
	ErrEmailTaken           = errors.New("email_taken")
	ErrUserNotFound         = errors.New("user_not_found")
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrTwoFactorRequired    = errors.New("two_factor_required")
	ErrInvalidTwoFactorCode = errors.New("invalid_two_factor_code")
	ErrInvalidToken         = errors.New("invalid_token")
	ErrAccountDisabled      = errors.New("account_disabled")
	ErrInvalidRole          = errors.New("invalid_role")

	ErrTwoFactorAlreadyEnabled = errors.New("two_factor_already_enabled")
	ErrTwoFactorNotEnrolled    = errors.New("two_factor_not_enrolled")
)

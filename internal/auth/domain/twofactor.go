package domain

// TwoFactorSetup is returned by 2FA enrollment. The secret and backup codes
// are shown exactly once; only hashes of the backup codes are stored.
type TwoFactorSetup struct {
	Secret      string   `json:"secret"`       // base32 TOTP secret
	OTPAuthURL  string   `json:"otpauth_url"`  // otpauth:// enrollment URL (QR source)
	Issuer      string   `json:"issuer"`       // TOTP issuer label
	Account     string   `json:"account"`      // account label (user email)
	BackupCodes []string `json:"backup_codes"` // single-use recovery codes
}

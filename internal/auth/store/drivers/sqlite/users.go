package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/inkcart/inkcart/internal/auth/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, email, password_hash, display_name, first_name, last_name, role,
	email_verified, two_factor_secret, two_factor_at, avatar_url, locale, timezone,
	last_login_at, active, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u                           domain.User
		passwordHash, firstName     sql.NullString
		lastName, twoFactorSecret   sql.NullString
		avatarURL, locale, timezone sql.NullString
		twoFactorAt, lastLoginAt    sql.NullTime
		role                        string
	)
	err := row.Scan(
		&u.ID, &u.Email, &passwordHash, &u.DisplayName, &firstName, &lastName, &role,
		&u.EmailVerified, &twoFactorSecret, &twoFactorAt, &avatarURL, &locale, &timezone,
		&lastLoginAt, &u.Active, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapErr(err)
	}

	u.PasswordHash = strPtr(passwordHash)
	u.FirstName = strPtr(firstName)
	u.LastName = strPtr(lastName)
	u.Role = domain.Role(role)
	u.TwoFactorSecret = strPtr(twoFactorSecret)
	u.TwoFactorAt = timePtr(twoFactorAt)
	u.AvatarURL = strPtr(avatarURL)
	u.Locale = strPtr(locale)
	u.Timezone = strPtr(timezone)
	u.LastLoginAt = timePtr(lastLoginAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (
			id, email, password_hash, display_name, first_name, last_name, role,
			email_verified, avatar_url, locale, timezone, active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, nullStr(u.PasswordHash), u.DisplayName,
		nullStr(u.FirstName), nullStr(u.LastName), string(u.Role),
		u.EmailVerified, nullStr(u.AvatarURL), nullStr(u.Locale), nullStr(u.Timezone),
		u.Active,
	)
	return mapErr(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID string, displayName string, firstName, lastName *string) error {
	return r.exec(ctx, `
		UPDATE users SET display_name = ?, first_name = ?, last_name = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		displayName, nullStr(firstName), nullStr(lastName), userID)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return r.exec(ctx, `
		UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, newHash, userID)
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	return r.exec(ctx, `
		UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, string(role), userID)
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.exec(ctx, `
		UPDATE users SET last_login_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, at.UTC(), userID)
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return r.exec(ctx, `
		UPDATE users SET active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, active, userID)
}

func (r *usersRepo) UpdateTwoFactorSecret(ctx context.Context, userID string, secret string) error {
	return r.exec(ctx, `
		UPDATE users SET two_factor_secret = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, secret, userID)
}

func (r *usersRepo) EnableTwoFactor(ctx context.Context, userID string, at time.Time) error {
	return r.exec(ctx, `
		UPDATE users SET two_factor_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND two_factor_secret IS NOT NULL`, at.UTC(), userID)
}

func (r *usersRepo) DisableTwoFactor(ctx context.Context, userID string) error {
	return r.exec(ctx, `
		UPDATE users SET two_factor_secret = NULL, two_factor_at = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, userID)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = ?`, userID)
}

// exec runs a mutation that must touch an existing row.
func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapErr(sql.ErrNoRows)
	}
	return nil
}

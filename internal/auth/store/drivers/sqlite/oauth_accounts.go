package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/inkcart/inkcart/internal/auth/domain"
)

type oauthAccountsRepo struct {
	q querier
}

const oauthColumns = `id, user_id, provider, provider_id, access_token, refresh_token,
	expires_at, scope, created_at, updated_at`

func scanOAuthAccount(scan func(dest ...any) error) (domain.OAuthAccount, error) {
	var (
		a                         domain.OAuthAccount
		provider                  string
		accessToken, refreshToken sql.NullString
		scope                     sql.NullString
		expiresAt                 sql.NullTime
	)
	err := scan(
		&a.ID, &a.UserID, &provider, &a.ProviderID, &accessToken, &refreshToken,
		&expiresAt, &scope, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.OAuthAccount{}, mapErr(err)
	}

	a.Provider = domain.Provider(provider)
	a.AccessToken = strPtr(accessToken)
	a.RefreshToken = strPtr(refreshToken)
	a.ExpiresAt = timePtr(expiresAt)
	a.Scope = strPtr(scope)
	return a, nil
}

func (r *oauthAccountsRepo) GetByProviderSubject(ctx context.Context, provider domain.Provider, providerID string) (domain.OAuthAccount, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+oauthColumns+` FROM oauth_accounts WHERE provider = ? AND provider_id = ?`,
		string(provider), providerID)
	return scanOAuthAccount(row.Scan)
}

func (r *oauthAccountsRepo) GetByUserProvider(ctx context.Context, userID string, provider domain.Provider) (domain.OAuthAccount, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+oauthColumns+` FROM oauth_accounts WHERE user_id = ? AND provider = ?`,
		userID, string(provider))
	return scanOAuthAccount(row.Scan)
}

func (r *oauthAccountsRepo) Create(ctx context.Context, a domain.OAuthAccount) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO oauth_accounts (
			id, user_id, provider, provider_id, access_token, refresh_token, expires_at, scope
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, string(a.Provider), a.ProviderID,
		nullStr(a.AccessToken), nullStr(a.RefreshToken), nullTime(a.ExpiresAt), nullStr(a.Scope),
	)
	return mapErr(err)
}

func (r *oauthAccountsRepo) UpdateProviderTokens(ctx context.Context, id string, accessToken, refreshToken *string, expiresAt *time.Time, scope *string) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE oauth_accounts SET access_token = ?, refresh_token = ?, expires_at = ?,
			scope = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		nullStr(accessToken), nullStr(refreshToken), nullTime(expiresAt), nullStr(scope), id)
	return mapErr(err)
}

func (r *oauthAccountsRepo) DeleteByUserProvider(ctx context.Context, userID string, provider domain.Provider) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM oauth_accounts WHERE user_id = ? AND provider = ?`,
		userID, string(provider))
	return mapErr(err)
}

func (r *oauthAccountsRepo) ListByUser(ctx context.Context, userID string) ([]domain.OAuthAccount, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+oauthColumns+` FROM oauth_accounts WHERE user_id = ? ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []domain.OAuthAccount
	for rows.Next() {
		a, err := scanOAuthAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

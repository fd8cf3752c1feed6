package sqlite

import (
	"context"
	"strings"

	"github.com/halcyondigital/accounts/internal/auth/domain"
	"github.com/halcyondigital/accounts/internal/auth/store"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, email, name, role, status, password_hash, totp_secret, totp_enabled, created_at, updated_at`

func (r *accountsRepo) scanAccount(row interface{ Scan(dest ...any) error }) (domain.Account, error) {
	var ar accountRow
	err := row.Scan(
		&ar.ID,
		&ar.Email,
		&ar.Name,
		&ar.Role,
		&ar.Status,
		&ar.PasswordHash,
		&ar.TOTPSecret,
		&ar.TOTPEnabled,
		&ar.CreatedAt,
		&ar.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(ar)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return r.scanAccount(row)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = lower(?)`,
		strings.TrimSpace(email))
	return r.scanAccount(row)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, name, role, status, password_hash)
		VALUES (?, lower(?), ?, ?, ?, ?)`,
		a.ID,
		strings.TrimSpace(a.Email),
		a.Name,
		a.Role.String(),
		a.Status.String(),
		mapOptionalString(a.PasswordHash),
	)
	return mapConflict(err)
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, accountID string, newHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		newHash, accountID)
	return err
}

func (r *accountsRepo) UpdateTwoFactorSecret(ctx context.Context, accountID string, secret string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET totp_secret = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		mapStringNull(secret), accountID)
	return err
}

func (r *accountsRepo) EnableTwoFactor(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET totp_enabled = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		accountID)
	return err
}

func (r *accountsRepo) DisableTwoFactor(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET totp_enabled = NULL, totp_secret = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		accountID)
	return err
}

func (r *accountsRepo) UpdateStatus(ctx context.Context, accountID string, status domain.Status) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		status.String(), accountID)
	return err
}

func (r *accountsRepo) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		acct, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, rows.Err()
}

func (r *accountsRepo) CountAccounts(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	return count, err
}

var _ store.Accounts = (*accountsRepo)(nil)

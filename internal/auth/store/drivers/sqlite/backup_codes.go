package sqlite

import (
	"context"

	"github.com/halcyondigital/accounts/internal/auth/store"
)

type backupCodesRepo struct {
	db dbtx
}

func (r *backupCodesRepo) CreateBackupCode(ctx context.Context, accountID string, codeHash string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO backup_codes (account_id, code_hash)
		VALUES (?, ?)`,
		accountID, codeHash)
	return mapConflict(err)
}

// ConsumeBackupCode spends a code in a single DELETE so that two concurrent
// sign-ins cannot both redeem it.
func (r *backupCodesRepo) ConsumeBackupCode(ctx context.Context, accountID string, codeHash string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM backup_codes
		WHERE account_id = ? AND code_hash = ?`,
		accountID, codeHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *backupCodesRepo) DeleteAllBackupCodes(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM backup_codes WHERE account_id = ?`, accountID)
	return err
}

func (r *backupCodesRepo) CountBackupCodes(ctx context.Context, accountID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM backup_codes WHERE account_id = ?`, accountID).Scan(&count)
	return count, err
}

var _ store.BackupCodes = (*backupCodesRepo)(nil)

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halcyondigital/accounts/internal/auth/domain"
	"github.com/halcyondigital/accounts/internal/auth/store"
	"github.com/halcyondigital/accounts/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "accounts.db")
	s, err := NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestAccount(t *testing.T) domain.Account {
	t.Helper()

	hash := "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"
	return domain.Account{
		ID:           idx.New().String(),
		Email:        idx.New().String() + "@example.com",
		Name:         "Test Account",
		Role:         domain.RoleClient,
		Status:       domain.StatusActive,
		PasswordHash: &hash,
	}
}

func TestAccountsCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := newTestAccount(t)
	require.NoError(t, s.Accounts().CreateAccount(ctx, acct))

	got, err := s.Accounts().GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, acct.Email, got.Email)
	require.Equal(t, domain.RoleClient, got.Role)
	require.Equal(t, domain.StatusActive, got.Status)
	require.Equal(t, domain.TwoFactorOff, got.TwoFactor.State())
	require.NotNil(t, got.PasswordHash)
	require.False(t, got.CreatedAt.IsZero())
}

func TestAccountsEmailIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := newTestAccount(t)
	acct.Email = "Jane.Doe@Example.COM"
	require.NoError(t, s.Accounts().CreateAccount(ctx, acct))

	got, err := s.Accounts().GetAccountByEmail(ctx, "jane.doe@example.com")
	require.NoError(t, err)
	require.Equal(t, acct.ID, got.ID)
	require.Equal(t, "jane.doe@example.com", got.Email, "stored lower-case")

	dup := newTestAccount(t)
	dup.Email = "JANE.DOE@example.com"
	err = s.Accounts().CreateAccount(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestAccountsGetMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Accounts().GetAccountByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Accounts().GetAccountByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccountsTwoFactorLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := newTestAccount(t)
	require.NoError(t, s.Accounts().CreateAccount(ctx, acct))

	// Arm with a pending secret.
	require.NoError(t, s.Accounts().UpdateTwoFactorSecret(ctx, acct.ID, "JBSWY3DPEHPK3PXP"))
	got, err := s.Accounts().GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TwoFactorArmed, got.TwoFactor.State())
	require.Equal(t, "JBSWY3DPEHPK3PXP", got.TwoFactor.Secret())

	// Confirm.
	require.NoError(t, s.Accounts().EnableTwoFactor(ctx, acct.ID))
	got, err = s.Accounts().GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TwoFactorEnabled, got.TwoFactor.State())

	// Disable clears both fields.
	require.NoError(t, s.Accounts().DisableTwoFactor(ctx, acct.ID))
	got, err = s.Accounts().GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TwoFactorOff, got.TwoFactor.State())
	require.Empty(t, got.TwoFactor.Secret())
}

func TestAccountsUpdateStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := newTestAccount(t)
	require.NoError(t, s.Accounts().CreateAccount(ctx, acct))

	require.NoError(t, s.Accounts().UpdateStatus(ctx, acct.ID, domain.StatusSuspended))
	got, err := s.Accounts().GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuspended, got.Status)
}

func TestAccountsList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Accounts().CreateAccount(ctx, newTestAccount(t)))
	}

	list, err := s.Accounts().ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	count, err := s.Accounts().CountAccounts(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestBackupCodesSingleUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := newTestAccount(t)
	require.NoError(t, s.Accounts().CreateAccount(ctx, acct))

	require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, acct.ID, "hash-1"))
	require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, acct.ID, "hash-2"))

	count, err := s.BackupCodes().CountBackupCodes(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	// First redemption succeeds, second fails: codes are single-use.
	require.NoError(t, s.BackupCodes().ConsumeBackupCode(ctx, acct.ID, "hash-1"))
	err = s.BackupCodes().ConsumeBackupCode(ctx, acct.ID, "hash-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	count, err = s.BackupCodes().CountBackupCodes(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestBackupCodesDeleteAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := newTestAccount(t)
	require.NoError(t, s.Accounts().CreateAccount(ctx, acct))

	for _, h := range []string{"a", "b", "c"} {
		require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, acct.ID, h))
	}
	require.NoError(t, s.BackupCodes().DeleteAllBackupCodes(ctx, acct.ID))

	count, err := s.BackupCodes().CountBackupCodes(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := newTestAccount(t)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, acct); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Accounts().GetAccountByID(ctx, acct.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct := newTestAccount(t)
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, acct); err != nil {
			return err
		}
		return tx.BackupCodes().CreateBackupCode(ctx, acct.ID, "hash-1")
	})
	require.NoError(t, err)

	got, err := s.Accounts().GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, acct.ID, got.ID)
}

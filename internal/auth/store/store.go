package store

import (
	"context"
	"errors"

	"github.com/halcyondigital/accounts/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. It exposes sub-repositories to keep
// concerns tidy and testable, and to stop callers from accidentally nesting
// transactions.
type Store interface {
	Accounts() Accounts
	BackupCodes() BackupCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., enabling
	// two-factor and minting backup codes together).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail looks up by email, case-insensitively.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, accountID string, newHash string) error

	// UpdateTwoFactorSecret stores (or clears, with "") the pending TOTP
	// secret without marking two-factor enabled.
	UpdateTwoFactorSecret(ctx context.Context, accountID string, secret string) error

	// EnableTwoFactor marks two-factor enabled (sets the enabled timestamp).
	EnableTwoFactor(ctx context.Context, accountID string) error

	// DisableTwoFactor clears both the enabled timestamp and the secret.
	DisableTwoFactor(ctx context.Context, accountID string) error

	// UpdateStatus moves the account through its lifecycle.
	UpdateStatus(ctx context.Context, accountID string, status domain.Status) error

	// ListAccounts returns all accounts ordered by creation date (newest first).
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// CountAccounts returns the total number of accounts.
	CountAccounts(ctx context.Context) (int, error)
}

type BackupCodes interface {
	// CreateBackupCode stores a backup code fingerprint for an account.
	CreateBackupCode(ctx context.Context, accountID string, codeHash string) error

	// ConsumeBackupCode deletes a matching code in one statement. Returns
	// ErrNotFound when no code matched; a nil error means the code existed
	// and is now spent.
	ConsumeBackupCode(ctx context.Context, accountID string, codeHash string) error

	// DeleteAllBackupCodes removes every code for an account.
	DeleteAllBackupCodes(ctx context.Context, accountID string) error

	// CountBackupCodes returns the number of unused codes for an account.
	CountBackupCodes(ctx context.Context, accountID string) (int, error)
}

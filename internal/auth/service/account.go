package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/halcyondigital/accounts/internal/auth/domain"
	"github.com/halcyondigital/accounts/internal/auth/store"
	"github.com/halcyondigital/accounts/pkg/cryptox"
)

type AccountService struct {
	Store store.Store
}

// GetAccount returns the public projection of one account.
func (s *AccountService) GetAccount(ctx context.Context, accountID string) (domain.PublicAccount, error) {
	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return domain.PublicAccount{}, err
	}
	return acct.Public(), nil
}

// ChangePassword swaps the stored hash after re-confirming the current
// password. The new password must clear the same policy registration
// enforces.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, current, next string) error {
	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if !acct.HasPassword() {
		return ErrNoPasswordOnFile
	}

	if err := cryptox.VerifyPassword(current, *acct.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}

	if fields := validatePassword(next); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.Store.Accounts().UpdatePasswordHash(ctx, accountID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// ListAccounts returns every account, newest first. Admin surface only;
// the handler enforces that.
func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.PublicAccount, error) {
	accts, err := s.Store.Accounts().ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	out := make([]domain.PublicAccount, len(accts))
	for i, acct := range accts {
		out[i] = acct.Public()
	}
	return out, nil
}

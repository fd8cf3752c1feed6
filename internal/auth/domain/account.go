package domain

import "time"

// Account is a site account with its credential and two-factor state.
type Account struct {
	ID           string
	Email        string // unique, stored lower-case
	Name         string
	Role         Role
	Status       Status
	PasswordHash *string // argon2 encoded; nil for external-provider accounts
	TwoFactor    TwoFactor
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the account can perform password
// verification at all. External-provider accounts cannot.
func (a Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// Public returns the externally visible projection of the account. The
// password hash and two-factor secret never leave the domain through it.
func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:               a.ID,
		Email:            a.Email,
		Name:             a.Name,
		Role:             a.Role,
		Status:           a.Status,
		TwoFactorEnabled: a.TwoFactor.State() == TwoFactorEnabled,
		CreatedAt:        a.CreatedAt,
	}
}

// PublicAccount is what callers outside the auth core see.
type PublicAccount struct {
	ID               string
	Email            string
	Name             string
	Role             Role
	Status           Status
	TwoFactorEnabled bool
	CreatedAt        time.Time
}

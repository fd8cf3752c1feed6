package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/halcyondigital/accounts/internal/auth/domain"
	"github.com/halcyondigital/accounts/internal/auth/ratelimit"
	"github.com/halcyondigital/accounts/internal/auth/store"
	"github.com/halcyondigital/accounts/pkg/cryptox"
	"github.com/halcyondigital/accounts/pkg/idx"
)

const minPasswordLength = 8

var (
	ErrRateLimited = errors.New("too many attempts")
	ErrEmailTaken  = errors.New("email already registered")
)

// FieldError names one invalid request field.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError carries every failed check so the caller can surface all
// of them at once instead of one per round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RegisterInput is a registration request after transport decoding.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	// Role is optional; empty means the default role. Privileged roles are
	// never accepted here, they are granted out of band.
	Role string
	// RemoteIP keys the registration rate limit.
	RemoteIP string
}

type RegisterService struct {
	Store   store.Store
	Limiter ratelimit.Limiter
}

// Register validates the input, hashes the password and creates an active
// account. All validation failures are reported together.
func (s *RegisterService) Register(ctx context.Context, in RegisterInput) (domain.PublicAccount, error) {
	if !s.Limiter.Allow(in.RemoteIP) {
		return domain.PublicAccount{}, ErrRateLimited
	}

	role, fields := validateRegistration(in)
	if len(fields) > 0 {
		return domain.PublicAccount{}, &ValidationError{Fields: fields}
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.PublicAccount{}, fmt.Errorf("failed to hash password: %w", err)
	}

	acct := domain.Account{
		ID:           idx.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         strings.TrimSpace(in.Name),
		Role:         role,
		Status:       domain.StatusActive,
		PasswordHash: &hash,
	}

	if err := s.Store.Accounts().CreateAccount(ctx, acct); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.PublicAccount{}, ErrEmailTaken
		}
		return domain.PublicAccount{}, fmt.Errorf("failed to create account: %w", err)
	}

	created, err := s.Store.Accounts().GetAccountByID(ctx, acct.ID)
	if err != nil {
		return domain.PublicAccount{}, fmt.Errorf("failed to load created account: %w", err)
	}

	return created.Public(), nil
}

// validateRegistration runs every check and collects the failures.
func validateRegistration(in RegisterInput) (domain.Role, []FieldError) {
	var fields []FieldError

	email := strings.TrimSpace(in.Email)
	if email == "" {
		fields = append(fields, FieldError{Field: "email", Reason: "is required"})
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		fields = append(fields, FieldError{Field: "email", Reason: "is not a valid email address"})
	}

	if len(strings.TrimSpace(in.Name)) < 2 {
		fields = append(fields, FieldError{Field: "name", Reason: "must be at least 2 characters"})
	}

	fields = append(fields, validatePassword(in.Password)...)

	role := domain.DefaultRole
	if in.Role != "" {
		parsed, err := domain.ParseRole(in.Role)
		switch {
		case err != nil:
			fields = append(fields, FieldError{Field: "role", Reason: "is not a known role"})
		case parsed.Privileged():
			fields = append(fields, FieldError{Field: "role", Reason: "cannot be self-assigned"})
		default:
			role = parsed
		}
	}

	return role, fields
}

// validatePassword reports every unmet password rule, not just the first.
func validatePassword(password string) []FieldError {
	var fields []FieldError

	if len(password) < minPasswordLength {
		fields = append(fields, FieldError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength),
		})
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsSpace(r):
			hasSymbol = true
		}
	}

	if !hasUpper {
		fields = append(fields, FieldError{Field: "password", Reason: "must contain an uppercase letter"})
	}
	if !hasLower {
		fields = append(fields, FieldError{Field: "password", Reason: "must contain a lowercase letter"})
	}
	if !hasDigit {
		fields = append(fields, FieldError{Field: "password", Reason: "must contain a digit"})
	}
	if !hasSymbol {
		fields = append(fields, FieldError{Field: "password", Reason: "must contain a symbol"})
	}

	return fields
}

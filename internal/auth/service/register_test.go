package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halcyondigital/accounts/internal/auth/domain"
)

func fieldsByName(err error) map[string][]string {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	out := make(map[string][]string)
	for _, f := range verr.Fields {
		out[f.Field] = append(out[f.Field], f.Reason)
	}
	return out
}

func TestRegisterCreatesActiveAccount(t *testing.T) {
	s := newTestStore(t)
	svc := &RegisterService{Store: s, Limiter: allowAll{}}

	pub, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Jane.Doe@Example.com",
		Name:     "Jane Doe",
		Password: "Str0ng-Enough!",
		RemoteIP: "198.51.100.1",
	})
	require.NoError(t, err)
	require.Equal(t, "jane.doe@example.com", pub.Email, "email is stored lower-case")
	require.Equal(t, domain.RoleClient, pub.Role)
	require.Equal(t, domain.StatusActive, pub.Status)
	require.False(t, pub.TwoFactorEnabled)
	require.NotEmpty(t, pub.ID)
}

func TestRegisterAcceptsMinimumStrongPassword(t *testing.T) {
	s := newTestStore(t)
	svc := &RegisterService{Store: s, Limiter: allowAll{}}

	// Nine characters covering all four classes clears the 8-char floor.
	pub, err := svc.Register(context.Background(), RegisterInput{
		Email:    "jane@example.com",
		Name:     "Jane Doe",
		Password: "Abc12345!",
		RemoteIP: "198.51.100.1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleClient, pub.Role)
	require.Equal(t, domain.StatusActive, pub.Status)
}

func TestRegisterAcceptsUnprivilegedRole(t *testing.T) {
	s := newTestStore(t)
	svc := &RegisterService{Store: s, Limiter: allowAll{}}

	pub, err := svc.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Name:     "Plain User",
		Password: "Str0ng-Enough!",
		Role:     "user",
		RemoteIP: "198.51.100.1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, pub.Role)
}

func TestRegisterCollectsAllValidationFailures(t *testing.T) {
	s := newTestStore(t)
	svc := &RegisterService{Store: s, Limiter: allowAll{}}

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "not-an-email",
		Name:     "x",
		Password: "short", // misses length, upper, digit and symbol
		RemoteIP: "198.51.100.1",
	})
	require.Error(t, err)

	fields := fieldsByName(err)
	require.NotNil(t, fields, "expected a ValidationError")
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "name")
	require.Len(t, fields["password"], 4, "each unmet password rule is reported")
}

func TestRegisterRejectsPrivilegedRoles(t *testing.T) {
	s := newTestStore(t)
	svc := &RegisterService{Store: s, Limiter: allowAll{}}

	for _, role := range []string{"admin", "manager"} {
		_, err := svc.Register(context.Background(), RegisterInput{
			Email:    "wannabe@example.com",
			Name:     "Wannabe Admin",
			Password: "Str0ng-Enough!",
			Role:     role,
			RemoteIP: "198.51.100.1",
		})
		fields := fieldsByName(err)
		require.Contains(t, fields, "role", "role %q must be rejected", role)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	s := newTestStore(t)
	svc := &RegisterService{Store: s, Limiter: allowAll{}}

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "someone@example.com",
		Name:     "Some One",
		Password: "Str0ng-Enough!",
		Role:     "superuser",
		RemoteIP: "198.51.100.1",
	})
	fields := fieldsByName(err)
	require.Contains(t, fields, "role")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	svc := &RegisterService{Store: s, Limiter: allowAll{}}

	in := RegisterInput{
		Email:    "taken@example.com",
		Name:     "First In",
		Password: "Str0ng-Enough!",
		RemoteIP: "198.51.100.1",
	}
	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	in.Email = "TAKEN@example.com" // same address, different case
	_, err = svc.Register(context.Background(), in)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRateLimited(t *testing.T) {
	s := newTestStore(t)
	svc := &RegisterService{Store: s, Limiter: denyAll{}}

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "limited@example.com",
		Name:     "Over Quota",
		Password: "Str0ng-Enough!",
		RemoteIP: "198.51.100.1",
	})
	require.ErrorIs(t, err, ErrRateLimited)
}

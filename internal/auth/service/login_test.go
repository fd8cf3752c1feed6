package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/halcyondigital/accounts/internal/auth/domain"
	"github.com/halcyondigital/accounts/internal/auth/store"
	"github.com/halcyondigital/accounts/pkg/cryptox"
	"github.com/halcyondigital/accounts/pkg/jwtx"
)

const testIssuer = "accounts-test"

func newLoginService(t *testing.T, s store.Store) (*LoginService, jwtx.Verifier) {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)
	verifier := jwtx.NewVerifierEdDSA(signer, testIssuer)

	svc := &LoginService{
		Store:     s,
		Signer:    signer,
		TwoFactor: newTwoFactorService(s),
		Limiter:   allowAll{},
		Issuer:    testIssuer,
		TokenTTL:  time.Hour,
	}
	return svc, verifier
}

func TestLoginIssuesSession(t *testing.T) {
	s := newTestStore(t)
	svc, verifier := newLoginService(t, s)
	acct := seedAccount(t, s, "signin@example.com")

	sess, err := svc.Login(context.Background(), LoginInput{
		Email:    "signin@example.com",
		Password: seedPassword,
		RemoteIP: "198.51.100.1",
	})
	require.NoError(t, err)
	require.Equal(t, int(time.Hour.Seconds()), sess.ExpiresIn)
	require.Equal(t, acct.ID, sess.Account.ID)

	claims, err := verifier.Verify(sess.Token)
	require.NoError(t, err)
	require.Equal(t, acct.ID, claims.Subject)
	require.Equal(t, "client", claims.Role)
	require.Equal(t, "Seed Account", claims.Name)
	require.False(t, claims.TwoFactor)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestStore(t)
	svc, _ := newLoginService(t, s)
	seedAccount(t, s, "wrongpw@example.com")

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "wrongpw@example.com",
		Password: "Not-The-Password-1",
		RemoteIP: "198.51.100.1",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	s := newTestStore(t)
	svc, _ := newLoginService(t, s)

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: seedPassword,
		RemoteIP: "198.51.100.1",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials,
		"unknown email must be indistinguishable from a wrong password")
}

func TestLoginPasswordlessAccount(t *testing.T) {
	s := newTestStore(t)
	svc, _ := newLoginService(t, s)

	require.NoError(t, s.Accounts().CreateAccount(context.Background(), domain.Account{
		ID:     "01EXTERNAL",
		Email:  "sso-only@example.com",
		Name:   "SSO Only",
		Role:   domain.RoleClient,
		Status: domain.StatusActive,
	}))

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "sso-only@example.com",
		Password: seedPassword,
		RemoteIP: "198.51.100.1",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginNonActiveAccount(t *testing.T) {
	s := newTestStore(t)
	svc, _ := newLoginService(t, s)
	acct := seedAccount(t, s, "suspended@example.com")

	require.NoError(t, s.Accounts().UpdateStatus(context.Background(), acct.ID, domain.StatusSuspended))

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "suspended@example.com",
		Password: seedPassword,
		RemoteIP: "198.51.100.1",
	})
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLoginWithTwoFactor(t *testing.T) {
	s := newTestStore(t)
	svc, verifier := newLoginService(t, s)
	acct := seedAccount(t, s, "tfa@example.com")

	setup, err := svc.TwoFactor.Setup(context.Background(), acct.ID)
	require.NoError(t, err)
	require.NoError(t, svc.TwoFactor.Verify(context.Background(), acct.ID, codeAt(t, setup.Secret, testClock)))

	in := LoginInput{
		Email:    "tfa@example.com",
		Password: seedPassword,
		RemoteIP: "198.51.100.1",
	}

	t.Run("missing code is challenged", func(t *testing.T) {
		_, err := svc.Login(context.Background(), in)
		require.ErrorIs(t, err, ErrSecondFactorRequired)
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		bad := in
		bad.Code = "000000"
		_, err := svc.Login(context.Background(), bad)
		require.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("TOTP code signs in with tfa claim", func(t *testing.T) {
		good := in
		good.Code = codeAt(t, setup.Secret, testClock)
		sess, err := svc.Login(context.Background(), good)
		require.NoError(t, err)

		claims, err := verifier.Verify(sess.Token)
		require.NoError(t, err)
		require.True(t, claims.TwoFactor)
	})

	t.Run("backup code signs in once", func(t *testing.T) {
		recovery := in
		recovery.Code = setup.BackupCodes[1]

		_, err := svc.Login(context.Background(), recovery)
		require.NoError(t, err)

		_, err = svc.Login(context.Background(), recovery)
		require.ErrorIs(t, err, ErrInvalidCode)
	})
}

func TestLoginRateLimited(t *testing.T) {
	s := newTestStore(t)
	svc, _ := newLoginService(t, s)
	svc.Limiter = denyAll{}
	seedAccount(t, s, "throttled@example.com")

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "throttled@example.com",
		Password: seedPassword,
		RemoteIP: "198.51.100.1",
	})
	require.ErrorIs(t, err, ErrRateLimited)
}

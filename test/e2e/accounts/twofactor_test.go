package accounts_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/halcyondigital/accounts/pkg/accountsdk"
)

// currentCode derives the TOTP code for a secret the way an authenticator
// app would.
func currentCode(t *testing.T, secret string) string {
	t.Helper()

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

func TestE2ETwoFactorLifecycle(t *testing.T) {
	baseURL, cleanup := setupAccountsContainer(t, relaxedEnv())
	defer cleanup()

	client := accountsdk.NewClient(baseURL)
	registerAccount(t, client, "tfa@example.com", "Two Factor")
	authed, _ := signIn(t, client, "tfa@example.com", "")

	// Enroll.
	setup, err := authed.SetupTwoFactor(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.Contains(t, setup.OTPAuthURL, "otpauth://totp/")
	require.NotEmpty(t, setup.QRCode)
	require.Len(t, setup.BackupCodes, 10)

	// Armed but unconfirmed: sign-in still works without a code.
	authed, _ = signIn(t, client, "tfa@example.com", "")

	// Wrong confirmation code is rejected.
	err = authed.VerifyTwoFactor(context.Background(), "000000")
	requireAPIError(t, err, http.StatusBadRequest, accountsdk.ErrorCodeInvalidCode)

	// Right code flips it on.
	require.NoError(t, authed.VerifyTwoFactor(context.Background(), currentCode(t, setup.Secret)))

	me, err := authed.Me(context.Background())
	require.NoError(t, err)
	require.True(t, me.TwoFactorEnabled)

	// Sign-in now demands a second factor.
	_, err = client.Login(context.Background(), accountsdk.LoginRequest{
		Email:    "tfa@example.com",
		Password: testPassword,
	})
	requireAPIError(t, err, http.StatusConflict, accountsdk.ErrorCodeSecondFactor)

	// TOTP code completes sign-in.
	authed, _ = signIn(t, client, "tfa@example.com", currentCode(t, setup.Secret))

	// A backup code also completes sign-in, exactly once.
	_, err = client.Login(context.Background(), accountsdk.LoginRequest{
		Email:    "tfa@example.com",
		Password: testPassword,
		Code:     setup.BackupCodes[0],
	})
	require.NoError(t, err)

	_, err = client.Login(context.Background(), accountsdk.LoginRequest{
		Email:    "tfa@example.com",
		Password: testPassword,
		Code:     setup.BackupCodes[0],
	})
	requireAPIError(t, err, http.StatusBadRequest, accountsdk.ErrorCodeInvalidCode)

	// Disable needs the password; afterwards plain sign-in works again.
	err = authed.DisableTwoFactor(context.Background(), "Wrong-Password-1")
	requireAPIError(t, err, http.StatusUnauthorized, accountsdk.ErrorCodeInvalidCreds)

	require.NoError(t, authed.DisableTwoFactor(context.Background(), testPassword))

	_, sess := signIn(t, client, "tfa@example.com", "")
	require.False(t, sess.Account.TwoFactorEnabled)
}

func TestE2ETwoFactorSetupRequiresSession(t *testing.T) {
	baseURL, cleanup := setupAccountsContainer(t, relaxedEnv())
	defer cleanup()

	client := accountsdk.NewClient(baseURL)
	_, err := client.SetupTwoFactor(context.Background())
	requireAPIError(t, err, http.StatusUnauthorized, accountsdk.ErrorCodeUnauthorized)
}

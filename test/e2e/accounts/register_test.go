package accounts_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halcyondigital/accounts/pkg/accountsdk"
)

func TestE2ERegister(t *testing.T) {
	baseURL, cleanup := setupAccountsContainer(t, relaxedEnv())
	defer cleanup()

	client := accountsdk.NewClient(baseURL)

	t.Run("creates an active client account", func(t *testing.T) {
		acct := registerAccount(t, client, "jane@example.com", "Jane Doe")

		require.NotEmpty(t, acct.ID)
		require.Equal(t, "jane@example.com", acct.Email)
		require.Equal(t, "client", acct.Role)
		require.Equal(t, "active", acct.Status)
		require.False(t, acct.TwoFactorEnabled)
	})

	t.Run("rejects a duplicate email regardless of case", func(t *testing.T) {
		_, err := client.Register(context.Background(), accountsdk.RegisterRequest{
			Name:     "Second Jane",
			Email:    "JANE@example.com",
			Password: testPassword,
		})
		requireAPIError(t, err, http.StatusConflict, accountsdk.ErrorCodeEmailExists)
	})

	t.Run("reports every validation failure at once", func(t *testing.T) {
		_, err := client.Register(context.Background(), accountsdk.RegisterRequest{
			Name:     "x",
			Email:    "not-an-email",
			Password: "weak",
		})
		requireAPIError(t, err, http.StatusBadRequest, accountsdk.ErrorCodeValidation)

		apiErr := err.(*accountsdk.APIError)
		seen := map[string]bool{}
		for _, f := range apiErr.Fields {
			seen[f.Field] = true
		}
		require.True(t, seen["email"], "email failure should be listed")
		require.True(t, seen["name"], "name failure should be listed")
		require.True(t, seen["password"], "password failures should be listed")
	})

	t.Run("refuses self-assigned privileged roles", func(t *testing.T) {
		_, err := client.Register(context.Background(), accountsdk.RegisterRequest{
			Name:     "Eve Adams",
			Email:    "eve@example.com",
			Password: testPassword,
			Role:     "admin",
		})
		requireAPIError(t, err, http.StatusBadRequest, accountsdk.ErrorCodeValidation)
	})
}

func TestE2ERegisterRateLimit(t *testing.T) {
	env := relaxedEnv()
	// Tighten only the registration window so the test trips it quickly.
	env["ACCOUNTS_REGISTER_LIMIT_MAX"] = "3"
	env["ACCOUNTS_REGISTER_LIMIT_WINDOW"] = "1h"

	baseURL, cleanup := setupAccountsContainer(t, env)
	defer cleanup()

	client := accountsdk.NewClient(baseURL)

	for i := 0; i < 3; i++ {
		_, err := client.Register(context.Background(), accountsdk.RegisterRequest{
			Name:     "Quota Tester",
			Email:    fmt.Sprintf("quota%d@example.com", i),
			Password: testPassword,
		})
		require.NoError(t, err, "attempt %d should be within budget", i+1)
	}

	_, err := client.Register(context.Background(), accountsdk.RegisterRequest{
		Name:     "Quota Tester",
		Email:    "quota99@example.com",
		Password: testPassword,
	})
	requireAPIError(t, err, http.StatusTooManyRequests, accountsdk.ErrorCodeRateLimited)
}

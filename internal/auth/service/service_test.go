package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/halcyondigital/accounts/internal/auth/domain"
	"github.com/halcyondigital/accounts/internal/auth/store"
	"github.com/halcyondigital/accounts/internal/auth/store/drivers/sqlite"
	"github.com/halcyondigital/accounts/pkg/cryptox"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// allowAll and denyAll stub the rate limiter at either extreme.
type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

// testClock is the frozen time source for TOTP checks.
var testClock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedAccount registers an active account with a known password and
// returns it.
func seedAccount(t *testing.T, s store.Store, email string) domain.Account {
	t.Helper()

	reg := &RegisterService{Store: s, Limiter: allowAll{}}
	pub, err := reg.Register(context.Background(), RegisterInput{
		Email:    email,
		Name:     "Seed Account",
		Password: seedPassword,
		RemoteIP: "198.51.100.1",
	})
	require.NoError(t, err)

	acct, err := s.Accounts().GetAccountByID(context.Background(), pub.ID)
	require.NoError(t, err)
	return acct
}

const seedPassword = "Correct-Horse-9"

package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTwoFactorStates(t *testing.T) {
	t.Run("off", func(t *testing.T) {
		tf, err := NewTwoFactor("", false)
		require.NoError(t, err)
		require.Equal(t, TwoFactorOff, tf.State())
		require.Empty(t, tf.Secret())
	})

	t.Run("armed", func(t *testing.T) {
		tf, err := NewTwoFactor("JBSWY3DPEHPK3PXP", false)
		require.NoError(t, err)
		require.Equal(t, TwoFactorArmed, tf.State())
		require.Equal(t, "JBSWY3DPEHPK3PXP", tf.Secret())
	})

	t.Run("enabled", func(t *testing.T) {
		tf, err := NewTwoFactor("JBSWY3DPEHPK3PXP", true)
		require.NoError(t, err)
		require.Equal(t, TwoFactorEnabled, tf.State())
	})

	t.Run("enabled without secret is rejected", func(t *testing.T) {
		_, err := NewTwoFactor("", true)
		require.ErrorIs(t, err, ErrCorruptTwoFactorState)
	})
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("  Client ")
	require.NoError(t, err)
	require.Equal(t, RoleClient, role)

	_, err = ParseRole("superuser")
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestRolePrivileged(t *testing.T) {
	require.True(t, RoleAdmin.Privileged())
	require.True(t, RoleManager.Privileged())
	require.False(t, RoleUser.Privileged())
	require.False(t, RoleClient.Privileged())
}

func TestPublicProjectionHidesSecrets(t *testing.T) {
	hash := "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"
	tf, err := NewTwoFactor("JBSWY3DPEHPK3PXP", true)
	require.NoError(t, err)

	acct := Account{
		ID:           "01ACCT",
		Email:        "jane@example.com",
		Name:         "Jane Doe",
		Role:         RoleClient,
		Status:       StatusActive,
		PasswordHash: &hash,
		TwoFactor:    tf,
	}

	pub := acct.Public()
	require.Equal(t, "01ACCT", pub.ID)
	require.True(t, pub.TwoFactorEnabled)
	// The projection type has no hash or secret field at all; spot-check
	// the values that do cross.
	require.Equal(t, RoleClient, pub.Role)
	require.Equal(t, StatusActive, pub.Status)
}

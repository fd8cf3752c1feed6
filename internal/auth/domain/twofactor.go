package domain

import "errors"

// TwoFactorState tags the two-factor lifecycle. The secret travels with
// the state so that "enabled without a secret" cannot be constructed.
type TwoFactorState int

const (
	// TwoFactorOff: no secret exists.
	TwoFactorOff TwoFactorState = iota
	// TwoFactorArmed: a secret exists but has not been confirmed. Codes are
	// not yet required at sign-in.
	TwoFactorArmed
	// TwoFactorEnabled: the secret was confirmed with a valid code; a
	// second factor is required at sign-in.
	TwoFactorEnabled
)

// ErrCorruptTwoFactorState reports a stored row claiming enabled
// two-factor without a secret. Treated as a server error, never silently
// downgraded.
var ErrCorruptTwoFactorState = errors.New("domain: two-factor enabled without a secret")

// TwoFactor is the tagged two-factor state of an account.
type TwoFactor struct {
	state  TwoFactorState
	secret string
}

// NewTwoFactor reconstructs the state from its stored representation.
func NewTwoFactor(secret string, enabled bool) (TwoFactor, error) {
	switch {
	case enabled && secret == "":
		return TwoFactor{}, ErrCorruptTwoFactorState
	case enabled:
		return TwoFactor{state: TwoFactorEnabled, secret: secret}, nil
	case secret != "":
		return TwoFactor{state: TwoFactorArmed, secret: secret}, nil
	default:
		return TwoFactor{}, nil
	}
}

// State returns the lifecycle tag.
func (tf TwoFactor) State() TwoFactorState { return tf.state }

// Secret returns the base32 TOTP secret, or "" in the Off state.
func (tf TwoFactor) Secret() string { return tf.secret }

func (s TwoFactorState) String() string {
	switch s {
	case TwoFactorArmed:
		return "armed"
	case TwoFactorEnabled:
		return "enabled"
	default:
		return "off"
	}
}

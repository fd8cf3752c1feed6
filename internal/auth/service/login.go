package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/halcyondigital/accounts/internal/auth/domain"
	"github.com/halcyondigital/accounts/internal/auth/ratelimit"
	"github.com/halcyondigital/accounts/internal/auth/store"
	"github.com/halcyondigital/accounts/pkg/cryptox"
	"github.com/halcyondigital/accounts/pkg/jwtx"
	"github.com/halcyondigital/accounts/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// passwordless accounts alike, so responses cannot be used to probe
	// which emails exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrAccountDisabled      = errors.New("account is not active")
	ErrSecondFactorRequired = errors.New("second factor required")
)

// LoginInput is a sign-in request after transport decoding.
type LoginInput struct {
	Email    string
	Password string
	// Code is the optional second factor: a TOTP code or a backup code.
	Code string
	// RemoteIP keys the sign-in rate limit.
	RemoteIP string
}

// Session is a freshly issued sign-in result.
type Session struct {
	Token     string
	ExpiresIn int // seconds
	Account   domain.PublicAccount
}

type LoginService struct {
	Store     store.Store
	Signer    jwtx.Signer
	TwoFactor *TwoFactorService
	Limiter   ratelimit.Limiter

	Issuer   string
	TokenTTL time.Duration
}

// Login verifies the credentials (and second factor where enabled) and
// issues a signed session token.
func (s *LoginService) Login(ctx context.Context, in LoginInput) (Session, error) {
	log := slogx.FromContext(ctx)

	if !s.Limiter.Allow(in.RemoteIP) {
		log.Warn("sign-in rate limited", slog.String("remote_ip", in.RemoteIP))
		return Session{}, ErrRateLimited
	}

	acct, err := s.Store.Accounts().GetAccountByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("failed to look up account: %w", err)
	}

	if !acct.HasPassword() {
		return Session{}, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(in.Password, *acct.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Warn("sign-in password mismatch", slog.String("account_id", acct.ID))
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("failed to verify password: %w", err)
	}

	if !acct.Status.CanSignIn() {
		log.Warn("sign-in on non-active account",
			slog.String("account_id", acct.ID),
			slog.String("status", acct.Status.String()),
		)
		return Session{}, ErrAccountDisabled
	}

	twoFactorSatisfied := false
	if acct.TwoFactor.State() == domain.TwoFactorEnabled {
		if in.Code == "" {
			return Session{}, ErrSecondFactorRequired
		}
		if err := s.TwoFactor.CheckSecondFactor(ctx, acct, in.Code); err != nil {
			if errors.Is(err, ErrInvalidCode) {
				log.Warn("sign-in second factor rejected", slog.String("account_id", acct.ID))
			}
			return Session{}, err
		}
		twoFactorSatisfied = true
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(
		acct.ID,
		acct.Role.String(),
		acct.Name,
		twoFactorSatisfied,
		ttl,
		s.Issuer,
		time.Now().UTC(),
	)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	log.Info("sign-in succeeded",
		slog.String("account_id", acct.ID),
		slog.Bool("two_factor", twoFactorSatisfied),
	)

	return Session{
		Token:     token,
		ExpiresIn: int(ttl.Seconds()),
		Account:   acct.Public(),
	}, nil
}

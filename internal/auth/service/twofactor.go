package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/halcyondigital/accounts/internal/auth/domain"
	"github.com/halcyondigital/accounts/internal/auth/ratelimit"
	"github.com/halcyondigital/accounts/internal/auth/store"
	"github.com/halcyondigital/accounts/pkg/cryptox"
)

const (
	backupCodeCount = 10

	totpPeriod = 30
	// totpSkew accepts codes from one step either side of now, absorbing
	// clock drift between the server and the authenticator app.
	totpSkew = 1

	qrCodeSize = 200
)

var (
	ErrInvalidInput        = errors.New("code must be exactly six digits")
	ErrInvalidCode         = errors.New("invalid two-factor code")
	ErrNotArmed            = errors.New("two-factor setup has not been started")
	ErrTwoFactorEnabled    = errors.New("two-factor already enabled")
	ErrTwoFactorNotEnabled = errors.New("two-factor not enabled")
	ErrNoPasswordOnFile    = errors.New("account has no password to confirm with")
	ErrInvalidPassword     = errors.New("password confirmation failed")
)

// TwoFactorSetup is what enrollment hands back to the user, exactly once.
type TwoFactorSetup struct {
	Secret     string
	OTPAuthURL string
	// QRCode is a data: URL holding a PNG of the otpauth URL.
	QRCode      string
	BackupCodes []string
}

type TwoFactorService struct {
	Store   store.Store
	Issuer  string // issuer label shown in authenticator apps
	Limiter ratelimit.Limiter

	// Now is the time source for TOTP validation; nil means time.Now.
	Now func() time.Time
}

func (s *TwoFactorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Setup arms two-factor for the account: it mints a fresh secret and backup
// codes and stores them, but a second factor is not yet required at sign-in.
// Calling it again before verification replaces the pending secret.
func (s *TwoFactorService) Setup(ctx context.Context, accountID string) (TwoFactorSetup, error) {
	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return TwoFactorSetup{}, fmt.Errorf("failed to get account: %w", err)
	}
	if acct.TwoFactor.State() == domain.TwoFactorEnabled {
		return TwoFactorSetup{}, ErrTwoFactorEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: acct.Email,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return TwoFactorSetup{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	qr, err := renderQRCode(key)
	if err != nil {
		return TwoFactorSetup{}, err
	}

	codes, err := cryptox.GenerateBackupCodes(backupCodeCount)
	if err != nil {
		return TwoFactorSetup{}, fmt.Errorf("failed to generate backup codes: %w", err)
	}

	// Secret and codes land together or not at all.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().UpdateTwoFactorSecret(ctx, accountID, key.Secret()); err != nil {
			return fmt.Errorf("failed to store secret: %w", err)
		}
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, accountID); err != nil {
			return fmt.Errorf("failed to clear old backup codes: %w", err)
		}
		for _, code := range codes {
			hash := cryptox.FingerprintToken(cryptox.NormalizeBackupCode(code))
			if err := tx.BackupCodes().CreateBackupCode(ctx, accountID, hash); err != nil {
				return fmt.Errorf("failed to store backup code: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return TwoFactorSetup{}, err
	}

	return TwoFactorSetup{
		Secret:      key.Secret(),
		OTPAuthURL:  key.URL(),
		QRCode:      qr,
		BackupCodes: codes,
	}, nil
}

// Verify confirms enrollment with a code from the authenticator app. On
// success a second factor becomes required at every sign-in. Backup codes
// are not accepted here; only a 6-digit TOTP code proves the authenticator
// was provisioned.
func (s *TwoFactorService) Verify(ctx context.Context, accountID string, code string) error {
	if !s.Limiter.Allow(accountID) {
		return ErrRateLimited
	}

	if !isTOTPShape(code) {
		return ErrInvalidInput
	}

	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}

	switch acct.TwoFactor.State() {
	case domain.TwoFactorEnabled:
		return ErrTwoFactorEnabled
	case domain.TwoFactorOff:
		return ErrNotArmed
	}

	if !s.validTOTP(code, acct.TwoFactor.Secret()) {
		return ErrInvalidCode
	}

	if err := s.Store.Accounts().EnableTwoFactor(ctx, accountID); err != nil {
		return fmt.Errorf("failed to enable two-factor: %w", err)
	}
	return nil
}

// Disable turns two-factor off after the account holder re-confirms their
// password. Backup codes are destroyed with the secret.
func (s *TwoFactorService) Disable(ctx context.Context, accountID string, password string) error {
	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if acct.TwoFactor.State() == domain.TwoFactorOff {
		return ErrTwoFactorNotEnabled
	}
	if !acct.HasPassword() {
		return ErrNoPasswordOnFile
	}

	if err := cryptox.VerifyPassword(password, *acct.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, accountID); err != nil {
			return fmt.Errorf("failed to delete backup codes: %w", err)
		}
		if err := tx.Accounts().DisableTwoFactor(ctx, accountID); err != nil {
			return fmt.Errorf("failed to disable two-factor: %w", err)
		}
		return nil
	})
}

// CheckSecondFactor validates a sign-in second factor for an account with
// two-factor enabled. Six digits are treated as a TOTP code; anything else
// as a backup code, which is consumed on success.
func (s *TwoFactorService) CheckSecondFactor(ctx context.Context, acct domain.Account, code string) error {
	if acct.TwoFactor.State() != domain.TwoFactorEnabled {
		return ErrTwoFactorNotEnabled
	}

	if isTOTPShape(code) {
		if s.validTOTP(code, acct.TwoFactor.Secret()) {
			return nil
		}
		return ErrInvalidCode
	}

	hash := cryptox.FingerprintToken(cryptox.NormalizeBackupCode(code))
	if err := s.Store.BackupCodes().ConsumeBackupCode(ctx, acct.ID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("failed to consume backup code: %w", err)
	}
	return nil
}

func (s *TwoFactorService) validTOTP(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, s.now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

func isTOTPShape(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// renderQRCode encodes the enrollment key as an inline PNG data URL so the
// UI can show it without another round trip.
func renderQRCode(key *otp.Key) (string, error) {
	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

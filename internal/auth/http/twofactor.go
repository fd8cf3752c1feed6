package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/halcyondigital/accounts/internal/auth/service"
	"github.com/halcyondigital/accounts/pkg/accountsdk"
	"github.com/halcyondigital/accounts/pkg/httpx"
	"github.com/halcyondigital/accounts/pkg/slogx"
)

// TwoFactorHandler handles the /api/account/2fa endpoints.
type TwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService
}

// HandleSetup handles POST /api/account/2fa/setup
//
//	@Summary		Start two-factor enrollment
//	@Description	Mints a TOTP secret with QR code and backup codes. Two-factor is not
//	@Description	required at sign-in until the secret is confirmed via verify. The
//	@Description	secret and backup codes are shown exactly once.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.TwoFactorSetupResponse	"Enrollment material"
//	@Failure		401	{object}	accountsdk.ErrorResponse			"No valid session"
//	@Failure		409	{object}	accountsdk.ErrorResponse			"Two-factor already enabled"
//	@Router			/api/account/2fa/setup [post].
func (h *TwoFactorHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.UserIDFromCtx(ctx)
	if accountID == "" {
		accountsdk.ErrUnauthorized.WriteError(w)
		return
	}

	setup, err := h.TwoFactorService.Setup(ctx, accountID)
	if err != nil {
		if errors.Is(err, service.ErrTwoFactorEnabled) {
			accountsdk.ErrTwoFactorEnabled.WriteError(w)
			return
		}
		log.Error("failed to start two-factor setup", "account_id", accountID, "err", err)
		accountsdk.ErrServerError.WriteError(w)
		return
	}

	log.Info("two-factor armed", "account_id", accountID)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, accountsdk.TwoFactorSetupResponse{
		Secret:      setup.Secret,
		OTPAuthURL:  setup.OTPAuthURL,
		QRCode:      setup.QRCode,
		BackupCodes: setup.BackupCodes,
	})
}

// HandleVerify handles POST /api/account/2fa/verify
//
//	@Summary		Confirm two-factor enrollment
//	@Description	Verifies a TOTP code against the pending secret. On success a second
//	@Description	factor becomes required at every sign-in.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.TwoFactorVerifyRequest	true	"TOTP code"
//	@Success		200		{object}	map[string]string					"Confirmation message"
//	@Failure		400		{object}	accountsdk.ErrorResponse			"Malformed or invalid code"
//	@Failure		401		{object}	accountsdk.ErrorResponse			"No valid session"
//	@Failure		409		{object}	accountsdk.ErrorResponse			"Not armed, or already enabled"
//	@Failure		429		{object}	accountsdk.ErrorResponse			"Verification rate limit hit"
//	@Router			/api/account/2fa/verify [post].
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.UserIDFromCtx(ctx)
	if accountID == "" {
		accountsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req accountsdk.TwoFactorVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		accountsdk.ErrInvalidBody.WriteError(w)
		return
	}

	if err := h.TwoFactorService.Verify(ctx, accountID, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			accountsdk.ErrRateLimited.WriteError(w)
		case errors.Is(err, service.ErrInvalidInput):
			accountsdk.ErrInvalidInput.WriteError(w)
		case errors.Is(err, service.ErrInvalidCode):
			log.Warn("two-factor verify rejected", "account_id", accountID)
			accountsdk.ErrInvalidCode.WriteError(w)
		case errors.Is(err, service.ErrNotArmed):
			accountsdk.ErrNotArmed.WriteError(w)
		case errors.Is(err, service.ErrTwoFactorEnabled):
			accountsdk.ErrTwoFactorEnabled.WriteError(w)
		default:
			log.Error("failed to verify two-factor", "account_id", accountID, "err", err)
			accountsdk.ErrServerError.WriteError(w)
		}
		return
	}

	log.Info("two-factor enabled", "account_id", accountID)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "two-factor authentication enabled",
	})
}

// HandleDisable handles DELETE /api/account/2fa
//
//	@Summary		Disable two-factor authentication
//	@Description	Turns two-factor off after password confirmation. The secret and all
//	@Description	remaining backup codes are destroyed atomically.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.TwoFactorDisableRequest	true	"Current password"
//	@Success		200		{object}	map[string]string					"Confirmation message"
//	@Failure		401		{object}	accountsdk.ErrorResponse			"No valid session or wrong password"
//	@Failure		409		{object}	accountsdk.ErrorResponse			"Not enabled, or no password on file"
//	@Router			/api/account/2fa [delete].
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.UserIDFromCtx(ctx)
	if accountID == "" {
		accountsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req accountsdk.TwoFactorDisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		accountsdk.ErrInvalidBody.WriteError(w)
		return
	}

	if err := h.TwoFactorService.Disable(ctx, accountID, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrTwoFactorNotEnabled):
			accountsdk.ErrNotArmed.WriteError(w)
		case errors.Is(err, service.ErrNoPasswordOnFile):
			accountsdk.ErrNoPasswordOnFile.WriteError(w)
		case errors.Is(err, service.ErrInvalidPassword):
			log.Warn("two-factor disable with wrong password", "account_id", accountID)
			accountsdk.ErrInvalidCredentials.WriteError(w)
		default:
			log.Error("failed to disable two-factor", "account_id", accountID, "err", err)
			accountsdk.ErrServerError.WriteError(w)
		}
		return
	}

	log.Info("two-factor disabled", "account_id", accountID)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "two-factor authentication disabled",
	})
}

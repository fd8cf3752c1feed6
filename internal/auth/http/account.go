package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/halcyondigital/accounts/internal/auth/service"
	"github.com/halcyondigital/accounts/internal/auth/store"
	"github.com/halcyondigital/accounts/pkg/accountsdk"
	"github.com/halcyondigital/accounts/pkg/httpx"
	"github.com/halcyondigital/accounts/pkg/slogx"
)

// MeHandler handles GET /api/account/me.
type MeHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Get the authenticated account
//	@Tags			Account
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.AccountResponse	"The account"
//	@Failure		401	{object}	accountsdk.ErrorResponse	"No valid session"
//	@Router			/api/account/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.UserIDFromCtx(ctx)
	if accountID == "" {
		accountsdk.ErrUnauthorized.WriteError(w)
		return
	}

	pub, err := h.AccountService.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Valid token for an account that no longer exists.
			accountsdk.ErrUnauthorized.WriteError(w)
			return
		}
		log.Error("failed to load account", "account_id", accountID, "err", err)
		accountsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toAccountResponse(pub))
}

// ChangePasswordHandler handles PUT /api/account/password.
type ChangePasswordHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Change the account password
//	@Description	Replaces the password after re-confirming the current one. The new
//	@Description	password must satisfy the same policy as registration.
//	@Tags			Account
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	map[string]string					"Confirmation message"
//	@Failure		400		{object}	accountsdk.ErrorResponse			"New password violates the policy"
//	@Failure		401		{object}	accountsdk.ErrorResponse			"No valid session or wrong current password"
//	@Failure		409		{object}	accountsdk.ErrorResponse			"No password on file"
//	@Router			/api/account/password [put].
func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := httpx.UserIDFromCtx(ctx)
	if accountID == "" {
		accountsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req accountsdk.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		accountsdk.ErrInvalidBody.WriteError(w)
		return
	}

	if err := h.AccountService.ChangePassword(ctx, accountID, req.CurrentPassword, req.NewPassword); err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrNoPasswordOnFile):
			accountsdk.ErrNoPasswordOnFile.WriteError(w)
		case errors.Is(err, service.ErrInvalidPassword):
			log.Warn("password change with wrong current password", "account_id", accountID)
			accountsdk.ErrInvalidCredentials.WriteError(w)
		case errors.As(err, &verr):
			accountsdk.NewValidationError(toFieldErrors(verr.Fields)).WriteError(w)
		default:
			log.Error("failed to change password", "account_id", accountID, "err", err)
			accountsdk.ErrServerError.WriteError(w)
		}
		return
	}

	log.Info("password changed", "account_id", accountID)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "password updated",
	})
}

// AdminAccountsHandler handles GET /api/admin/accounts.
type AdminAccountsHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		List all accounts
//	@Description	Admin-only listing of every account, newest first.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.ListAccountsResponse	"All accounts"
//	@Failure		401	{object}	accountsdk.ErrorResponse		"No valid admin session"
//	@Router			/api/admin/accounts [get].
func (h *AdminAccountsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accts, err := h.AccountService.ListAccounts(ctx)
	if err != nil {
		log.Error("failed to list accounts", "err", err)
		accountsdk.ErrServerError.WriteError(w)
		return
	}

	out := make([]accountsdk.AccountResponse, len(accts))
	for i, pub := range accts {
		out[i] = toAccountResponse(pub)
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, accountsdk.ListAccountsResponse{Accounts: out})
}

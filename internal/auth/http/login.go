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

// LoginHandler handles POST /api/auth/login.
type LoginHandler struct {
	LoginService *service.LoginService
}

// ServeHTTP godoc
//
//	@Summary		Sign in with email and password
//	@Description	Verifies the credentials and issues a session token. Accounts with
//	@Description	two-factor enabled must supply a TOTP or backup code; the response
//	@Description	distinguishes a missing code from an invalid one.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.LoginRequest		true	"Credentials, optionally with a second factor"
//	@Success		200		{object}	accountsdk.SessionResponse	"Session token and account"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Invalid second-factor code"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"Invalid credentials"
//	@Failure		403		{object}	accountsdk.ErrorResponse	"Account not active"
//	@Failure		409		{object}	accountsdk.ErrorResponse	"Second factor required"
//	@Failure		429		{object}	accountsdk.ErrorResponse	"Sign-in rate limit hit"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		accountsdk.ErrInvalidBody.WriteError(w)
		return
	}

	sess, err := h.LoginService.Login(ctx, service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Code:     req.Code,
		RemoteIP: httpx.IPKeyExtractor(r),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			accountsdk.ErrRateLimited.WriteError(w)
		case errors.Is(err, service.ErrInvalidCredentials):
			accountsdk.ErrInvalidCredentials.WriteError(w)
		case errors.Is(err, service.ErrAccountDisabled):
			accountsdk.ErrForbidden.WriteError(w)
		case errors.Is(err, service.ErrSecondFactorRequired):
			accountsdk.ErrSecondFactorRequired.WriteError(w)
		case errors.Is(err, service.ErrInvalidCode):
			accountsdk.ErrInvalidCode.WriteError(w)
		default:
			log.Error("failed to sign in", "err", err)
			accountsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, accountsdk.SessionResponse{
		Token:     sess.Token,
		ExpiresIn: sess.ExpiresIn,
		Account:   toAccountResponse(sess.Account),
	})
}

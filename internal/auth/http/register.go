package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/halcyondigital/accounts/internal/auth/domain"
	"github.com/halcyondigital/accounts/internal/auth/service"
	"github.com/halcyondigital/accounts/pkg/accountsdk"
	"github.com/halcyondigital/accounts/pkg/httpx"
	"github.com/halcyondigital/accounts/pkg/slogx"
)

// RegisterHandler handles POST /api/auth/register.
type RegisterHandler struct {
	RegisterService *service.RegisterService
}

// ServeHTTP godoc
//
//	@Summary		Register a new account
//	@Description	Creates an active account from name, email and password. Validation
//	@Description	failures report every violated rule at once. Privileged roles cannot
//	@Description	be self-assigned.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RegisterRequest	true	"Registration details"
//	@Success		201		{object}	accountsdk.AccountResponse	"The created account"
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Validation failure with field list"
//	@Failure		409		{object}	accountsdk.ErrorResponse	"Email already registered"
//	@Failure		429		{object}	accountsdk.ErrorResponse	"Registration rate limit hit"
//	@Router			/api/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		accountsdk.ErrInvalidBody.WriteError(w)
		return
	}

	pub, err := h.RegisterService.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
		RemoteIP: httpx.IPKeyExtractor(r),
	})
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrRateLimited):
			accountsdk.ErrRateLimited.WriteError(w)
		case errors.As(err, &verr):
			accountsdk.NewValidationError(toFieldErrors(verr.Fields)).WriteError(w)
		case errors.Is(err, service.ErrEmailTaken):
			accountsdk.ErrEmailExists.WriteError(w)
		default:
			log.Error("failed to register account", "err", err)
			accountsdk.ErrServerError.WriteError(w)
		}
		return
	}

	log.Info("account registered", "account_id", pub.ID, "role", pub.Role.String())
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, toAccountResponse(pub))
}

func toFieldErrors(fields []service.FieldError) []accountsdk.FieldError {
	out := make([]accountsdk.FieldError, len(fields))
	for i, f := range fields {
		out[i] = accountsdk.FieldError{Field: f.Field, Reason: f.Reason}
	}
	return out
}

func toAccountResponse(pub domain.PublicAccount) accountsdk.AccountResponse {
	return accountsdk.AccountResponse{
		ID:               pub.ID,
		Email:            pub.Email,
		Name:             pub.Name,
		Role:             pub.Role.String(),
		Status:           pub.Status.String(),
		TwoFactorEnabled: pub.TwoFactorEnabled,
		CreatedAt:        pub.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

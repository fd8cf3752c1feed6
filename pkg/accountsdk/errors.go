package accountsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/halcyondigital/accounts/pkg/httpx"
)

// Error codes shared by the service and its clients.
const (
	ErrorCodeValidation       = "validation_error"
	ErrorCodeInvalidInput     = "invalid_input"
	ErrorCodeRateLimited      = "rate_limit_exceeded"
	ErrorCodeEmailExists      = "email_already_exists"
	ErrorCodeInvalidCreds     = "invalid_credentials"
	ErrorCodeInvalidCode      = "invalid_code"
	ErrorCodeNotArmed         = "two_factor_not_armed"
	ErrorCodeNoPassword       = "no_password_on_file"
	ErrorCodeTwoFactorEnabled = "two_factor_already_enabled"
	ErrorCodeSecondFactor     = "second_factor_required"
	ErrorCodeUnauthorized     = "unauthorized"
	ErrorCodeForbidden        = "forbidden"
	ErrorCodeServerError      = "server_error"
)

// APIError is the typed form of an ErrorResponse. The server uses it to
// write responses; the client returns it from failed calls.
type APIError struct {
	// StatusCode is the HTTP status for this error.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code.
	Code string `json:"error"`

	// Description is a human-readable description of the error.
	Description string `json:"error_description"`

	// Fields enumerates validation failures, when applicable.
	Fields []FieldError `json:"fields,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:            e.Code,
		ErrorDescription: e.Description,
		Fields:           e.Fields,
	})
}

// Predefined API errors.
var (
	ErrInvalidBody = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeValidation,
		Description: "the request body is malformed",
	}

	ErrInvalidInput = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidInput,
		Description: "the code must be exactly six digits",
	}

	ErrRateLimited = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimited,
		Description: "too many attempts, try again later",
	}

	ErrEmailExists = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeEmailExists,
		Description: "an account with this email already exists",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCreds,
		Description: "invalid email or password",
	}

	ErrInvalidCode = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidCode,
		Description: "the code is not valid",
	}

	ErrNotArmed = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeNotArmed,
		Description: "two-factor setup has not been started for this account",
	}

	ErrNoPasswordOnFile = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeNoPassword,
		Description: "this account signs in through an external provider and has no password",
	}

	ErrTwoFactorEnabled = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeTwoFactorEnabled,
		Description: "two-factor authentication is already enabled",
	}

	ErrSecondFactorRequired = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeSecondFactor,
		Description: "a two-factor code is required to complete sign-in",
	}

	ErrUnauthorized = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnauthorized,
		Description: "a valid session is required",
	}

	ErrForbidden = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "the session role does not permit this operation",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewValidationError builds a validation APIError enumerating every
// violated field.
func NewValidationError(fields []FieldError) *APIError {
	return &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeValidation,
		Description: "one or more fields are invalid",
		Fields:      fields,
	}
}

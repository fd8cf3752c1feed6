// Package accountsdk holds the wire types and a small HTTP client for the
// accounts service. Handlers and the e2e suite share these definitions so
// the two cannot drift apart.
package accountsdk

// ErrorResponse is the standard error envelope returned by every endpoint.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`

	// Fields enumerates per-field validation failures. Only present for
	// validation_error responses.
	Fields []FieldError `json:"fields,omitempty"`
}

// FieldError names one violated input rule.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"` // optional, defaults to "client"
}

// AccountResponse is the public projection of an account. It never carries
// the password hash or any two-factor secret.
type AccountResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	Status           string `json:"status"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	CreatedAt        string `json:"created_at"`
}

// LoginRequest is the payload for POST /api/auth/login. Code carries the
// second factor (TOTP or backup code) for accounts with two-factor enabled.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`
}

// SessionResponse is the result of a successful login.
type SessionResponse struct {
	Token     string          `json:"token"`
	ExpiresIn int             `json:"expires_in"` // seconds
	Account   AccountResponse `json:"account"`
}

// TwoFactorSetupResponse carries the enrollment material. The backup codes
// and secret are shown exactly once.
type TwoFactorSetupResponse struct {
	Secret      string   `json:"secret"`       // base32 TOTP secret
	OTPAuthURL  string   `json:"otpauth_url"`  // otpauth:// provisioning URI
	QRCode      string   `json:"qr_code"`      // base64 PNG of the provisioning URI
	BackupCodes []string `json:"backup_codes"` // plaintext, never retrievable again
}

// ChangePasswordRequest is the payload for PUT /api/account/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// TwoFactorVerifyRequest is the payload for POST /api/account/2fa/verify.
type TwoFactorVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFactorDisableRequest is the payload for DELETE /api/account/2fa.
type TwoFactorDisableRequest struct {
	Password string `json:"password"`
}

// ListAccountsResponse is the admin account listing.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// HealthResponse reports liveness/readiness.
type HealthResponse struct {
	Status  string        `json:"status"`
	Version string        `json:"version"`
	Uptime  string        `json:"uptime"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks details dependency state for readiness probes.
type HealthChecks struct {
	Database string `json:"database"`
}

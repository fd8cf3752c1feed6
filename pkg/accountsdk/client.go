package accountsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is an HTTP client for the accounts service. The e2e suite drives
// the service through it; embedding consumers (the site backend) can use it
// the same way.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token is attached as a bearer credential when set.
	Token string
}

// NewClient creates an unauthenticated client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				// Redirects are part of the authorization contract; callers
				// inspect them rather than follow them.
				return http.ErrUseLastResponse
			},
		},
	}
}

// WithToken returns a copy of the client that authenticates with the given
// session token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.Token = token
	return &clone
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AccountResponse, error) {
	var out AccountResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns a session token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (*AccountResponse, error) {
	var out AccountResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/account/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the account password after re-confirming the
// current one.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.doJSON(ctx, http.MethodPut, "/api/account/password",
		ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, nil, http.StatusOK)
}

// SetupTwoFactor starts two-factor enrollment for the authenticated account.
func (c *Client) SetupTwoFactor(ctx context.Context) (*TwoFactorSetupResponse, error) {
	var out TwoFactorSetupResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/account/2fa/setup", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTwoFactor confirms enrollment with a TOTP code.
func (c *Client) VerifyTwoFactor(ctx context.Context, code string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/account/2fa/verify",
		TwoFactorVerifyRequest{Code: code}, nil, http.StatusOK)
}

// DisableTwoFactor turns two-factor off after password confirmation.
func (c *Client) DisableTwoFactor(ctx context.Context, password string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/account/2fa",
		TwoFactorDisableRequest{Password: password}, nil, http.StatusOK)
}

// ListAccounts returns every account. Requires an admin session.
func (c *Client) ListAccounts(ctx context.Context) (*ListAccountsResponse, error) {
	var out ListAccountsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/accounts", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Livez checks service liveness.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// doJSON performs a request with an optional JSON body, decodes a JSON
// response into out (when non-nil), and converts non-expected statuses into
// typed *APIError values.
func (c *Client) doJSON(
	ctx context.Context,
	method, path string,
	body, out any,
	expectedStatus int,
) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// parseErrorResponse converts an error body into a typed *APIError. Bodies
// that do not parse still yield an error carrying the status code.
func parseErrorResponse(status int, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  status,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
			Fields:      errResp.Fields,
		}
	}

	return &APIError{
		StatusCode:  status,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("unexpected response (status %d)", status),
	}
}

package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/halcyondigital/accounts/pkg/jwtx"
)

// BearerToken extracts the bearer token from the Authorization header, or
// returns "" when absent.
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}

// ContextWithSession injects verified session claims for downstream
// handlers.
func ContextWithSession(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

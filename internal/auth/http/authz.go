package http

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/halcyondigital/accounts/internal/auth/domain"
	"github.com/halcyondigital/accounts/pkg/accountsdk"
	"github.com/halcyondigital/accounts/pkg/httpx"
	"github.com/halcyondigital/accounts/pkg/jwtx"
	"github.com/halcyondigital/accounts/pkg/slogx"
)

// SignInPath is where browser requests are sent when a UI route needs a
// session. The original path rides along so sign-in can bounce back.
const SignInPath = "/signin"

// SessionCookieName carries the session token for browser (UI) requests.
// API requests use the Authorization header instead.
const SessionCookieName = "session"

// Surface says how a denied request should be answered.
type Surface int

const (
	// SurfaceUI paths belong to browser-rendered pages: denial redirects
	// to the sign-in page with a callback to the original path.
	SurfaceUI Surface = iota
	// SurfaceAPI paths answer JSON: denial is a 401 envelope.
	SurfaceAPI
)

// Access is the session requirement of a path prefix.
type Access int

const (
	AccessPublic Access = iota
	AccessSession
	AccessAdmin
)

// Rule binds a path prefix to its surface and access requirement.
type Rule struct {
	Prefix  string
	Surface Surface
	Access  Access
}

// Policy is the route authorization table. It is built once at startup;
// lookups never mutate it, so it is safe for concurrent use.
type Policy struct {
	// rules are sorted longest prefix first so the most specific rule
	// wins (e.g. /api/admin before /api).
	rules []Rule
}

// NewPolicy builds a policy from the given rules.
func NewPolicy(rules []Rule) *Policy {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &Policy{rules: sorted}
}

// DefaultPolicy is the site's route table.
func DefaultPolicy() *Policy {
	return NewPolicy([]Rule{
		{Prefix: "/admin", Surface: SurfaceUI, Access: AccessAdmin},
		{Prefix: "/portal", Surface: SurfaceUI, Access: AccessSession},
		{Prefix: "/api/admin", Surface: SurfaceAPI, Access: AccessAdmin},
		{Prefix: "/api/account", Surface: SurfaceAPI, Access: AccessSession},
	})
}

// Match returns the most specific rule covering path. Paths outside every
// rule are public API surface.
func (p *Policy) Match(path string) Rule {
	for _, rule := range p.rules {
		if path == rule.Prefix || strings.HasPrefix(path, rule.Prefix+"/") {
			return rule
		}
	}
	return Rule{Prefix: "/", Surface: SurfaceAPI, Access: AccessPublic}
}

// Middleware enforces the policy table. It also resolves the session token
// (bearer header first, then the session cookie) and injects the verified
// claims into the context for downstream handlers, on public paths too.
//
// A denied client cannot tell a missing session from an insufficient role;
// the distinction only reaches the logs.
func (p *Policy) Middleware(v jwtx.Verifier) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			claims, authenticated := sessionFromRequest(r, v)
			if authenticated {
				ctx = httpx.ContextWithSession(ctx, claims)
				r = r.WithContext(ctx)
			}

			rule := p.Match(r.URL.Path)

			reason := ""
			switch rule.Access {
			case AccessPublic:
			case AccessSession:
				if !authenticated {
					reason = "no_session"
				}
			case AccessAdmin:
				switch {
				case !authenticated:
					reason = "no_session"
				case claims.Role != domain.RoleAdmin.String():
					reason = "insufficient_role"
				}
			}

			if reason != "" {
				log.Warn("route policy denied request",
					"path", r.URL.Path,
					"prefix", rule.Prefix,
					"reason", reason,
				)
				denyRequest(w, r, rule)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// sessionFromRequest resolves and verifies the session token. Expired or
// otherwise invalid tokens count as no session at all.
func sessionFromRequest(r *http.Request, v jwtx.Verifier) (jwtx.Claims, bool) {
	raw := httpx.BearerToken(r)
	if raw == "" {
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			raw = cookie.Value
		}
	}
	if raw == "" {
		return jwtx.Claims{}, false
	}

	claims, err := v.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, false
	}
	return claims, true
}

func denyRequest(w http.ResponseWriter, r *http.Request, rule Rule) {
	if rule.Surface == SurfaceUI {
		target := SignInPath + "?callbackUrl=" + url.QueryEscape(r.URL.Path)
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	accountsdk.ErrUnauthorized.WriteError(w)
}

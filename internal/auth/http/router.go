package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/halcyondigital/accounts/internal/auth/service"
	"github.com/halcyondigital/accounts/internal/auth/store"
	"github.com/halcyondigital/accounts/pkg/httpx"
	"github.com/halcyondigital/accounts/pkg/jwtx"
	"github.com/halcyondigital/accounts/pkg/slogx"

	_ "github.com/halcyondigital/accounts/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	policy       *Policy
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	RegisterService  *service.RegisterService
	LoginService     *service.LoginService
	TwoFactorService *service.TwoFactorService
	AccountService   *service.AccountService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		policy:       DefaultPolicy(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Every request passes the access log and then the route policy. The
	// policy gate runs before the mux so even unregistered paths under a
	// protected prefix are covered.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		r.policy.Middleware(verifier),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccount()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Accounts Service API
//	@version		0.1.0
//	@description	Account registration, password sign-in and TOTP two-factor
//	@description	authentication for the site. Session tokens are EdDSA-signed JWTs.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	registerHandler := &RegisterHandler{RegisterService: r.RegisterService}
	loginHandler := &LoginHandler{LoginService: r.LoginService}

	// Both endpoints carry their own fixed-window limits inside the
	// services; the HTTP-level limits here are a coarser outer guard.
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAccount() {
	meHandler := &MeHandler{AccountService: r.AccountService}
	passwordHandler := &ChangePasswordHandler{AccountService: r.AccountService}
	tfaHandler := &TwoFactorHandler{TwoFactorService: r.TwoFactorService}

	r.Mux.Handle("GET /api/account/me",
		httpx.Chain(meHandler,
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("PUT /api/account/password",
		httpx.Chain(passwordHandler,
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/account/2fa/setup",
		httpx.Chain(http.HandlerFunc(tfaHandler.HandleSetup),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Verification attempts are where TOTP brute force would happen.
	r.Mux.Handle("POST /api/account/2fa/verify",
		httpx.Chain(http.HandlerFunc(tfaHandler.HandleVerify),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("DELETE /api/account/2fa",
		httpx.Chain(http.HandlerFunc(tfaHandler.HandleDisable),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminAccountsHandler{AccountService: r.AccountService}

	r.Mux.Handle("GET /api/admin/accounts",
		httpx.Chain(h,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

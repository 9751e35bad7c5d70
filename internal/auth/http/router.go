package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/inkcart/inkcart/internal/auth/domain"
	"github.com/inkcart/inkcart/internal/auth/oauth"
	"github.com/inkcart/inkcart/internal/auth/service"
	"github.com/inkcart/inkcart/internal/auth/store"
	"github.com/inkcart/inkcart/pkg/httpx"
	"github.com/inkcart/inkcart/pkg/jwtx"
	"github.com/inkcart/inkcart/pkg/slogx"

	_ "github.com/inkcart/inkcart/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       jwtx.Signer
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	AuthService      *service.AuthService
	TokenService     *service.TokenService
	LinkerService    *service.LinkerService
	TwoFactorService *service.TwoFactorService
	GoogleProvider   oauth.Provider // nil disables the Google routes
}

func NewRouter(
	signer jwtx.Signer,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerSessions()
	r.registerGoogle()
	r.registerTwoFactor()
	r.registerRoles()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			InkCart Authentication Service API
//	@version		0.1.0
//	@description	Authentication and session backend for the InkCart storefront: password and Google sign-in,
//	@description	refresh token rotation, and TOTP two-factor authentication.
//	@description
//	@description				Access tokens are EdDSA-signed JWTs carried as "Bearer {token}" or in the access_token cookie.
//
//	@contact.name				InkCart Engineering
//	@contact.url				https://github.com/inkcart/inkcart
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	// POST /auth/register - strict rate limit by IP (public signup endpoint)
	registerHandler := &RegisterHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(registerHandler,
			httpx.MetricsMiddleware("/auth/register"),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login and /auth/login-with-2fa - strict rate limit by
	// IP + email form field to slow credential stuffing
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(loginHandler.HandleLogin),
			httpx.MetricsMiddleware("/auth/login"),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/login-with-2fa",
		httpx.Chain(http.HandlerFunc(loginHandler.HandleLoginWith2FA),
			httpx.MetricsMiddleware("/auth/login-with-2fa"),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /auth/me - authenticated, lenient rate limit by user
	meHandler := &MeHandler{AuthService: r.AuthService}
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(meHandler,
			httpx.MetricsMiddleware("/auth/me"),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSessions() {
	// POST /auth/refresh - moderate rate limit by IP (no access token needed)
	refreshHandler := &RefreshHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.MetricsMiddleware("/auth/refresh"),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	logoutHandler := &LogoutHandler{TokenService: r.TokenService}

	// POST /auth/logout - revokes by refresh token, no access token required
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(logoutHandler.HandleLogout),
			httpx.MetricsMiddleware("/auth/logout"),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// DELETE /auth/logout-all - needs to know who the caller is
	r.Mux.Handle("DELETE /auth/logout-all",
		httpx.Chain(http.HandlerFunc(logoutHandler.HandleLogoutAll),
			httpx.MetricsMiddleware("/auth/logout-all"),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerGoogle() {
	if r.GoogleProvider == nil {
		return
	}

	h := &GoogleHandler{Provider: r.GoogleProvider, LinkerService: r.LinkerService}

	r.Mux.Handle("GET /auth/google",
		httpx.Chain(http.HandlerFunc(h.HandleRedirect),
			httpx.MetricsMiddleware("/auth/google"),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	// The callback accepts both methods; providers using the form_post
	// response mode deliver code and state in the request body.
	callback := httpx.Chain(http.HandlerFunc(h.HandleCallback),
		httpx.MetricsMiddleware("/auth/google/callback"),
		httpx.RateLimitByIP(httpx.ModerateLimit),
	)
	r.Mux.Handle("GET /auth/google/callback", callback)
	r.Mux.Handle("POST /auth/google/callback", callback)
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{TwoFactorService: r.TwoFactorService}

	// POST /auth/2fa/setup - moderate rate limit by user
	r.Mux.Handle("POST /auth/2fa/setup",
		httpx.Chain(http.HandlerFunc(h.HandleSetup),
			httpx.MetricsMiddleware("/auth/2fa/setup"),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// POST /auth/2fa/verify - strict rate limit by user (brute force of codes)
	r.Mux.Handle("POST /auth/2fa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.MetricsMiddleware("/auth/2fa/verify"),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	// POST /auth/2fa/disable - strict rate limit by user
	r.Mux.Handle("POST /auth/2fa/disable",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			httpx.MetricsMiddleware("/auth/2fa/disable"),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerRoles() {
	h := &RolesHandler{AuthService: r.AuthService}

	// PATCH /auth/users/{id}/role - admin only, moderate rate limit by user
	r.Mux.Handle("PATCH /auth/users/{id}/role",
		httpx.Chain(h,
			httpx.MetricsMiddleware("/auth/users/{id}/role"),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(func(role string) bool {
				parsed, ok := domain.ParseRole(role)
				return ok && parsed.AtLeast(domain.RoleAdmin)
			}),
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
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", httpx.MetricsHandler())
}

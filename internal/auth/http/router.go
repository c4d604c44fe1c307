package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/backoffice/internal/auth/domain"
	"github.com/aussiebroadwan/backoffice/internal/auth/service"
	"github.com/aussiebroadwan/backoffice/internal/auth/store"
	"github.com/aussiebroadwan/backoffice/pkg/httpx"
	"github.com/aussiebroadwan/backoffice/pkg/slogx"

	_ "github.com/aussiebroadwan/backoffice/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     httpx.AccessVerifier
	limits       httpx.RateLimitProfiles
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	SessionService *service.SessionService
	RolesService   *service.RolesService
	AccountService *service.AccountService
}

func NewRouter(
	verifier httpx.AccessVerifier,
	limits httpx.RateLimitProfiles,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		limits:       limits,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTwoFA()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Back Office Authentication Service API
//	@version		0.1.0
//	@description	Username/password authentication with optional TOTP second factor for back-office staff.
//	@description
//	@description				Access and refresh tokens are HS256-signed JWTs. Access tokens carry the caller's role names and are valid for 15 minutes by default.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/backoffice
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

func (r *Router) registerAuth() {
	h := &AuthHandler{Sessions: r.SessionService}

	// Credential submission - strict rate limit by IP
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)

	// Authenticated session endpoints - moderate rate limit by subject
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(r.limits.Moderate),
		),
	)
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(r.limits.Moderate),
		),
	)
}

func (r *Router) registerTwoFA() {
	h := &TwoFAHandler{Sessions: r.SessionService}

	r.Mux.Handle("POST /v1/auth/2fa/enable",
		httpx.Chain(http.HandlerFunc(h.HandleEnable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(r.limits.Moderate),
		),
	)

	// Strict: each request is a guess at a six-digit code
	r.Mux.Handle("POST /v1/auth/2fa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(r.limits.Strict),
		),
	)

	r.Mux.Handle("DELETE /v1/auth/2fa/disable",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(r.limits.Moderate),
		),
	)
}

func (r *Router) registerAdmin() {
	admin := string(domain.RoleAdmin)

	roles := &RolesHandler{RolesService: r.RolesService}
	r.Mux.Handle("GET /v1/roles",
		httpx.Chain(roles,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(admin),
			httpx.RateLimitBySubject(r.limits.Moderate),
		),
	)

	accounts := &AccountsHandler{AccountService: r.AccountService}
	r.Mux.Handle("PUT /v1/accounts/{username}/status",
		httpx.Chain(http.HandlerFunc(accounts.HandleSetStatus),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(admin),
			httpx.RateLimitBySubject(r.limits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
}

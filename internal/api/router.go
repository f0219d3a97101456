package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/joestump/linkhub/docs/swagger"
	"github.com/joestump/linkhub/internal/accounts"
	"github.com/joestump/linkhub/internal/auth"
	"github.com/joestump/linkhub/internal/links"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	Authenticator *auth.Authenticator
	Accounts      *accounts.Service
	Links         *links.Service
	Log           *zap.Logger

	// Ping reports store health for /health_check. Optional.
	Ping func(ctx context.Context) error

	// OIDC login is mounted only when both are set.
	IdentityProvider auth.IdentityProvider
	Sessions         *scs.SessionManager

	CORSOrigins []string
}

// NewRouter assembles the chi router with middleware and all routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health_check", healthCheck(deps.Ping))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/docs/*", httpSwagger.WrapHandler)

	acct := &accountsHandler{accounts: deps.Accounts, log: deps.Log}
	lh := &linksHandler{links: deps.Links, log: deps.Log}

	r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)

		r.Post("/user/register", acct.Register)
		r.Post("/user/login", acct.Login)

		if deps.IdentityProvider != nil && deps.Sessions != nil {
			oidc := auth.NewOIDCHandlers(deps.IdentityProvider, deps.Sessions, acct.ExternalLogin, deps.Log)
			r.Group(func(r chi.Router) {
				r.Use(deps.Sessions.LoadAndSave)
				r.Get("/user/oidc/login", oidc.Login)
				r.Get("/user/oidc/callback", oidc.Callback)
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(deps.Authenticator.RequireAccount)

			r.Get("/user/me", acct.Me)

			r.Get("/links", lh.List)
			r.Post("/links", lh.Create)
			r.Get("/links/{id}", lh.Get)
			r.Put("/links/{id}", lh.Update)
			r.Delete("/links/{id}", lh.Delete)
		})
	})

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

package api

import (
	"fmt"
	"net/http"

	"filippo.io/csrf"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/ideaforge/ideaforge/internal/api/handler"
	"github.com/ideaforge/ideaforge/internal/api/middleware"
	"github.com/ideaforge/ideaforge/internal/idea"
	"github.com/ideaforge/ideaforge/internal/session"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger    handler.DBPinger
	StoreType   string
	Version     string
	Development bool
	OpenAPISpec []byte

	Accounts   handler.Accounts
	Identities middleware.IdentityResolver
	Sessions   *session.Manager
	Lifecycle  *idea.Lifecycle

	// CORSOrigins enables CORS with credentials for the listed origins.
	CORSOrigins []string
	// TrustedOrigins may send cross-origin unsafe requests. CORSOrigins are
	// trusted as well.
	TrustedOrigins []string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) (*chi.Mux, error) {
	protection := csrf.New()
	for _, origin := range append(append([]string{}, deps.TrustedOrigins...), deps.CORSOrigins...) {
		if err := protection.AddTrustedOrigin(origin); err != nil {
			return nil, fmt.Errorf("adding trusted origin %q: %w", origin, err)
		}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Development))
	r.Use(chimiddleware.Logger)
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   deps.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type", middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: true,
		}).Handler)
	}
	r.Use(middleware.CrossOrigin(protection))

	authHandler := handler.NewAuthHandler(deps.Accounts, deps.Sessions)
	ideaHandler := handler.NewIdeaHandler(deps.Lifecycle)
	adminHandler := handler.NewAdminHandler(deps.Lifecycle, deps.Accounts)
	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.StoreType, deps.Version)

	var openapiHandler *handler.OpenAPIHandler
	if len(deps.OpenAPISpec) > 0 {
		h, err := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		if err != nil {
			return nil, err
		}
		openapiHandler = h
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.ServeHTTP)

		if openapiHandler != nil {
			r.Get("/openapi.json", openapiHandler.ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(deps.Sessions, deps.Identities))

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuthenticated())
				r.Post("/logout", authHandler.Logout)
				r.Get("/auth/user", authHandler.CurrentUser)
			})

			r.Route("/ideas", func(r chi.Router) {
				r.Get("/approved", ideaHandler.ListApproved)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAuthenticated())
					r.Post("/", ideaHandler.Create)
					r.Post("/{id}/upvote", ideaHandler.Upvote)
					r.Post("/{id}/downvote", ideaHandler.Downvote)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				r.Get("/ideas", adminHandler.List)
				r.Get("/ideas/{id}", adminHandler.GetByID)
				r.Put("/ideas/{id}", adminHandler.Update)
				r.Put("/ideas/{id}/status", adminHandler.UpdateStatus)
				r.Delete("/ideas/{id}", adminHandler.Delete)
				r.Post("/users", adminHandler.CreateUser)
			})
		})
	})

	return r, nil
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/invoicer/internal/http/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/http/catalog"
	"github.com/MrJamesThe3rd/invoicer/internal/http/client"
	"github.com/MrJamesThe3rd/invoicer/internal/http/draft"
	"github.com/MrJamesThe3rd/invoicer/internal/http/export"
	"github.com/MrJamesThe3rd/invoicer/internal/http/importer"
	"github.com/MrJamesThe3rd/invoicer/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicer/internal/http/settings"
)

// Handlers groups the v1 API handlers mounted by New.
type Handlers struct {
	Auth     *auth.Handler
	Catalog  *catalog.Handler
	Settings *settings.Handler
	Drafts   *draft.Handler
	Invoices *invoice.Handler
	Clients  *client.Handler
	Import   *importer.Handler
	Export   *export.Handler
}

func New(authenticator auth.Authenticator, allowedOrigins []string, v1 Handlers) http.Handler {
	m := newMetrics()
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(m.instrument)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Invoice-Count"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", m.handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", v1.Auth.Routes)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(authenticator))

			r.Route("/catalog", v1.Catalog.Routes)

			r.Route("/settings", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				v1.Settings.Routes(r)
			})

			r.Route("/drafts", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				v1.Drafts.Routes(r)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				v1.Invoices.Routes(r)
			})

			r.Route("/clients", v1.Clients.Routes)
			r.Route("/import", v1.Import.Routes)

			r.Route("/export", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				v1.Export.Routes(r)
			})
		})
	})

	return router
}

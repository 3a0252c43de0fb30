// Package router sets up all HTTP routes and middleware chains for
// LandingPress. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landingpress/internal/handlers"
	"landingpress/internal/middleware"
	"landingpress/internal/storage"
	"landingpress/web"
)

// Deps carries everything the router wires together.
type Deps struct {
	Sessions middleware.SessionLoader
	Admin    *handlers.Admin
	Auth     *handlers.Auth
	Public   *handlers.Public

	// LoginLimiter throttles login attempts per client IP. Optional.
	LoginLimiter *middleware.RateLimiter

	// UploadDir is served under /uploads/ when uploads are kept on disk.
	UploadDir string

	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	static, err := fs.Sub(web.StaticFS, "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}
	if d.UploadDir != "" {
		r.Handle(storage.LocalURLPrefix+"*", http.StripPrefix(storage.LocalURLPrefix, http.FileServer(http.Dir(d.UploadDir))))
	}

	auth, admin := d.Auth, d.Admin

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookies))
		r.Use(middleware.NoStore)

		// Auth pages, accessible without a session.
		r.Get("/login", auth.LoginPage)
		if d.LoginLimiter != nil {
			r.With(d.LoginLimiter.Middleware).Post("/login", auth.LoginSubmit)
		} else {
			r.Post("/login", auth.LoginSubmit)
		}
		r.Post("/logout", auth.Logout)

		// 2FA requires a session but not a completed second factor.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", auth.TwoFASetupPage)
			r.Get("/2fa/verify", auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", auth.TwoFAVerifySubmit)
		})

		// Authenticated + 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", admin.Dashboard)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", admin.ProductsList)
				r.Get("/new", admin.ProductNew)
				r.Post("/", admin.ProductCreate)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", admin.ProductShow)
					r.Get("/edit", admin.ProductEdit)
					r.Post("/", admin.ProductUpdate)
					r.Post("/delete", admin.ProductDelete)

					r.Post("/images/{kind}", admin.ProductImageUpload)
					r.Post("/images/{kind}/delete", admin.ProductImageRemove)

					r.Get("/theme", admin.ThemeEdit)
					r.Post("/theme", admin.ThemeUpdate)
					r.Post("/theme/preset", admin.ThemePreset)
					r.Post("/theme/reset", admin.ThemeReset)
					r.Get("/theme.css", admin.ThemeCSS)

					r.Route("/ingredients", func(r chi.Router) {
						r.Get("/new", admin.IngredientNew)
						r.Post("/", admin.IngredientCreate)
						r.Post("/reorder", admin.IngredientReorder)
						r.Post("/clear", admin.IngredientClear)
						r.Post("/copy", admin.IngredientCopy)
						r.Get("/{itemID}/edit", admin.IngredientEdit)
						r.Post("/{itemID}", admin.IngredientUpdate)
						r.Post("/{itemID}/delete", admin.IngredientDelete)
						r.Post("/{itemID}/image", admin.IngredientImageUpload)
					})

					r.Route("/points", func(r chi.Router) {
						r.Get("/new", admin.PointNew)
						r.Post("/", admin.PointCreate)
						r.Post("/reorder", admin.PointReorder)
						r.Post("/clear", admin.PointClear)
						r.Post("/copy", admin.PointCopy)
						r.Get("/{itemID}/edit", admin.PointEdit)
						r.Post("/{itemID}", admin.PointUpdate)
						r.Post("/{itemID}/delete", admin.PointDelete)
					})
				})
			})
		})
	})

	// Public landing pages.
	pub := d.Public
	r.Get("/", pub.Index)
	r.Get("/p/{slug}", pub.LandingBySlug)
	r.Get("/p/{slug}/buy", pub.Buy)
	r.Get("/p/{slug}/theme.css", pub.ThemeCSS)
	r.Get("/product/{publicID}", pub.LandingByPublicID)
	r.NotFound(pub.NotFound)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

const (
	healthRoute = "/healthz"
	readyRoute  = "/readyz"

	maxBodyBytes = 1 << 20
)

// Pinger is implemented by storage backends that can report readiness.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Services struct {
	Registration  ports.RegistrationService
	Sessions      ports.SessionService
	Accounts      ports.AccountService
	OAuth         ports.OAuthService
	Viewer        ports.ViewerService
	AdminSessions ports.AdminSessionService
	Applications  ports.ApplicationService
}

type Config struct {
	Cookies        CookieConfig
	RequestTimeout time.Duration
	// Pinger backs /readyz. Nil means always ready.
	Pinger Pinger
	// AdminLoginURL builds the upstream authorize URL for an admin login.
	AdminLoginURL func(state string) string
	Now           ports.Clock
}

func NewHandler(cfg Config, svc Services) http.Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cookies := cfg.Cookies.withDefaults()

	registration := NewRegistrationHandler(svc.Registration)
	sessions := NewSessionHandler(svc.Sessions, svc.Accounts, cookies, cfg.Now)
	oauth := NewOAuthHandler(svc.OAuth, svc.Viewer)
	admin := NewAdminHandler(svc.AdminSessions, cookies, cfg.AdminLoginURL, cfg.Now)
	applications := NewApplicationHandler(svc.Applications)
	health := NewHealthHandler(cfg.Pinger)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(CorrelationIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(RecoverMiddleware)
	r.Use(SecurityHeaders(cookies.Secure))
	r.Use(middleware.RequestSize(maxBodyBytes))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get(healthRoute, health.Live)
	r.Get(readyRoute, health.Ready)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Use(loadUser(svc.Sessions, cookies.Name))

		r.Post("/oauth/authorize", oauth.Authorize)
		r.Post("/oauth/token", oauth.Token)
		r.Post("/viewer.get", oauth.Viewer)

		r.Post("/register/request", registration.Request)
		r.Post("/register/confirmation", registration.Confirm)

		r.Post("/session/create", sessions.Create)
		r.Post("/session/get", sessions.Get)
		r.Post("/session/delete", sessions.Delete)
		r.Post("/account/edit", sessions.EditAccount)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/session/login", admin.Login)
		r.Post("/session/create", admin.Create)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin(svc.AdminSessions, cookies.AdminName))

			r.Post("/session/get", admin.Get)
			r.Post("/session/delete", admin.Delete)

			r.Route("/applications", func(r chi.Router) {
				r.Get("/", applications.List)
				r.Post("/", applications.Create)
				r.Get("/{id}", applications.Get)
				r.Patch("/{id}", applications.Edit)
				r.Post("/{id}/regenerate-secret", applications.RegenerateSecret)
			})
		})
	})

	return r
}

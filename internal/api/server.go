package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greyfable/masterlist/internal/access"
	"github.com/greyfable/masterlist/internal/config"
)

// Server is the HTTP server for the dashboard API
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	cfg        *config.Config
	logger     *slog.Logger
}

// NewServer builds the router around a Handlers set
func NewServer(cfg *config.Config, h *Handlers, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
	}
	s.setupRoutes(h)
	return s
}

func (s *Server) setupRoutes(h *Handlers) {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(chimw.Recoverer)
	s.router.Use(h.metrics.HTTPMiddleware)

	s.router.Get("/health", h.Health)
	s.router.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{}))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(h.Session)

		// Public: login must work while logged out; logout is harmless.
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)

		// Any authenticated role.
		r.Group(func(r chi.Router) {
			r.Use(h.Guard(access.RoleAny))

			r.Get("/auth/me", h.Me)
			r.Post("/auth/password", h.ChangePassword)

			r.Get("/characters", h.CharacterList)
			r.Post("/characters", h.CharacterCreate)
			r.Get("/characters/number/{number}", h.CharacterGetByNumber)
			r.Get("/characters/{id}", h.CharacterGet)
			r.Put("/characters/{id}", h.CharacterUpdate)
			r.Delete("/characters/{id}", h.CharacterDelete)

			r.Get("/activity", h.ActivityList)
			r.Get("/activity/stream", h.ActivityStream)
		})

		// Administrator only.
		r.Group(func(r chi.Router) {
			r.Use(h.Guard(access.RoleAdministrator))

			r.Get("/users", h.UserList)
			r.Post("/users", h.UserCreate)
			r.Put("/users/{id}", h.UserUpdate)

			r.Get("/settings/restrictions", h.RestrictionFlagsGet)
			r.Put("/settings/restrictions", h.RestrictionFlagsUpdate)
		})
	})
}

// Router exposes the handler tree, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:        s.cfg.Server.ListenAddr,
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: /api/v1/activity/stream holds its response open.
		IdleTimeout: 60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.cfg.Server.ListenAddr)
	if s.cfg.Server.TLS.Enabled {
		return s.httpServer.ListenAndServeTLS(s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"bytes", ww.BytesWritten(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/viberx/viberx/internal/auth"
	"github.com/viberx/viberx/internal/config"
	"github.com/viberx/viberx/internal/db"
	"github.com/viberx/viberx/internal/log"
	"github.com/viberx/viberx/internal/spotify"
	"github.com/viberx/viberx/internal/store"
)

// SpotifyClient is what the handlers need from the Spotify client.
type SpotifyClient interface {
	AuthURL(state, codeChallenge string) string
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*spotify.TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*spotify.TokenSet, error)
	CurrentProfile(ctx context.Context, accessToken string) (*spotify.UserProfile, error)
	Fetch(ctx context.Context, sess spotify.SessionStore, method, endpoint string, body []byte) (*http.Response, error)
	Playlists(ctx context.Context, sess spotify.SessionStore, limit, offset int) (*http.Response, error)
}

type Server struct {
	cfg     *config.Config
	db      *db.DB
	router  *chi.Mux
	users   *store.Users
	spotify SpotifyClient

	// HTTP servers for graceful shutdown
	httpServer   *http.Server
	httpsServer  *http.Server
	httpRedirect *http.Server
}

// New creates the server. The Spotify client and user store are constructed
// once here and shared across requests; per-session state lives in cookies.
func New(cfg *config.Config, database *db.DB) *Server {
	s := &Server{
		cfg:    cfg,
		db:     database,
		router: chi.NewRouter(),
		users:  store.NewUsers(database),
		spotify: spotify.New(spotify.Config{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			RedirectURI:  cfg.SpotifyRedirectURI,
		}),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(log.RequestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.routeGuard)

	s.router.Get("/health", s.handleHealth)

	// Auth routes
	s.router.Route("/api/auth", func(r chi.Router) {
		r.Get("/login", s.handleLogin)
		r.Get("/callback", s.handleCallback)
		r.Post("/logout", s.handleLogout)
		r.Post("/refresh", s.handleRefresh)
	})

	// Data routes (session-checked in the handlers, not the guard)
	s.router.Get("/api/me", s.handleMe)
	s.router.Get("/api/playlists", s.handlePlaylists)

	// Pages
	s.router.Get("/", s.handleHome)
	s.router.Get("/login", s.handleLoginPage)
	s.router.Get("/dashboard", s.handleDashboard)
}

// Router returns the chi router, used by tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// cookies binds the session cookie store to one request.
func (s *Server) cookies(w http.ResponseWriter, r *http.Request) *auth.Cookies {
	return auth.NewCookies(w, r, s.cfg.IsProduction())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops any running servers.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, srv := range []*http.Server{s.httpServer, s.httpsServer, s.httpRedirect} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

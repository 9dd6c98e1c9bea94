// internal/server/guard.go
package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/viberx/viberx/internal/auth"
)

// Route classification for the guard. Prefix matching, checked in order:
// bypass, protected, auth-only.
var (
	// bypassPrefixes are always reachable: the auth API must be open to
	// finish a login, /api handlers do their own session checks, and
	// static assets and health need no auth at all.
	bypassPrefixes = []string{"/health", "/api/auth", "/api", "/admin", "/static"}

	// protectedPrefixes require auth cookies.
	protectedPrefixes = []string{"/dashboard"}

	// authPrefixes are login-flow pages; authenticated users are bounced
	// to the dashboard instead.
	authPrefixes = []string{"/login"}
)

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// routeGuard classifies every inbound request before any handler runs.
// It only checks cookie presence — access OR refresh token counts as
// authenticated, since a page handler can refresh an expired access token
// on demand. No token validation happens here.
func (s *Server) routeGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" || hasAnyPrefix(path, bypassPrefixes) {
			next.ServeHTTP(w, r)
			return
		}

		authenticated := auth.HasAuthCookies(r)

		if hasAnyPrefix(path, protectedPrefixes) && !authenticated {
			http.Redirect(w, r, "/login?callbackUrl="+url.QueryEscape(path), http.StatusFound)
			return
		}

		if hasAnyPrefix(path, authPrefixes) && authenticated {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}

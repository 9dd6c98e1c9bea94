// internal/server/auth_handlers.go
package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/viberx/viberx/internal/auth"
	"github.com/viberx/viberx/internal/log"
	"github.com/viberx/viberx/internal/spotify"
)

// handleLogin initiates the authorization-code-with-PKCE flow.
// GET /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	pkce, err := auth.GeneratePKCE()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to generate PKCE pair")
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to generate state")
		return
	}

	// The verifier and state are consumed in the callback
	s.cookies(w, r).SetOAuth(state, pkce.CodeVerifier)

	http.Redirect(w, r, s.spotify.AuthURL(state, pkce.CodeChallenge), http.StatusFound)
}

// redirectLoginError sends the browser back to the login page with a
// machine-readable error code. No failure in the callback ever escapes as
// anything other than this redirect.
func (s *Server) redirectLoginError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(code), http.StatusFound)
}

// handleCallback finishes the OAuth flow after Spotify redirects back.
// GET /api/auth/callback?code=...&state=...
//
// The pipeline runs strictly in order; each step gates the next.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")
	state := q.Get("state")
	errParam := q.Get("error")

	// Provider error (e.g. the user clicked cancel): surface verbatim,
	// skip everything else
	if errParam != "" {
		s.redirectLoginError(w, r, errParam)
		return
	}

	if code == "" || state == "" {
		log.Warn("oauth callback missing parameters")
		s.redirectLoginError(w, r, "missing_params")
		return
	}

	// Consume the attempt cookies; one attempt is one-time use
	cookies := s.cookies(w, r)
	storedState, codeVerifier, ok := cookies.ConsumeOAuth()
	if !ok {
		log.Warn("oauth attempt cookies missing or expired")
		s.redirectLoginError(w, r, "session_expired")
		return
	}

	// CSRF check: the callback must carry the state this server issued
	if state != storedState {
		log.Warn("oauth state mismatch")
		s.redirectLoginError(w, r, "state_mismatch")
		return
	}

	tokens, err := s.spotify.ExchangeCode(r.Context(), code, codeVerifier)
	if err != nil {
		log.Error("token exchange failed", "error", err.Error())
		s.redirectLoginError(w, r, "token_exchange_failed")
		return
	}

	profile, err := s.spotify.CurrentProfile(r.Context(), tokens.AccessToken)
	if err != nil {
		log.Error("profile fetch failed", "error", err.Error())
		s.redirectLoginError(w, r, "profile_fetch_failed")
		return
	}

	if err := s.users.Upsert(profile.ID, profile.DisplayName, profile.ProfileImage()); err != nil {
		log.Error("user upsert failed", "error", err.Error(), "user_id", profile.ID)
		s.redirectLoginError(w, r, "database_error")
		return
	}

	sessionUser := auth.SessionUser{
		ID:           profile.ID,
		DisplayName:  profile.DisplayName,
		ProfileImage: profile.ProfileImage(),
	}

	// Spotify always returns a refresh token on the initial authorization;
	// TokenSet defaults it to empty defensively
	if err := cookies.SetSession(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresIn, sessionUser); err != nil {
		log.Error("failed to write session cookies", "error", err.Error())
		s.redirectLoginError(w, r, "session_error")
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// handleLogout clears the session cookies. Returns JSON rather than a
// redirect so the client controls post-logout behavior.
// POST /api/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.cookies(w, r).Clear()
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleRefresh exchanges the stored refresh token for a new access token.
// POST /api/auth/refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	cookies := s.cookies(w, r)

	tokens, err := s.spotify.Refresh(r.Context(), cookies.RefreshToken())
	if err != nil {
		switch {
		case errors.Is(err, spotify.ErrNoRefreshToken):
			s.writeError(w, http.StatusUnauthorized, "No refresh token found")
		case errors.Is(err, spotify.ErrRefreshRejected):
			s.writeError(w, http.StatusUnauthorized, "Token refresh failed")
		default:
			s.writeError(w, http.StatusInternalServerError, "Token refresh failed")
		}
		return
	}

	// Refresh token cookie is rewritten only when Spotify rotated it
	cookies.UpdateTokens(tokens.AccessToken, tokens.ExpiresIn, tokens.RefreshToken)

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

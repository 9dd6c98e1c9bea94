// internal/server/api_handlers.go
package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/viberx/viberx/internal/log"
	"github.com/viberx/viberx/internal/spotify"
	"github.com/viberx/viberx/internal/store"
)

// handleMe returns the stored user record and preferences for the current
// session.
// GET /api/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := s.cookies(w, r).Session()
	if sess == nil {
		s.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := s.users.Get(sess.User.ID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Error("failed to load user", "error", err.Error(), "user_id", sess.User.ID)
		s.writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	prefs, err := s.users.GetPreferences(user.ID)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		log.Error("failed to load preferences", "error", err.Error(), "user_id", user.ID)
		s.writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"user":        user,
		"preferences": prefs,
	})
}

// handlePlaylists proxies one page of the user's playlists from Spotify,
// exercising the session-aware fetch wrapper.
// GET /api/playlists?limit=&offset=
func (s *Server) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 50 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	resp, err := s.spotify.Playlists(r.Context(), s.cookies(w, r), limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, spotify.ErrNoActiveSession), errors.Is(err, spotify.ErrRefreshFailed):
			s.writeError(w, http.StatusUnauthorized, "not authenticated")
		default:
			log.Error("playlists request failed", "error", err.Error())
			s.writeError(w, http.StatusBadGateway, "upstream request failed")
		}
		return
	}
	defer resp.Body.Close()

	// Pass the provider response through unchanged
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

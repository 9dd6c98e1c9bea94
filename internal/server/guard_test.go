package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viberx/viberx/internal/auth"
)

func TestGuardRedirectsAnonymousFromDashboard(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := do(srv, httptest.NewRequest("GET", "/dashboard", nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fdashboard", w.Header().Get("Location"))
}

func TestGuardAcceptsRefreshTokenOnly(t *testing.T) {
	srv, _ := setupTestServer(t)

	// Access token expired and gone, refresh token still valid: the page
	// loads and refreshes on demand instead of bouncing to login
	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieRefreshToken, Value: "refresh-1"})
	w := do(srv, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuardBouncesAuthenticatedFromLogin(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/login", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieAccessToken, Value: "access-1"})
	w := do(srv, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestGuardBypasses(t *testing.T) {
	srv, _ := setupTestServer(t)

	// Health and the root page are always reachable
	assert.Equal(t, http.StatusOK, do(srv, httptest.NewRequest("GET", "/health", nil)).Code)
	assert.Equal(t, http.StatusOK, do(srv, httptest.NewRequest("GET", "/", nil)).Code)

	// API routes are never redirected; they answer 401 themselves
	w := do(srv, httptest.NewRequest("GET", "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The auth flow must stay open to unauthenticated users
	w = do(srv, httptest.NewRequest("GET", "/api/auth/login", nil))
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLoginPageShowsErrorMessage(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := do(srv, httptest.NewRequest("GET", "/login?error=state_mismatch", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), errorMessages["state_mismatch"])

	// Unmapped codes fall back to the generic message
	w = do(srv, httptest.NewRequest("GET", "/login?error=some_unknown_code", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fallbackErrorMessage)

	// No error, no message
	w = do(srv, httptest.NewRequest("GET", "/login", nil))
	assert.NotContains(t, w.Body.String(), fallbackErrorMessage)
	assert.Contains(t, w.Body.String(), "Continue with Spotify")
}

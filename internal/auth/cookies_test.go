package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRequestWithCookies builds a request carrying the given cookies, the way
// a browser would replay Set-Cookie values on the next request.
func newRequestWithCookies(cookies map[string]string) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	for name, value := range cookies {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return r
}

// replay extracts the cookies a recorder would have set and returns them as
// the next request's cookie map.
func replay(t *testing.T, w *httptest.ResponseRecorder, prior map[string]string) map[string]string {
	t.Helper()
	next := make(map[string]string, len(prior))
	for k, v := range prior {
		next[k] = v
	}
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(next, c.Name)
		} else {
			next[c.Name] = c.Value
		}
	}
	return next
}

func TestOAuthCookieRoundTrip(t *testing.T) {
	// First request: set the attempt cookies
	w1 := httptest.NewRecorder()
	c1 := NewCookies(w1, httptest.NewRequest("GET", "/", nil), false)
	c1.SetOAuth("state-abc", "verifier-xyz")

	jar := replay(t, w1, nil)
	assert.Equal(t, "state-abc", jar[CookieOAuthState])
	assert.Equal(t, "verifier-xyz", jar[CookieCodeVerifier])

	// Second request: consume them
	w2 := httptest.NewRecorder()
	c2 := NewCookies(w2, newRequestWithCookies(jar), false)

	state, verifier, ok := c2.ConsumeOAuth()
	require.True(t, ok)
	assert.Equal(t, "state-abc", state)
	assert.Equal(t, "verifier-xyz", verifier)

	// A second consume within the same request returns nothing
	_, _, ok = c2.ConsumeOAuth()
	assert.False(t, ok)

	// And the browser jar no longer holds them
	jar = replay(t, w2, jar)
	assert.Empty(t, jar[CookieOAuthState])
	assert.Empty(t, jar[CookieCodeVerifier])
}

func TestConsumeOAuthMissingCookie(t *testing.T) {
	w := httptest.NewRecorder()
	c := NewCookies(w, newRequestWithCookies(map[string]string{
		CookieOAuthState: "state-only",
	}), false)

	_, _, ok := c.ConsumeOAuth()
	assert.False(t, ok)

	// Both cookies are still cleared
	jar := replay(t, w, map[string]string{CookieOAuthState: "state-only"})
	assert.Empty(t, jar[CookieOAuthState])
}

func TestSetSessionAndRead(t *testing.T) {
	w := httptest.NewRecorder()
	c := NewCookies(w, httptest.NewRequest("GET", "/", nil), false)

	user := SessionUser{ID: "spotify-user-1", DisplayName: "DJ Test", ProfileImage: "https://img.example/p.jpg"}
	require.NoError(t, c.SetSession("access-1", "refresh-1", 3600, user))

	// Visible within the same request
	sess := c.Session()
	require.NotNil(t, sess)
	assert.Equal(t, "access-1", sess.AccessToken)
	assert.Equal(t, user, sess.User)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)
	assert.False(t, c.TokenExpired())

	// Visible on the next request
	jar := replay(t, w, nil)
	c2 := NewCookies(httptest.NewRecorder(), newRequestWithCookies(jar), false)
	sess2 := c2.Session()
	require.NotNil(t, sess2)
	assert.Equal(t, user, sess2.User)
	assert.Equal(t, "refresh-1", c2.RefreshToken())
}

func TestSessionCookieAttributes(t *testing.T) {
	w := httptest.NewRecorder()
	c := NewCookies(w, httptest.NewRequest("GET", "/", nil), true)
	require.NoError(t, c.SetSession("a", "r", 3600, SessionUser{ID: "u"}))

	byName := map[string]*http.Cookie{}
	for _, cookie := range w.Result().Cookies() {
		byName[cookie.Name] = cookie
	}

	for _, name := range []string{CookieAccessToken, CookieRefreshToken, CookieTokenExpiresAt, CookieUser} {
		cookie, ok := byName[name]
		require.True(t, ok, "cookie %s not set", name)
		assert.True(t, cookie.HttpOnly, "%s must be httpOnly", name)
		assert.True(t, cookie.Secure, "%s must be Secure", name)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite, name)
		assert.Equal(t, "/", cookie.Path, name)
	}

	assert.Equal(t, 3600, byName[CookieAccessToken].MaxAge)
	assert.Equal(t, 3600, byName[CookieTokenExpiresAt].MaxAge)
	assert.Equal(t, refreshTokenMaxAge, byName[CookieRefreshToken].MaxAge)
	assert.Equal(t, refreshTokenMaxAge, byName[CookieUser].MaxAge)
}

func TestSessionAbsentWithOnlyRefreshToken(t *testing.T) {
	// Expired-but-refreshable: refresh token present, no access token.
	c := NewCookies(httptest.NewRecorder(), newRequestWithCookies(map[string]string{
		CookieRefreshToken: "refresh-1",
		CookieUser:         url.QueryEscape(`{"id":"u"}`),
	}), false)

	assert.Nil(t, c.Session())
	assert.Equal(t, "refresh-1", c.RefreshToken())
}

func TestSessionCorruptedUserCookie(t *testing.T) {
	c := NewCookies(httptest.NewRecorder(), newRequestWithCookies(map[string]string{
		CookieAccessToken: "access-1",
		CookieUser:        "{not json",
	}), false)

	assert.Nil(t, c.Session())
}

func TestUpdateTokensRotation(t *testing.T) {
	// Rotated refresh token replaces the old one
	w := httptest.NewRecorder()
	c := NewCookies(w, newRequestWithCookies(map[string]string{
		CookieRefreshToken: "old-refresh",
	}), false)

	c.UpdateTokens("new-access", 3600, "new-refresh")
	assert.Equal(t, "new-refresh", c.RefreshToken())

	jar := replay(t, w, map[string]string{CookieRefreshToken: "old-refresh"})
	assert.Equal(t, "new-refresh", jar[CookieRefreshToken])
	assert.Equal(t, "new-access", jar[CookieAccessToken])
}

func TestUpdateTokensNoRotation(t *testing.T) {
	w := httptest.NewRecorder()
	c := NewCookies(w, newRequestWithCookies(map[string]string{
		CookieRefreshToken: "old-refresh",
	}), false)

	c.UpdateTokens("new-access", 3600, "")
	assert.Equal(t, "old-refresh", c.RefreshToken())

	jar := replay(t, w, map[string]string{CookieRefreshToken: "old-refresh"})
	assert.Equal(t, "old-refresh", jar[CookieRefreshToken])
}

func TestTokenExpiredWindow(t *testing.T) {
	mk := func(expiresAt time.Time) *Cookies {
		return NewCookies(httptest.NewRecorder(), newRequestWithCookies(map[string]string{
			CookieTokenExpiresAt: strconv.FormatInt(expiresAt.UnixMilli(), 10),
		}), false)
	}

	// 4 minutes out: inside the 5-minute window, counts as expired
	assert.True(t, mk(time.Now().Add(4*time.Minute)).TokenExpired())

	// 10 minutes out: fresh
	assert.False(t, mk(time.Now().Add(10*time.Minute)).TokenExpired())

	// Missing cookie counts as expired
	c := NewCookies(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil), false)
	assert.True(t, c.TokenExpired())
}

func TestClear(t *testing.T) {
	jar := map[string]string{
		CookieAccessToken:    "a",
		CookieRefreshToken:   "r",
		CookieTokenExpiresAt: "123",
		CookieUser:           url.QueryEscape(`{"id":"u"}`),
	}
	w := httptest.NewRecorder()
	c := NewCookies(w, newRequestWithCookies(jar), false)

	c.Clear()
	assert.Nil(t, c.Session())
	assert.Empty(t, c.RefreshToken())

	next := replay(t, w, jar)
	assert.Empty(t, next)
}

func TestHasAuthCookies(t *testing.T) {
	assert.False(t, HasAuthCookies(httptest.NewRequest("GET", "/", nil)))

	onlyRefresh := newRequestWithCookies(map[string]string{CookieRefreshToken: "r"})
	assert.True(t, HasAuthCookies(onlyRefresh))

	onlyAccess := newRequestWithCookies(map[string]string{CookieAccessToken: "a"})
	assert.True(t, HasAuthCookies(onlyAccess))
}

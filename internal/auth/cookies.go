package auth

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Cookie names. All cookies are httpOnly, SameSite=Lax, path=/ and Secure
// in production.
const (
	CookieAccessToken    = "viberx_access_token"
	CookieRefreshToken   = "viberx_refresh_token"
	CookieTokenExpiresAt = "viberx_token_expires_at"
	CookieUser           = "viberx_user"
	CookieOAuthState     = "viberx_oauth_state"
	CookieCodeVerifier   = "viberx_code_verifier"
)

const (
	// refreshTokenMaxAge is 30 days; refresh tokens are long-lived.
	refreshTokenMaxAge = 30 * 24 * 60 * 60

	// oauthCookieMaxAge bounds one OAuth attempt to 10 minutes.
	oauthCookieMaxAge = 600

	// expiryWindow is how close to expiry a token counts as expired,
	// so callers refresh before issuing a request.
	expiryWindow = 5 * time.Minute
)

// Cookies reads and writes the session cookie set for one request.
// Writes are layered over the inbound request's cookies so a value set
// during the request (e.g. a refreshed access token) is visible to later
// reads in the same request.
type Cookies struct {
	w       http.ResponseWriter
	r       *http.Request
	secure  bool
	set     map[string]string
	deleted map[string]bool
}

// NewCookies binds a cookie store to one request/response pair.
func NewCookies(w http.ResponseWriter, r *http.Request, secure bool) *Cookies {
	return &Cookies{
		w:       w,
		r:       r,
		secure:  secure,
		set:     make(map[string]string),
		deleted: make(map[string]bool),
	}
}

func (c *Cookies) write(name, value string, maxAge int) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.set[name] = value
	delete(c.deleted, name)
}

func (c *Cookies) remove(name string) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	delete(c.set, name)
	c.deleted[name] = true
}

func (c *Cookies) get(name string) string {
	if c.deleted[name] {
		return ""
	}
	if v, ok := c.set[name]; ok {
		return v
	}
	cookie, err := c.r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetOAuth stores the CSRF state and PKCE verifier for the attempt just
// started. Both cookies expire after 10 minutes.
func (c *Cookies) SetOAuth(state, codeVerifier string) {
	c.write(CookieOAuthState, state, oauthCookieMaxAge)
	c.write(CookieCodeVerifier, codeVerifier, oauthCookieMaxAge)
}

// ConsumeOAuth reads and deletes the OAuth attempt cookies. The deletion is
// unconditional — one attempt is one-time use. ok is false when either
// cookie is missing or expired.
func (c *Cookies) ConsumeOAuth() (state, codeVerifier string, ok bool) {
	state = c.get(CookieOAuthState)
	codeVerifier = c.get(CookieCodeVerifier)

	c.remove(CookieOAuthState)
	c.remove(CookieCodeVerifier)

	if state == "" || codeVerifier == "" {
		return "", "", false
	}
	return state, codeVerifier, true
}

// SetSession writes all four session cookies after a successful login.
// The access token and expiry cookies live exactly expiresIn seconds; the
// refresh token and user cookies live 30 days.
func (c *Cookies) SetSession(accessToken, refreshToken string, expiresIn int, user SessionUser) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(time.Duration(expiresIn) * time.Second)

	c.write(CookieAccessToken, accessToken, expiresIn)
	c.write(CookieRefreshToken, refreshToken, refreshTokenMaxAge)
	c.write(CookieTokenExpiresAt, strconv.FormatInt(expiresAt.UnixMilli(), 10), expiresIn)
	// URL-encoded: raw JSON contains bytes that are invalid in cookie values
	c.write(CookieUser, url.QueryEscape(string(userJSON)), refreshTokenMaxAge)
	return nil
}

// UpdateTokens rewrites the access token and expiry cookies after a refresh.
// The refresh token cookie is rewritten only when the provider rotated it.
func (c *Cookies) UpdateTokens(accessToken string, expiresIn int, rotatedRefreshToken string) {
	expiresAt := time.Now().Add(time.Duration(expiresIn) * time.Second)

	c.write(CookieAccessToken, accessToken, expiresIn)
	c.write(CookieTokenExpiresAt, strconv.FormatInt(expiresAt.UnixMilli(), 10), expiresIn)

	if rotatedRefreshToken != "" {
		c.write(CookieRefreshToken, rotatedRefreshToken, refreshTokenMaxAge)
	}
}

// Clear deletes the four session cookies (logout).
func (c *Cookies) Clear() {
	c.remove(CookieAccessToken)
	c.remove(CookieRefreshToken)
	c.remove(CookieTokenExpiresAt)
	c.remove(CookieUser)
}

// Session assembles the current session from cookies. Returns nil when the
// access token or user cookie is absent, or the user cookie is corrupted.
// It never refreshes — callers check TokenExpired and refresh themselves.
func (c *Cookies) Session() *Session {
	accessToken := c.get(CookieAccessToken)
	userJSON, err := url.QueryUnescape(c.get(CookieUser))
	if err != nil || accessToken == "" || userJSON == "" {
		return nil
	}

	var user SessionUser
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil
	}

	expiresAt := time.Now()
	if ms, err := strconv.ParseInt(c.get(CookieTokenExpiresAt), 10, 64); err == nil {
		expiresAt = time.UnixMilli(ms)
	}

	return &Session{
		User:        user,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}
}

// TokenExpired reports whether the stored access token is expired or expires
// within the next 5 minutes. A missing expiry cookie counts as expired.
func (c *Cookies) TokenExpired() bool {
	ms, err := strconv.ParseInt(c.get(CookieTokenExpiresAt), 10, 64)
	if err != nil {
		return true
	}
	return time.Now().After(time.UnixMilli(ms).Add(-expiryWindow))
}

// RefreshToken returns the stored refresh token, or "" if absent.
func (c *Cookies) RefreshToken() string {
	return c.get(CookieRefreshToken)
}

// HasAuthCookies reports whether the request carries an access or refresh
// token cookie. Presence alone counts as authenticated for routing: the
// access token expires after an hour but the refresh token lasts 30 days,
// and a page handler will refresh on demand. No token validation happens
// here.
func HasAuthCookies(r *http.Request) bool {
	if c, err := r.Cookie(CookieAccessToken); err == nil && c.Value != "" {
		return true
	}
	if c, err := r.Cookie(CookieRefreshToken); err == nil && c.Value != "" {
		return true
	}
	return false
}

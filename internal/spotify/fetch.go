package spotify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/viberx/viberx/internal/auth"
)

// SessionStore is the cookie-backed session state the fetch wrapper needs.
// *auth.Cookies satisfies it.
type SessionStore interface {
	Session() *auth.Session
	TokenExpired() bool
	RefreshToken() string
	UpdateTokens(accessToken string, expiresIn int, rotatedRefreshToken string)
}

// refreshSession refreshes the access token and writes the result back to
// the session store. Returns the new access token.
func (c *Client) refreshSession(ctx context.Context, sess SessionStore) (string, error) {
	ts, err := c.Refresh(ctx, sess.RefreshToken())
	if err != nil {
		return "", err
	}
	sess.UpdateTokens(ts.AccessToken, ts.ExpiresIn, ts.RefreshToken)
	return ts.AccessToken, nil
}

// Fetch issues an authenticated Web API request, handling the token
// lifecycle:
//
//  1. If no session exists, try a refresh; if that fails or the session is
//     still absent afterwards, fail with ErrNoActiveSession.
//  2. If the token expires within 5 minutes, refresh proactively; on
//     failure the request is attempted with the soon-to-expire token.
//  3. On a 401 response, refresh and retry exactly once; a failed refresh
//     fails with ErrRefreshFailed.
//
// endpoint is a path under the API base ("/me/playlists") or an absolute
// URL for pre-built pagination links. The final response is returned as-is;
// status codes other than 401 are the caller's to interpret.
func (c *Client) Fetch(ctx context.Context, sess SessionStore, method, endpoint string, body []byte) (*http.Response, error) {
	session := sess.Session()
	if session == nil {
		if _, err := c.refreshSession(ctx, sess); err != nil {
			return nil, ErrNoActiveSession
		}
		session = sess.Session()
		if session == nil {
			// refresh succeeded but the cookie state is corrupted
			return nil, ErrNoActiveSession
		}
	}

	accessToken := session.AccessToken
	if sess.TokenExpired() {
		if tok, err := c.refreshSession(ctx, sess); err == nil {
			accessToken = tok
		}
	}

	resp, err := c.do(ctx, method, endpoint, accessToken, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		tok, err := c.refreshSession(ctx, sess)
		if err != nil {
			return nil, ErrRefreshFailed
		}
		return c.do(ctx, method, endpoint, tok, body)
	}

	return resp, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, accessToken string, body []byte) (*http.Response, error) {
	url := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		url = c.apiBase + endpoint
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	return c.http.Do(req)
}

// Playlists fetches one page of the current user's playlists. Spotify caps
// limit at 50.
func (c *Client) Playlists(ctx context.Context, sess SessionStore, limit, offset int) (*http.Response, error) {
	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)
	return c.Fetch(ctx, sess, http.MethodGet, endpoint, nil)
}

// Me fetches the current user's profile through the session-aware wrapper.
func (c *Client) Me(ctx context.Context, sess SessionStore) (*http.Response, error) {
	return c.Fetch(ctx, sess, http.MethodGet, "/me", nil)
}

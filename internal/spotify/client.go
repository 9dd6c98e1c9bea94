// Package spotify implements the OAuth client for Spotify: authorization
// URL construction, the PKCE code exchange, token refresh, and an
// authenticated fetch wrapper for Web API calls.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	spotifyoauth "golang.org/x/oauth2/spotify"

	"github.com/viberx/viberx/internal/log"
)

const defaultAPIBase = "https://api.spotify.com/v1"

// Scopes is the fixed, minimal scope set needed for playlist read/write.
// No profile or email scopes: email, country and product were dropped from
// the /me response in Spotify's February 2026 API changes.
var Scopes = []string{
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-public",
	"playlist-modify-private",
}

// Config holds the Spotify application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Client talks to Spotify's accounts service and Web API. Construct once at
// process start and share across requests; it holds no per-session state.
type Client struct {
	oauth   *oauth2.Config
	http    *http.Client
	apiBase string
}

// New creates a Spotify client.
func New(cfg Config) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint:     spotifyoauth.Endpoint,
		},
		http:    http.DefaultClient,
		apiBase: defaultAPIBase,
	}
}

// AuthURL builds the authorization URL with the PKCE challenge and CSRF
// state. This step cannot fail locally.
func (c *Client) AuthURL(state, codeChallenge string) string {
	return c.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
	)
}

// TokenSet holds the tokens returned by the accounts service. ExpiresIn is
// in seconds, counted from the moment the response was received.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// ExchangeCode exchanges an authorization code plus the PKCE verifier for
// tokens. Spotify always returns a refresh token on the initial
// authorization, but TokenSet.RefreshToken may defensively be empty.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenSet, error) {
	tok, err := c.oauth.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("spotify token exchange failed: %w", err)
	}

	expiresIn := 3600
	if !tok.Expiry.IsZero() {
		if secs := int(time.Until(tok.Expiry).Round(time.Second).Seconds()); secs > 0 {
			expiresIn = secs
		}
	}

	return &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// tokenResponse is the accounts service token payload, returned on both
// the initial authorization and refresh.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Refresh exchanges the stored refresh token for a new access token.
// RefreshToken in the result is non-empty only when Spotify rotated it;
// rotation is optional per response, not guaranteed.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.oauth.ClientID)
	form.Set("client_secret", c.oauth.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", c.oauth.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("token refresh request failed", "error", err.Error())
		return nil, ErrRefreshRejected
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		log.Error("token refresh rejected", "status", resp.StatusCode, "body", string(body))
		return nil, ErrRefreshRejected
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		log.Error("token refresh returned empty access token")
		return nil, ErrRefreshRejected
	}

	expiresIn := tr.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	return &TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// Image is an image descriptor in Spotify API responses.
type Image struct {
	URL    string `json:"url"`
	Height *int   `json:"height"`
	Width  *int   `json:"width"`
}

// UserProfile is the /me response.
type UserProfile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Images      []Image `json:"images"`
}

// ProfileImage returns the first profile image URL, or "".
func (p *UserProfile) ProfileImage() string {
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// CurrentProfile fetches the user profile for a bearer token. Used by the
// callback handler before any session exists.
func (c *Client) CurrentProfile(ctx context.Context, accessToken string) (*UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.apiBase+"/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("spotify profile returned %d: %s", resp.StatusCode, body)
	}

	var profile UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
)

// Config holds all server configuration. Values come from environment
// variables; cmd/serve.go layers CLI flag overrides on top.
type Config struct {
	Environment string `env:"VIBERX_ENV" envDefault:"development"`
	ListenAddr  string `env:"VIBERX_ADDR" envDefault:"0.0.0.0:8080"`
	BaseURL     string `env:"VIBERX_BASE_URL"`

	DatabasePath string `env:"VIBERX_DB" envDefault:"viberx.db"`

	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyRedirectURI  string `env:"SPOTIFY_REDIRECT_URI"`

	LogMode   string `env:"VIBERX_LOG_MODE" envDefault:"console"`
	LogLevel  string `env:"VIBERX_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"VIBERX_LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"VIBERX_LOG_FILE" envDefault:"viberx.log"`

	HTTPSDomain string `env:"VIBERX_HTTPS_DOMAIN"`
	CertDir     string `env:"VIBERX_CERT_DIR" envDefault:".certs"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that everything required to run the OAuth flow is present.
func (c *Config) Validate() error {
	if c.SpotifyClientID == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID is required")
	}
	if c.SpotifyClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_SECRET is required")
	}
	if c.SpotifyRedirectURI == "" {
		return fmt.Errorf("SPOTIFY_REDIRECT_URI is required")
	}
	if _, err := url.ParseRequestURI(c.SpotifyRedirectURI); err != nil {
		return fmt.Errorf("SPOTIFY_REDIRECT_URI must be a valid URL: %w", err)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
// Session cookies are marked Secure only in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

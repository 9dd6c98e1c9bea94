// Package auth implements the Spotify OAuth session core: PKCE generation
// and the httpOnly cookie set that encodes a session.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// randomAlphabet is the URL-safe character set used for PKCE verifiers and
// CSRF state values (RFC 7636 unreserved characters).
const randomAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// verifierLength is the PKCE code verifier length (RFC 7636 maximum).
const verifierLength = 128

// stateLength is the CSRF state parameter length.
const stateLength = 32

// GenerateRandomString returns a cryptographically random URL-safe string of
// the given length. Each random byte is mapped modulo the alphabet size; the
// resulting slight bias is acceptable for the entropy needed at these lengths.
func GenerateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, v := range b {
		out[i] = randomAlphabet[int(v)%len(randomAlphabet)]
	}
	return string(out), nil
}

// GenerateCodeChallenge computes the S256 code challenge from a verifier:
// the SHA-256 hash of the verifier, base64url-encoded without padding.
func GenerateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// PKCE holds a verifier and its derived challenge for one login attempt.
// The verifier never leaves the server until the token exchange.
type PKCE struct {
	CodeVerifier  string
	CodeChallenge string
}

// GeneratePKCE generates a 128-character code verifier and its challenge.
func GeneratePKCE() (*PKCE, error) {
	verifier, err := GenerateRandomString(verifierLength)
	if err != nil {
		return nil, err
	}
	return &PKCE{
		CodeVerifier:  verifier,
		CodeChallenge: GenerateCodeChallenge(verifier),
	}, nil
}

// GenerateState generates a random state parameter for CSRF protection.
func GenerateState() (string, error) {
	return GenerateRandomString(stateLength)
}

package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(128)
	require.NoError(t, err)
	assert.Len(t, s, 128)

	for _, c := range s {
		assert.True(t, strings.ContainsRune(randomAlphabet, c), "character %c not in alphabet", c)
	}

	// Two draws should differ
	s2, err := GenerateRandomString(128)
	require.NoError(t, err)
	assert.NotEqual(t, s, s2)
}

func TestGenerateCodeChallenge(t *testing.T) {
	// RFC 7636 appendix B test vector
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", GenerateCodeChallenge(verifier))
}

func TestGenerateCodeChallengeDeterministic(t *testing.T) {
	verifier, err := GenerateRandomString(128)
	require.NoError(t, err)

	challenge := GenerateCodeChallenge(verifier)
	assert.Equal(t, challenge, GenerateCodeChallenge(verifier))

	// 43-character base64url with no +, / or =
	assert.Len(t, challenge, 43)
	assert.NotContains(t, challenge, "+")
	assert.NotContains(t, challenge, "/")
	assert.NotContains(t, challenge, "=")

	hash := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), challenge)
}

func TestGeneratePKCE(t *testing.T) {
	pkce, err := GeneratePKCE()
	require.NoError(t, err)

	assert.Len(t, pkce.CodeVerifier, 128)
	assert.Equal(t, GenerateCodeChallenge(pkce.CodeVerifier), pkce.CodeChallenge)
}

func TestGenerateState(t *testing.T) {
	state, err := GenerateState()
	require.NoError(t, err)
	assert.Len(t, state, 32)
}

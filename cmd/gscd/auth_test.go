package main

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestApiKeyMatches(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cr3t-key"), bcrypt.DefaultCost)
	require.NoError(t, err)

	assert.True(t, apiKeyMatches("s3cr3t-key", []string{string(hash)}))
	assert.False(t, apiKeyMatches("wrong-key", []string{string(hash)}))
	assert.False(t, apiKeyMatches("s3cr3t-key", nil))
}

func TestIssueSessionToken_RequireSessionRoundTrip(t *testing.T) {
	secret := []byte("daemon-secret")

	tok, err := issueSessionToken(secret)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	assert.NoError(t, requireSession(req, secret))
}

func TestRequireSession_RejectsWrongSecret(t *testing.T) {
	tok, err := issueSessionToken([]byte("daemon-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	assert.Error(t, requireSession(req, []byte("other-secret")))
}

func TestRequireSession_RejectsMissingHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Error(t, requireSession(req, []byte("daemon-secret")))
}

func TestGetBearerToken_RejectsNonBearerScheme(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic abc123")
	_, err := getBearerToken(req)
	assert.Error(t, err)
}

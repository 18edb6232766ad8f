package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/jakechorley/cooking-rota/internal/config"
)

func TestGetOAuthConfig(t *testing.T) {
	cfg := &config.OAuthClientConfig{Installed: config.OAuthInstalled{
		ClientID:     "client",
		ProjectID:    "cooking-rota",
		AuthURI:      "https://accounts.google.com/o/oauth2/auth",
		TokenURI:     "https://oauth2.googleapis.com/token",
		ClientSecret: "secret",
		RedirectURIs: []string{"http://localhost"},
	}}

	oauthConfig, err := GetOAuthConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "client", oauthConfig.ClientID)
	assert.Equal(t, []string{ScopeSheets}, oauthConfig.Scopes)
	assert.Equal(t, "http://localhost:3000/oauth/callback", oauthConfig.RedirectURL)
}

func TestTokenFileRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	token, err := LoadTokenFromFile("test")
	require.NoError(t, err)
	assert.Nil(t, token)

	expiry := time.Date(2090, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, SaveTokenToFile("test", &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: expiry}))

	info, err := os.Stat(filepath.Join(home, ".cooking-rota", "tokens", "token-test.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	token, err = LoadTokenFromFile("test")
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "refresh", token.RefreshToken)
	assert.True(t, token.Expiry.Equal(expiry))

	require.NoError(t, DeleteTokenFile("test"))
	require.NoError(t, DeleteTokenFile("test"))

	token, err = LoadTokenFromFile("test")
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestLoadTokenFromFile_Corrupt(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".cooking-rota", "tokens")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token-test.json"), []byte("{"), 0600))

	_, err := LoadTokenFromFile("test")
	assert.ErrorContains(t, err, "failed to parse token file")
}

func TestMissingScopes(t *testing.T) {
	assert.NoError(t, missingScopes([]string{"openid", ScopeSheets}))
	assert.ErrorContains(t, missingScopes([]string{"openid"}), ScopeSheets)
}

func TestTokenManager_ReturnsCachedToken(t *testing.T) {
	manager := NewTokenManager(&oauth2.Config{}, "test", zap.NewNop())
	cached := &oauth2.Token{AccessToken: "cached", Expiry: time.Now().Add(time.Hour)}
	manager.cached = cached

	token, err := manager.Token(context.Background())
	require.NoError(t, err)
	assert.Same(t, cached, token)

	manager.Clear()
	assert.Nil(t, manager.cached)
}

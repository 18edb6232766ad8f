package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validOAuthClient = `{
  "installed": {
    "client_id": "rota-client.apps.googleusercontent.com",
    "project_id": "cooking-rota",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "client_secret": "secret",
    "redirect_uris": ["http://localhost"]
  }
}`

func TestLoadOAuthClientFromPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cooking_rota_oauth.json", validOAuthClient)

	cfg, err := LoadOAuthClientFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "rota-client.apps.googleusercontent.com", cfg.Installed.ClientID)
	assert.Equal(t, []string{"http://localhost"}, cfg.Installed.RedirectURIs)
}

func TestLoadOAuthClientFromPath_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "invalid json", content: `{"installed": {"client_id": "x" "project_id": "y"}}`, wantErr: "failed to parse oauth client file"},
		{name: "missing secret", content: `{"installed": {"client_id": "x", "project_id": "y", "auth_uri": "https://a", "token_uri": "https://t", "redirect_uris": ["http://localhost"]}}`, wantErr: "validation failed"},
		{name: "no redirect", content: `{"installed": {"client_id": "x", "project_id": "y", "auth_uri": "https://a", "token_uri": "https://t", "client_secret": "s", "redirect_uris": []}}`, wantErr: "validation failed"},
		{name: "bad auth uri", content: `{"installed": {"client_id": "x", "project_id": "y", "auth_uri": "nope", "token_uri": "https://t", "client_secret": "s", "redirect_uris": ["http://localhost"]}}`, wantErr: "validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "oauth.json", tt.content)

			_, err := LoadOAuthClientFromPath(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadOAuthClient_EnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())

	writeFile(t, dir, "cooking_rota_oauth.prod.json", validOAuthClient)

	cfg, err := LoadOAuthClient("prod")
	require.NoError(t, err)
	assert.Equal(t, "cooking-rota", cfg.Installed.ProjectID)

	_, err = LoadOAuthClient("test")
	assert.Error(t, err)
}

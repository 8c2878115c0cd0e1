package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCredentialsFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const webCredentials = `{
  "web": {
    "client_id": "file-client-id.apps.googleusercontent.com",
    "client_secret": "file-secret",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "redirect_uris": ["https://registered.example.com/old-callback"]
  }
}`

func TestEnvCredentials(t *testing.T) {
	t.Run("complete pair", func(t *testing.T) {
		p := EnvCredentials{
			ClientID:     "env-client-id",
			ClientSecret: "env-secret",
			RedirectURI:  "http://localhost:3000/api/auth/callback",
		}
		config, ok, err := p.OAuthConfig()
		if err != nil || !ok {
			t.Fatalf("OAuthConfig() = %v, %v, %v", config, ok, err)
		}
		if config.ClientID != "env-client-id" {
			t.Errorf("ClientID = %q", config.ClientID)
		}
		if config.RedirectURL != "http://localhost:3000/api/auth/callback" {
			t.Errorf("RedirectURL = %q", config.RedirectURL)
		}
		if len(config.Scopes) != len(Scopes) {
			t.Errorf("Scopes = %v", config.Scopes)
		}
	})

	t.Run("incomplete pair is absent", func(t *testing.T) {
		for _, p := range []EnvCredentials{
			{ClientID: "env-client-id"},
			{ClientSecret: "env-secret"},
			{},
		} {
			if _, ok, err := p.OAuthConfig(); ok || err != nil {
				t.Errorf("OAuthConfig(%+v) = %v, %v, want absent", p, ok, err)
			}
		}
	})
}

func TestFileCredentials(t *testing.T) {
	t.Run("web credentials parse and redirect override", func(t *testing.T) {
		p := FileCredentials{
			Path:        writeCredentialsFile(t, webCredentials),
			RedirectURI: "https://app.example.com/api/auth/callback",
		}
		config, ok, err := p.OAuthConfig()
		if err != nil || !ok {
			t.Fatalf("OAuthConfig() error = %v, ok = %v", err, ok)
		}
		if config.ClientID != "file-client-id.apps.googleusercontent.com" {
			t.Errorf("ClientID = %q", config.ClientID)
		}
		if config.RedirectURL != "https://app.example.com/api/auth/callback" {
			t.Errorf("RedirectURL = %q, want deployment callback", config.RedirectURL)
		}
	})

	t.Run("missing file is absent", func(t *testing.T) {
		p := FileCredentials{Path: filepath.Join(t.TempDir(), "nope.json")}
		if _, ok, err := p.OAuthConfig(); ok || err != nil {
			t.Errorf("OAuthConfig() = %v, %v, want absent", ok, err)
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		p := FileCredentials{Path: writeCredentialsFile(t, "not json")}
		if _, _, err := p.OAuthConfig(); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestResolveOAuthConfig(t *testing.T) {
	filePath := writeCredentialsFile(t, webCredentials)

	t.Run("environment beats file", func(t *testing.T) {
		config, err := ResolveOAuthConfig(
			EnvCredentials{ClientID: "env-client-id", ClientSecret: "env-secret"},
			FileCredentials{Path: filePath},
		)
		if err != nil {
			t.Fatalf("ResolveOAuthConfig() error = %v", err)
		}
		if config.ClientID != "env-client-id" {
			t.Errorf("ClientID = %q, want environment credentials", config.ClientID)
		}
	})

	t.Run("falls through to file", func(t *testing.T) {
		config, err := ResolveOAuthConfig(
			EnvCredentials{},
			FileCredentials{Path: filePath},
		)
		if err != nil {
			t.Fatalf("ResolveOAuthConfig() error = %v", err)
		}
		if config.ClientID != "file-client-id.apps.googleusercontent.com" {
			t.Errorf("ClientID = %q, want file credentials", config.ClientID)
		}
	})

	t.Run("nothing available", func(t *testing.T) {
		_, err := ResolveOAuthConfig(
			EnvCredentials{},
			FileCredentials{Path: filepath.Join(t.TempDir(), "nope.json")},
		)
		if !errors.Is(err, ErrNoCredentials) {
			t.Errorf("expected ErrNoCredentials, got %v", err)
		}
	})
}

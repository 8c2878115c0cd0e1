package config

import (
	"testing"
)

// clearEnv blanks every variable Load reads so ambient environment and
// .env files cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CLASSCAL_LISTEN",
		"GOOGLE_CLIENT_ID",
		"GOOGLE_CLIENT_SECRET",
		"GOOGLE_REDIRECT_URI",
		"DEPLOY_HOST",
		"GOOGLE_TOKENS",
		"SESSION_SECRET",
		"GOOGLE_CREDENTIALS_FILE",
		"GOOGLE_TOKEN_FILE",
		"CLASSCAL_SUBJECTS_FILE",
	} {
		t.Setenv(key, "")
	}
	// Run from an empty directory so a developer .env file is not picked up.
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.Listen != "127.0.0.1:3000" {
		t.Errorf("Listen = %q, want default", cfg.Listen)
	}
	if cfg.CredentialsPath != "credentials.json" {
		t.Errorf("CredentialsPath = %q, want default", cfg.CredentialsPath)
	}
	if cfg.TokenPath != "token.json" {
		t.Errorf("TokenPath = %q, want default", cfg.TokenPath)
	}
	if cfg.ClientID != "" || cfg.TokenBlob != "" {
		t.Errorf("expected empty credentials, got %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLASSCAL_LISTEN", "0.0.0.0:8080")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_TOKENS", `{"access_token":"at"}`)
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "/etc/classcal/credentials.json")

	cfg := Load()
	if cfg.Listen != "0.0.0.0:8080" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.ClientID != "client-id" || cfg.ClientSecret != "client-secret" {
		t.Errorf("credentials not read: %+v", cfg)
	}
	if cfg.TokenBlob != `{"access_token":"at"}` {
		t.Errorf("TokenBlob = %q", cfg.TokenBlob)
	}
	if cfg.CredentialsPath != "/etc/classcal/credentials.json" {
		t.Errorf("CredentialsPath = %q", cfg.CredentialsPath)
	}
}

func TestCleanEnvStripsPastedWhitespace(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_CLIENT_ID", "  client-id\r\n")
	t.Setenv("GOOGLE_CLIENT_SECRET", "cli\nent-secret\t")

	cfg := Load()
	if cfg.ClientID != "client-id" {
		t.Errorf("ClientID = %q, want stripped", cfg.ClientID)
	}
	if cfg.ClientSecret != "client-secret" {
		t.Errorf("ClientSecret = %q, want stripped", cfg.ClientSecret)
	}
}

func TestRedirectURI(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "explicit override wins",
			cfg: Config{
				RedirectOverride: "https://custom.example.com/oauth",
				DeployHost:       "app.example.com",
			},
			want: "https://custom.example.com/oauth",
		},
		{
			name: "derived from deploy host",
			cfg:  Config{DeployHost: "app.example.com"},
			want: "https://app.example.com/api/auth/callback",
		},
		{
			name: "local default",
			cfg:  Config{},
			want: "http://localhost:3000/api/auth/callback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.RedirectURI(); got != tt.want {
				t.Errorf("RedirectURI() = %q, want %q", got, tt.want)
			}
		})
	}
}

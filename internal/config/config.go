// Package config reads process configuration from the environment, with
// .env support for local development.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultListen      = "127.0.0.1:3000"
	defaultCredentials = "credentials.json"
	defaultToken       = "token.json"

	callbackPath = "/api/auth/callback"
)

// Config is the resolved process configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string

	// ClientID/ClientSecret are the OAuth client credentials when supplied
	// via environment (production). Empty means fall back to the
	// credentials file.
	ClientID     string
	ClientSecret string

	// RedirectOverride, if set, is used verbatim as the OAuth redirect URI.
	RedirectOverride string

	// DeployHost is the public hostname of the deployment, used to derive
	// the redirect URI when no explicit override is set.
	DeployHost string

	// TokenBlob is a JSON-encoded oauth2 token supplied via environment
	// (production). Empty means fall back to the token file.
	TokenBlob string

	// SessionSecret signs the OAuth state parameter.
	SessionSecret string

	// CredentialsPath and TokenPath locate the local development files.
	CredentialsPath string
	TokenPath       string

	// SubjectsPath, if set, overrides the built-in subject registry.
	SubjectsPath string
}

// Load resolves configuration from the environment. A .env file in the
// working directory is merged in first without overriding real env vars.
func Load() *Config {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		Listen:           envOr("CLASSCAL_LISTEN", defaultListen),
		ClientID:         cleanEnv("GOOGLE_CLIENT_ID"),
		ClientSecret:     cleanEnv("GOOGLE_CLIENT_SECRET"),
		RedirectOverride: cleanEnv("GOOGLE_REDIRECT_URI"),
		DeployHost:       cleanEnv("DEPLOY_HOST"),
		TokenBlob:        strings.TrimSpace(os.Getenv("GOOGLE_TOKENS")),
		SessionSecret:    cleanEnv("SESSION_SECRET"),
		CredentialsPath:  envOr("GOOGLE_CREDENTIALS_FILE", defaultCredentials),
		TokenPath:        envOr("GOOGLE_TOKEN_FILE", defaultToken),
		SubjectsPath:     cleanEnv("CLASSCAL_SUBJECTS_FILE"),
	}
	return cfg
}

// RedirectURI resolves the OAuth redirect URI: explicit override first,
// then a deployment-host-derived URL, then the local default.
func (c *Config) RedirectURI() string {
	if c.RedirectOverride != "" {
		return c.RedirectOverride
	}
	if c.DeployHost != "" {
		return fmt.Sprintf("https://%s%s", c.DeployHost, callbackPath)
	}
	return "http://localhost:3000" + callbackPath
}

func envOr(key, fallback string) string {
	if v := cleanEnv(key); v != "" {
		return v
	}
	return fallback
}

// cleanEnv strips whitespace and stray newlines that tend to sneak into
// pasted deployment secrets.
func cleanEnv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	return strings.NewReplacer("\r", "", "\n", "", "\t", "").Replace(v)
}

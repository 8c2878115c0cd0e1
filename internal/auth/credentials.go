// Package auth builds the OAuth2 client for the Google Calendar API and
// resolves previously granted tokens.
//
// Credentials and tokens each come from an ordered list of providers:
// environment first (production), local file second (development). The
// first provider that has material wins.
package auth

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// ErrNoCredentials indicates that no credential provider had usable
// client credentials.
var ErrNoCredentials = errors.New("no OAuth client credentials configured")

// Scopes requested during the consent flow. userinfo.email identifies who
// logged in; everything else needs full calendar access.
var Scopes = []string{
	calendar.CalendarScope,
	"https://www.googleapis.com/auth/userinfo.email",
}

// CredentialProvider yields an OAuth client configuration, or reports that
// it has nothing to offer.
type CredentialProvider interface {
	// Name identifies the provider in logs and errors.
	Name() string
	// OAuthConfig returns (config, true, nil) when credentials are
	// available, (nil, false, nil) when this source is absent, and an
	// error only when the source exists but is malformed.
	OAuthConfig() (*oauth2.Config, bool, error)
}

// EnvCredentials sources the client id/secret pair from environment
// configuration.
type EnvCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

func (p EnvCredentials) Name() string { return "environment" }

func (p EnvCredentials) OAuthConfig() (*oauth2.Config, bool, error) {
	if p.ClientID == "" || p.ClientSecret == "" {
		return nil, false, nil
	}
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.RedirectURI,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}, true, nil
}

// FileCredentials sources credentials from a Google Cloud Console
// credentials.json ("web" or "installed" shape).
type FileCredentials struct {
	Path        string
	RedirectURI string
}

func (p FileCredentials) Name() string { return "credentials file" }

func (p FileCredentials) OAuthConfig() (*oauth2.Config, bool, error) {
	b, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, false, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	// The redirect URI must match this deployment's callback route, not
	// whatever was registered first in the credentials file.
	config.RedirectURL = p.RedirectURI
	return config, true, nil
}

// ResolveOAuthConfig walks the providers in order and returns the first
// available configuration.
func ResolveOAuthConfig(providers ...CredentialProvider) (*oauth2.Config, error) {
	for _, p := range providers {
		config, ok, err := p.OAuthConfig()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name(), err)
		}
		if ok {
			return config, nil
		}
	}
	return nil, ErrNoCredentials
}

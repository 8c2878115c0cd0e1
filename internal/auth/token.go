package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

const tokenFilePermMode = 0600

// ErrNoToken indicates that no token provider had a saved token; the
// caller must send the user through the consent flow.
var ErrNoToken = errors.New("no saved tokens")

// TokenProvider yields a previously granted OAuth token, or reports that
// it has none.
type TokenProvider interface {
	Name() string
	// Token returns (token, true, nil) when a token is available,
	// (nil, false, nil) when this source is absent, and an error only
	// when the source exists but is malformed.
	Token() (*oauth2.Token, bool, error)
}

// EnvToken decodes a JSON token blob held in an environment variable.
type EnvToken struct {
	Blob string
}

func (p EnvToken) Name() string { return "environment" }

func (p EnvToken) Token() (*oauth2.Token, bool, error) {
	if p.Blob == "" {
		return nil, false, nil
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal([]byte(p.Blob), tok); err != nil {
		return nil, false, fmt.Errorf("unable to decode token blob: %w", err)
	}
	return tok, true, nil
}

// FileToken reads the token file written after a successful consent flow.
type FileToken struct {
	Path string
}

func (p FileToken) Name() string { return "token file" }

func (p FileToken) Token() (*oauth2.Token, bool, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("unable to open token file: %w", err)
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, false, fmt.Errorf("unable to decode token: %w", err)
	}
	return tok, true, nil
}

// ResolveToken walks the providers in order and returns the first saved
// token, or ErrNoToken.
func ResolveToken(providers ...TokenProvider) (*oauth2.Token, error) {
	for _, p := range providers {
		tok, ok, err := p.Token()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name(), err)
		}
		if ok {
			return tok, nil
		}
	}
	return nil, ErrNoToken
}

// SaveToken saves an OAuth token to the specified file path with
// restricted permissions.
func SaveToken(tokenPath string, token *oauth2.Token) error {
	f, err := os.OpenFile(tokenPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, tokenFilePermMode)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("unable to encode token: %w", err)
	}
	return nil
}

package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/seamosgenios/classcal/internal/auth"
	"golang.org/x/oauth2"
)

// oauthState derives the state parameter for the authorization-code flow
// from the session secret. The server holds no per-session state, so the
// value is a keyed digest rather than a stored nonce.
func (s *Server) oauthState() string {
	if s.cfg.SessionSecret == "" {
		return "state-token"
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.SessionSecret))
	mac.Write([]byte("classcal-oauth-state"))
	return hex.EncodeToString(mac.Sum(nil))
}

// handleLogin serves GET /api/auth/login: redirects the browser to the
// Google consent screen, requesting offline access so a refresh token is
// granted.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	oauthCfg, err := s.oauthConfig()
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	url := oauthCfg.AuthCodeURL(s.oauthState(),
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	http.Redirect(w, r, url, http.StatusFound)
}

// handleCallback serves GET /api/auth/callback: exchanges the
// authorization code and persists the tokens so later requests can
// authorize without a new consent flow.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		fail(w, http.StatusBadRequest, "no authorization code received")
		return
	}

	want := s.oauthState()
	if got := query.Get("state"); subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		fail(w, http.StatusBadRequest, "state mismatch")
		return
	}

	oauthCfg, err := s.oauthConfig()
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	tok, err := oauthCfg.Exchange(r.Context(), code)
	if err != nil {
		fail(w, http.StatusInternalServerError, "unable to exchange authorization code: "+err.Error())
		return
	}

	if err := auth.SaveToken(s.cfg.TokenPath, tok); err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("tokens saved", "path", s.cfg.TokenPath)
	http.Redirect(w, r, "/", http.StatusFound)
}

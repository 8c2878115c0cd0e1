// Package web serves the JSON API and the embedded browser UI. Handlers
// are thin: validate the subject against the registry, build an
// authorized gateway for the request, perform exactly one calendar
// operation, and reshape the result into the response envelope.
package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"

	"github.com/seamosgenios/classcal/internal/auth"
	"github.com/seamosgenios/classcal/internal/calendar"
	"github.com/seamosgenios/classcal/internal/config"
	"github.com/seamosgenios/classcal/internal/subjects"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
)

//go:embed all:static
var embeddedStatic embed.FS

// Server wires the subject registry, process configuration and OAuth
// material into the HTTP surface.
type Server struct {
	cfg      *config.Config
	registry *subjects.Registry
	composer *calendar.Composer
	mux      *http.ServeMux

	// endpoint overrides the calendar API base URL in tests.
	endpoint string
}

// Option customizes a Server.
type Option func(*Server)

// WithCalendarEndpoint points the gateway at an alternative calendar API
// base URL (used with googlecaltest).
func WithCalendarEndpoint(url string) Option {
	return func(s *Server) { s.endpoint = url }
}

// NewServer constructs the HTTP server.
func NewServer(cfg *config.Config, registry *subjects.Registry, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		composer: calendar.NewComposer(calendar.Defaults{
			ReminderOverrides: []*gcal.EventReminder{
				{Method: "popup", Minutes: 30},
				{Method: "email", Minutes: 60},
			},
		}),
		mux: http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/subjects", s.handleSubjects)
	s.mux.HandleFunc("GET /api/events/list", s.handleListEvents)
	s.mux.HandleFunc("GET /api/events/instances", s.handleListInstances)
	s.mux.HandleFunc("GET /api/events/get", s.handleGetEvent)
	s.mux.HandleFunc("POST /api/events/create", s.handleCreateEvent)
	s.mux.HandleFunc("PATCH /api/events/edit", s.handleEditEvent)
	s.mux.HandleFunc("DELETE /api/events/instance", s.handleCancelInstance)
	s.mux.HandleFunc("PUT /api/events/instance", s.handleRestoreInstance)

	s.mux.HandleFunc("GET /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("GET /api/auth/callback", s.handleCallback)

	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	static, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		// The static tree is embedded at build time.
		panic(err)
	}
	s.mux.Handle("/", http.FileServerFS(static))
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return requestLogger(s.mux)
}

// oauthConfig resolves the OAuth client configuration from the ordered
// credential providers: environment first, credentials file second.
func (s *Server) oauthConfig() (*oauth2.Config, error) {
	return auth.ResolveOAuthConfig(
		auth.EnvCredentials{
			ClientID:     s.cfg.ClientID,
			ClientSecret: s.cfg.ClientSecret,
			RedirectURI:  s.cfg.RedirectURI(),
		},
		auth.FileCredentials{
			Path:        s.cfg.CredentialsPath,
			RedirectURI: s.cfg.RedirectURI(),
		},
	)
}

// gateway builds an authorized calendar gateway for this request. Tokens
// come from the environment blob when present, else the token file; a
// missing token surfaces as ErrNotAuthorized so the handler can answer
// 401 with needsAuth.
func (s *Server) gateway(ctx context.Context) (*calendar.Client, error) {
	tok, err := auth.ResolveToken(
		auth.EnvToken{Blob: s.cfg.TokenBlob},
		auth.FileToken{Path: s.cfg.TokenPath},
	)
	if err != nil {
		if errors.Is(err, auth.ErrNoToken) {
			return nil, calendar.ErrNotAuthorized
		}
		return nil, err
	}

	oauthCfg, err := s.oauthConfig()
	if err != nil {
		return nil, err
	}

	httpClient := oauthCfg.Client(ctx, tok)
	if s.endpoint != "" {
		return calendar.NewClient(ctx, httpClient, s.endpoint)
	}
	return calendar.NewClient(ctx, httpClient)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"subjects": s.registry.All(),
	})
}

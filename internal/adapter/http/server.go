// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"
	"time"

	"pushups/internal/app"

	"github.com/gorilla/mux"
)

// Services groups the application services the HTTP adapter drives.
type Services struct {
	Groups      *app.GroupService
	Profiles    *app.ProfileService
	Sessions    *app.SessionService
	Logs        *app.LogService
	Leaderboard *app.LeaderboardService
	Analytics   *app.AnalyticsService
	Changes     *app.ChangeHub
}

// Options tunes cookies and static file serving.
type Options struct {
	WebDir        string
	ChallengeYear int
	SessionTTL    time.Duration
	SecureCookies bool
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	svc  Services
	opts Options
	oidc *OIDCConfig
}

// New creates a Server wired to the given application services.
func New(svc Services, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	return &Server{svc: svc, opts: opts}
}

// WithOIDC enables single sign-on through the given provider.
func (s *Server) WithOIDC(cfg *OIDCConfig) *Server {
	s.oidc = cfg
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	})

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}).Methods(http.MethodGet)
	api.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet)

	// Onboarding
	api.HandleFunc("/groups", s.handleCreateGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups/{code}", s.handleGetGroup).Methods(http.MethodGet)
	api.HandleFunc("/groups/{code}/profiles", s.handleCreateProfile).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/sso/login", s.handleSSOLogin).Methods(http.MethodGet)
	api.HandleFunc("/sso/callback", s.handleSSOCallback).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.identityMiddleware)

	authed.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)

	// Logging
	authed.HandleFunc("/today", s.handleTodayGet).Methods(http.MethodGet)
	authed.HandleFunc("/today", s.handleTodayAdd).Methods(http.MethodPost)
	authed.HandleFunc("/logs", s.handleMonth).Methods(http.MethodGet)
	authed.HandleFunc("/logs/{date}", s.handleSaveDay).Methods(http.MethodPut)
	authed.HandleFunc("/logs/{date}", s.handleDeleteDay).Methods(http.MethodDelete)
	authed.HandleFunc("/members/{id}/history", s.handleMemberHistory).Methods(http.MethodGet)

	// Group views
	authed.HandleFunc("/analytics", s.handleAnalytics).Methods(http.MethodGet)
	authed.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
	authed.HandleFunc("/leaderboard/progress", s.handleProgress).Methods(http.MethodGet)
	authed.HandleFunc("/group/stats", s.handleGroupStats).Methods(http.MethodGet)
	authed.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)

	// Settings
	authed.HandleFunc("/profile/target", s.handleUpdateTarget).Methods(http.MethodPut)

	r.PathPrefix("/").Handler(spaFromDisk(s.opts.WebDir))

	return withNoCache(r)
}

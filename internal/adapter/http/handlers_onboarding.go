package adapthttp

import (
	"net/http"

	"pushups/internal/domain"

	"github.com/gorilla/mux"
)

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled":    s.oidc != nil,
		"challengeYear":  s.opts.ChallengeYear,
		"minDailyTarget": domain.MinDailyTarget,
		"maxDailyTarget": domain.MaxDailyTarget,
	})
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		GroupTarget *int   `json:"groupTarget"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	g, err := s.svc.Groups.Create(r.Context(), body.Name, body.GroupTarget)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"group": g})
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.Groups.Join(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"group": g})
}

// handleCreateProfile joins a group as a new member and signs them in.
func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username    string `json:"username"`
		Avatar      string `json:"avatar"`
		DailyTarget int    `json:"dailyTarget"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	g, err := s.svc.Groups.Join(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.svc.Profiles.Create(r.Context(), g.ID, body.Username, body.Avatar, body.DailyTarget)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	token, err := s.svc.Sessions.Start(r.Context(), p.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, domain.Identity{Profile: *p, Group: *g})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username  string `json:"username"`
		GroupCode string `json:"groupCode"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	token, id, err := s.svc.Sessions.Login(r.Context(), body.Username, body.GroupCode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if err := s.svc.Sessions.Logout(r.Context(), cookie.Value); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, identityFrom(r.Context()))
}

func (s *Server) handleUpdateTarget(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DailyTarget int `json:"dailyTarget"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := s.svc.Profiles.UpdateDailyTarget(r.Context(), identityFrom(r.Context()), body.DailyTarget)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":  p,
		"yearGoal": domain.YearGoal(p.DailyTarget),
	})
}

package adapthttp

import (
	"net/http"

	"pushups/internal/app"
)

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Analytics.Summary(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	entries, err := s.svc.Leaderboard.Leaderboard(r.Context(), identityFrom(r.Context()), sortBy)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if sortBy == "" {
		sortBy = app.SortByTotal
	}
	writeJSON(w, http.StatusOK, map[string]any{"sort": sortBy, "entries": entries})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.svc.Leaderboard.Progress(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleGroupStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Leaderboard.GroupStats(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

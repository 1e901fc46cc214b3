package adapthttp

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func (s *Server) handleTodayGet(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Logs.Today(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleTodayAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Count int   `json:"count"`
		Sets  []int `json:"sets"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.svc.Logs.AddReps(r.Context(), identityFrom(r.Context()), body.Count, body.Sets)
	if err != nil && res != nil {
		// The write failed; hand back the unchanged total so the client can revert.
		code, msg := errorStatus(err)
		logFailure(r, code, err)
		writeJSON(w, code, map[string]any{"error": msg, "today": res.TodayStatus})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	month := time.Now()
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := time.Parse("2006-01", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "month: want YYYY-MM"})
			return
		}
		month = m
	}

	logs, err := s.svc.Logs.Month(r.Context(), identityFrom(r.Context()), month.Year(), month.Month())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": month.Format("2006-01"),
		"logs":  logs,
	})
}

func (s *Server) handleSaveDay(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Count *int  `json:"count"`
		Sets  []int `json:"sets"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.svc.Logs.SaveDay(r.Context(), identityFrom(r.Context()), mux.Vars(r)["date"], body.Count, body.Sets)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteDay(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Logs.DeleteDay(r.Context(), identityFrom(r.Context()), mux.Vars(r)["date"]); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleMemberHistory(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "id: invalid member id"})
		return
	}
	logs, err := s.svc.Logs.MemberHistory(r.Context(), identityFrom(r.Context()), memberID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

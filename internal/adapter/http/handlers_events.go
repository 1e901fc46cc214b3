package adapthttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pushups/internal/domain"
)

const keepAliveInterval = 25 * time.Second

// handleEvents streams the caller's group log changes as Server-Sent Events.
// Each event only tells the client what to re-fetch.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || s.svc.Changes == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]any{"error": "streaming unsupported"})
		return
	}

	id := identityFrom(r.Context())
	changes, cancel := s.svc.Changes.Subscribe(id.Group.ID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case c, ok := <-changes:
			if !ok {
				return
			}
			data, err := json.Marshal(c)
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName(c.Op), data)
			flusher.Flush()
		}
	}
}

func eventName(op domain.ChangeOp) string {
	if op == domain.ChangeResync {
		return "resync"
	}
	return "log"
}

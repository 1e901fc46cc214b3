package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"

	"pushups/internal/app"
	"pushups/internal/domain"
	"pushups/internal/logger"
)

const genericFailure = "failed, try again"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// errorStatus maps a service error to a status and client-safe message.
func errorStatus(err error) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrLogNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrGroupCodeTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, app.ErrSessionNotFound),
		errors.Is(err, app.ErrSessionExpired):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, genericFailure
	}
}

// fail writes err to the client. Unexpected errors are logged and replaced by
// a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	logFailure(r, status, err)
	writeJSON(w, status, map[string]any{"error": msg})
}

func logFailure(r *http.Request, status int, err error) {
	if status == http.StatusInternalServerError {
		logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
	}
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func spaFromDisk(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := path.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(indexPath); err != nil {
			http.NotFound(w, r)
			return
		}

		reqPath := path.Clean(r.URL.Path)
		if reqPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		staticPath := path.Join(dir, reqPath)
		if info, err := os.Stat(staticPath); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, indexPath)
	})
}

package adapthttp_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	adapthttp "pushups/internal/adapter/http"
	"pushups/internal/adapter/memory"
	"pushups/internal/app"
	"pushups/internal/domain"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Store wrappers (function-fields pattern over the in-memory store)
// ---------------------------------------------------------------------------

type logStore struct {
	*memory.DB
	upsertFn func(ctx context.Context, userID uuid.UUID, day string, count int, sets domain.SetsBreakdown) (*domain.Log, error)
}

func (s *logStore) UpsertLog(ctx context.Context, userID uuid.UUID, day string, count int, sets domain.SetsBreakdown) (*domain.Log, error) {
	if s.upsertFn != nil {
		return s.upsertFn(ctx, userID, day, count, sets)
	}
	return s.DB.UpsertLog(ctx, userID, day, count, sets)
}

type readyFeed struct {
	*memory.DB
	ready chan struct{}
}

func (f *readyFeed) SubscribeLogChanges(ctx context.Context) (<-chan domain.LogChange, error) {
	ch, err := f.DB.SubscribeLogChanges(ctx)
	close(f.ready)
	return ch, err
}

// ---------------------------------------------------------------------------
// Test-server helper
// ---------------------------------------------------------------------------

type testEnv struct {
	ts   *httptest.Server
	db   *memory.DB
	logs *logStore
	hub  *app.ChangeHub
	feed *readyFeed
}

var testNow = func() time.Time { return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.Local) }

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	db := memory.New()
	logs := &logStore{DB: db}
	feed := &readyFeed{DB: db, ready: make(chan struct{})}
	hub := app.NewChangeHub(feed)

	svc := adapthttp.Services{
		Groups:      app.NewGroupService(db),
		Profiles:    app.NewProfileService(db, db),
		Sessions:    app.NewSessionService(db, db, db, time.Hour),
		Logs:        app.NewLogService(logs, db, db).WithClock(testNow),
		Leaderboard: app.NewLeaderboardService(db, logs, 2026).WithClock(testNow),
		Analytics:   app.NewAnalyticsService(logs, 2026),
		Changes:     hub,
	}

	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := adapthttp.New(svc, adapthttp.Options{WebDir: webDir, ChallengeYear: 2026, SessionTTL: time.Hour})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, db: db, logs: logs, hub: hub, feed: feed}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, c *http.Client, method, url string, payload any) (int, map[string]any) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return resp.StatusCode, m
}

// signUp creates a group (when code is empty) and joins it as username.
func signUp(t *testing.T, env *testEnv, c *http.Client, code, username string, target int) string {
	t.Helper()
	if code == "" {
		status, body := doJSON(t, c, http.MethodPost, env.ts.URL+"/api/groups", map[string]any{"name": "Morning Crew"})
		if status != http.StatusCreated {
			t.Fatalf("create group: expected 201, got %d: %v", status, body)
		}
		code = body["group"].(map[string]any)["code"].(string)
	}
	status, body := doJSON(t, c, http.MethodPost, env.ts.URL+"/api/groups/"+code+"/profiles",
		map[string]any{"username": username, "dailyTarget": target})
	if status != http.StatusCreated {
		t.Fatalf("create profile: expected 201, got %d: %v", status, body)
	}
	return code
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	env := newTestServer(t)

	status, body := doJSON(t, http.DefaultClient, http.MethodGet, env.ts.URL+"/api/health", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestConfigEndpoint(t *testing.T) {
	env := newTestServer(t)

	status, body := doJSON(t, http.DefaultClient, http.MethodGet, env.ts.URL+"/api/config", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["sso_enabled"] != false {
		t.Errorf("expected sso disabled, got %v", body["sso_enabled"])
	}
	if body["challengeYear"] != float64(2026) {
		t.Errorf("expected challengeYear 2026, got %v", body["challengeYear"])
	}
}

func TestOnboardingAndLogin(t *testing.T) {
	env := newTestServer(t)
	alice := newClient(t)
	code := signUp(t, env, alice, "", "alice", 40)

	status, body := doJSON(t, alice, http.MethodGet, env.ts.URL+"/api/session", nil)
	if status != http.StatusOK {
		t.Fatalf("session: expected 200, got %d", status)
	}
	if body["profile"].(map[string]any)["username"] != "alice" {
		t.Errorf("unexpected session %v", body)
	}

	// Joining by a lower-case, dashed code works.
	lower := strings.ToLower(code[:3]) + "-" + strings.ToLower(code[3:])
	status, _ = doJSON(t, http.DefaultClient, http.MethodGet, env.ts.URL+"/api/groups/"+lower, nil)
	if status != http.StatusOK {
		t.Errorf("join: expected 200, got %d", status)
	}

	status, _ = doJSON(t, newClient(t), http.MethodPost, env.ts.URL+"/api/groups/"+code+"/profiles", map[string]any{"username": "alice"})
	if status != http.StatusConflict {
		t.Errorf("duplicate username: expected 409, got %d", status)
	}

	other := newClient(t)
	status, body = doJSON(t, other, http.MethodPost, env.ts.URL+"/api/login", map[string]any{"username": "alice", "groupCode": code})
	if status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %v", status, body)
	}
	status, _ = doJSON(t, other, http.MethodGet, env.ts.URL+"/api/today", nil)
	if status != http.StatusOK {
		t.Errorf("today after login: expected 200, got %d", status)
	}

	status, _ = doJSON(t, newClient(t), http.MethodPost, env.ts.URL+"/api/login", map[string]any{"username": "nobody", "groupCode": code})
	if status != http.StatusNotFound {
		t.Errorf("unknown user: expected 404, got %d", status)
	}

	status, _ = doJSON(t, other, http.MethodPost, env.ts.URL+"/api/logout", nil)
	if status != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", status)
	}
	status, _ = doJSON(t, other, http.MethodGet, env.ts.URL+"/api/today", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("after logout: expected 401, got %d", status)
	}
}

func TestOnboardingValidation(t *testing.T) {
	env := newTestServer(t)
	tests := []struct {
		name       string
		method     string
		path       string
		payload    any
		wantStatus int
	}{
		{"empty group name", http.MethodPost, "/api/groups", map[string]any{"name": ""}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/groups", map[string]any{"name": "x", "owner": "me"}, http.StatusBadRequest},
		{"short code", http.MethodGet, "/api/groups/ABC", nil, http.StatusBadRequest},
		{"unknown code", http.MethodGet, "/api/groups/ZZZZZZ", nil, http.StatusNotFound},
		{"unknown api route", http.MethodGet, "/api/nope", nil, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, http.DefaultClient, tc.method, env.ts.URL+tc.path, tc.payload)
			if status != tc.wantStatus {
				t.Fatalf("expected %d, got %d; body: %v", tc.wantStatus, status, body)
			}
		})
	}
}

func TestRequiresSession(t *testing.T) {
	env := newTestServer(t)
	for _, path := range []string{"/api/session", "/api/today", "/api/leaderboard", "/api/analytics", "/api/events"} {
		status, _ := doJSON(t, http.DefaultClient, http.MethodGet, env.ts.URL+path, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, status)
		}
	}
}

func TestTodayAdd(t *testing.T) {
	env := newTestServer(t)
	c := newClient(t)
	signUp(t, env, c, "", "alice", 50)

	status, body := doJSON(t, c, http.MethodPost, env.ts.URL+"/api/today", map[string]any{"count": 30, "sets": []int{10, 20}})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	if body["count"] != float64(30) || body["streakExtended"] != false {
		t.Errorf("unexpected first add %v", body)
	}

	status, body = doJSON(t, c, http.MethodPost, env.ts.URL+"/api/today", map[string]any{"count": 25})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["count"] != float64(55) || body["streakExtended"] != true || body["streak"] != float64(1) {
		t.Errorf("unexpected second add %v", body)
	}

	status, _ = doJSON(t, c, http.MethodPost, env.ts.URL+"/api/today", map[string]any{"count": 0})
	if status != http.StatusBadRequest {
		t.Errorf("zero reps: expected 400, got %d", status)
	}

	status, body = doJSON(t, c, http.MethodGet, env.ts.URL+"/api/today", nil)
	if status != http.StatusOK || body["date"] != "2026-03-10" || body["percentage"] != float64(100) {
		t.Errorf("unexpected today %d %v", status, body)
	}
}

func TestTodayAddStoreFailureReturnsPriorTotal(t *testing.T) {
	env := newTestServer(t)
	c := newClient(t)
	signUp(t, env, c, "", "alice", 50)

	if status, _ := doJSON(t, c, http.MethodPost, env.ts.URL+"/api/today", map[string]any{"count": 12}); status != http.StatusOK {
		t.Fatalf("seed add: got %d", status)
	}

	env.logs.upsertFn = func(context.Context, uuid.UUID, string, int, domain.SetsBreakdown) (*domain.Log, error) {
		return nil, errors.New("connection refused")
	}
	status, body := doJSON(t, c, http.MethodPost, env.ts.URL+"/api/today", map[string]any{"count": 8})
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if body["error"] != "failed, try again" {
		t.Errorf("store detail must not leak, got %v", body["error"])
	}
	today, ok := body["today"].(map[string]any)
	if !ok || today["count"] != float64(12) {
		t.Errorf("expected prior count 12, got %v", body["today"])
	}
}

func TestHistoryEditing(t *testing.T) {
	env := newTestServer(t)
	c := newClient(t)
	signUp(t, env, c, "", "alice", 50)

	status, body := doJSON(t, c, http.MethodPut, env.ts.URL+"/api/logs/2026-03-01", map[string]any{"sets": []int{20, 25}})
	if status != http.StatusOK {
		t.Fatalf("save: expected 200, got %d: %v", status, body)
	}
	if body["log"].(map[string]any)["count"] != float64(45) {
		t.Errorf("expected sets sum 45, got %v", body["log"])
	}

	if status, _ := doJSON(t, c, http.MethodPut, env.ts.URL+"/api/logs/2026-03-09", map[string]any{"count": 70}); status != http.StatusOK {
		t.Fatalf("save: got %d", status)
	}

	status, body = doJSON(t, c, http.MethodGet, env.ts.URL+"/api/logs?month=2026-03", nil)
	if status != http.StatusOK {
		t.Fatalf("month: expected 200, got %d", status)
	}
	logs := body["logs"].([]any)
	if len(logs) != 2 || logs[0].(map[string]any)["date"] != "2026-03-09" {
		t.Errorf("expected two logs newest first, got %v", logs)
	}

	status, body = doJSON(t, c, http.MethodPut, env.ts.URL+"/api/logs/2026-03-01", map[string]any{"count": 0})
	if status != http.StatusOK || body["deleted"] != true {
		t.Errorf("zero count should delete, got %d %v", status, body)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		payload    any
		wantStatus int
	}{
		{"future day", http.MethodPut, "/api/logs/2026-03-11", map[string]any{"count": 5}, http.StatusBadRequest},
		{"negative", http.MethodPut, "/api/logs/2026-03-02", map[string]any{"count": -1}, http.StatusBadRequest},
		{"bad date", http.MethodPut, "/api/logs/yesterday", map[string]any{"count": 5}, http.StatusBadRequest},
		{"bad month", http.MethodGet, "/api/logs?month=March", nil, http.StatusBadRequest},
		{"delete missing", http.MethodDelete, "/api/logs/2026-03-01", nil, http.StatusNotFound},
		{"delete existing", http.MethodDelete, "/api/logs/2026-03-09", nil, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, c, tc.method, env.ts.URL+tc.path, tc.payload)
			if status != tc.wantStatus {
				t.Fatalf("expected %d, got %d; body: %v", tc.wantStatus, status, body)
			}
		})
	}
}

func TestLeaderboardAndGroupViews(t *testing.T) {
	env := newTestServer(t)
	alice, bob := newClient(t), newClient(t)
	code := signUp(t, env, alice, "", "alice", 50)
	signUp(t, env, bob, code, "bob", 20)

	doJSON(t, alice, http.MethodPut, env.ts.URL+"/api/logs/2026-03-09", map[string]any{"count": 100})
	doJSON(t, bob, http.MethodPut, env.ts.URL+"/api/logs/2026-03-09", map[string]any{"count": 20})
	doJSON(t, bob, http.MethodPut, env.ts.URL+"/api/logs/2026-03-10", map[string]any{"count": 20})

	status, body := doJSON(t, alice, http.MethodGet, env.ts.URL+"/api/leaderboard", nil)
	if status != http.StatusOK {
		t.Fatalf("leaderboard: expected 200, got %d", status)
	}
	entries := body["entries"].([]any)
	first := entries[0].(map[string]any)
	if first["username"] != "alice" || first["total"] != float64(100) || first["isYou"] != true {
		t.Errorf("unexpected leader %v", first)
	}

	_, body = doJSON(t, alice, http.MethodGet, env.ts.URL+"/api/leaderboard?sort=streak", nil)
	first = body["entries"].([]any)[0].(map[string]any)
	if first["username"] != "bob" || first["streak"] != float64(2) {
		t.Errorf("unexpected streak leader %v", first)
	}

	status, _ = doJSON(t, alice, http.MethodGet, env.ts.URL+"/api/leaderboard?sort=wins", nil)
	if status != http.StatusBadRequest {
		t.Errorf("bad sort: expected 400, got %d", status)
	}

	_, body = doJSON(t, alice, http.MethodGet, env.ts.URL+"/api/leaderboard/progress", nil)
	if len(body["members"].([]any)) != 2 || len(body["points"].([]any)) != 2 {
		t.Errorf("unexpected progress %v", body)
	}

	_, body = doJSON(t, alice, http.MethodGet, env.ts.URL+"/api/group/stats", nil)
	if body["total"] != float64(140) || body["memberCount"] != float64(2) || body["daysLogged"] != float64(2) {
		t.Errorf("unexpected stats %v", body)
	}

	_, body = doJSON(t, alice, http.MethodGet, env.ts.URL+"/api/analytics", nil)
	if body["total"] != float64(100) || body["maxDay"] != float64(100) || body["yearGoal"] != float64(18250) {
		t.Errorf("unexpected analytics %v", body)
	}

	_, session := doJSON(t, bob, http.MethodGet, env.ts.URL+"/api/session", nil)
	bobID := session["profile"].(map[string]any)["id"].(string)
	status, body = doJSON(t, alice, http.MethodGet, env.ts.URL+"/api/members/"+bobID+"/history", nil)
	if status != http.StatusOK || len(body["logs"].([]any)) != 2 {
		t.Errorf("member history: got %d %v", status, body)
	}
	status, _ = doJSON(t, alice, http.MethodGet, env.ts.URL+"/api/members/not-a-uuid/history", nil)
	if status != http.StatusBadRequest {
		t.Errorf("bad member id: expected 400, got %d", status)
	}
}

func TestUpdateTarget(t *testing.T) {
	env := newTestServer(t)
	c := newClient(t)
	signUp(t, env, c, "", "alice", 50)

	status, body := doJSON(t, c, http.MethodPut, env.ts.URL+"/api/profile/target", map[string]any{"dailyTarget": 100})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["yearGoal"] != float64(36500) {
		t.Errorf("expected year goal 36500, got %v", body["yearGoal"])
	}

	_, body = doJSON(t, c, http.MethodGet, env.ts.URL+"/api/session", nil)
	if body["profile"].(map[string]any)["dailyTarget"] != float64(100) {
		t.Errorf("target not persisted: %v", body)
	}

	status, _ = doJSON(t, c, http.MethodPut, env.ts.URL+"/api/profile/target", map[string]any{"dailyTarget": 5000})
	if status != http.StatusBadRequest {
		t.Errorf("out of range: expected 400, got %d", status)
	}
}

func TestEventsStreamGroupChanges(t *testing.T) {
	env := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = env.hub.Run(ctx) }()
	<-env.feed.ready

	c := newClient(t)
	signUp(t, env, c, "", "alice", 50)

	reqCtx, reqCancel := context.WithTimeout(ctx, 5*time.Second)
	defer reqCancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, env.ts.URL+"/api/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event stream, got %q", ct)
	}

	if status, _ := doJSON(t, c, http.MethodPost, env.ts.URL+"/api/today", map[string]any{"count": 10}); status != http.StatusOK {
		t.Fatalf("add: got %d", status)
	}

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		if strings.HasPrefix(line, "event: log") {
			data, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("reading data: %v", err)
			}
			if !strings.Contains(data, `"op":"INSERT"`) || !strings.Contains(data, `"date":"2026-03-10"`) {
				t.Errorf("unexpected event data %q", data)
			}
			return
		}
	}
}

func TestSPAFallback(t *testing.T) {
	env := newTestServer(t)

	resp, err := http.Get(env.ts.URL + "/leaderboard")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Cache-Control") != "no-store" {
		t.Error("expected no-store cache header")
	}
}

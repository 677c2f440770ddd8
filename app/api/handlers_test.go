package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lysyi3m/rss-relay/app/config"
	"github.com/lysyi3m/rss-relay/app/database"
	"github.com/lysyi3m/rss-relay/app/tasks"
)

const testKey = "secret-key"

type fakeScheduler struct {
	enqueued []tasks.TaskInterface
	err      error
}

func (s *fakeScheduler) Start() {}
func (s *fakeScheduler) Stop()  {}

func (s *fakeScheduler) EnqueueTask(task tasks.TaskInterface) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, task)
	return nil
}

type staticConfig struct {
	config *config.Config
}

func (s staticConfig) Current() *config.Config { return s.config }

type testEnv struct {
	server    http.Handler
	ledger    *database.SQLiteLedger
	stats     *database.SQLiteStats
	scheduler *fakeScheduler
}

func newTestEnv(t *testing.T, apiKey string) *testEnv {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	env := &testEnv{
		ledger:    database.NewLedgerRepository(db),
		stats:     database.NewStatsRepository(db),
		scheduler: &fakeScheduler{},
	}

	newPollTask := func() tasks.TaskInterface {
		return tasks.NewPollFeedsTask(nil, nil, nil)
	}
	handler := NewHandler(env.ledger, env.stats, staticConfig{config.Default()}, env.scheduler, newPollTask, 20*24*time.Hour)
	env.server = NewServer(handler, apiKey)

	return env
}

func (e *testEnv) do(t *testing.T, method, path string, header map[string]string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")
	if err := env.ledger.MarkDelivered(context.Background(), "https://x/1", "t", ""); err != nil {
		t.Fatal(err)
	}

	code, body := env.do(t, http.MethodGet, "/health", nil)

	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if body["status"] != "ok" || body["delivered_items"] != float64(1) {
		t.Errorf("Unexpected health body: %v", body)
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, "")
	if err := env.stats.Increment(context.Background(), 4); err != nil {
		t.Fatal(err)
	}

	code, body := env.do(t, http.MethodGet, "/stats", nil)

	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if body["news_count"] != float64(4) {
		t.Errorf("Expected news_count 4, got %v", body["news_count"])
	}
	if body["last_check"] == nil {
		t.Error("Expected last_check to be set")
	}
	if body["last_cleanup"] != nil {
		t.Errorf("Expected last_cleanup to be null, got %v", body["last_cleanup"])
	}
	if body["retention_days"] != float64(20) || body["categories"] != float64(5) {
		t.Errorf("Unexpected stats body: %v", body)
	}
	if destinations, ok := body["destinations"].([]any); !ok || len(destinations) != 5 || destinations[0] != "@spgnovosti" {
		t.Errorf("Unexpected destinations: %v", body["destinations"])
	}
}

func TestAPIDisabledWithoutKey(t *testing.T) {
	env := newTestEnv(t, "")

	code, body := env.do(t, http.MethodGet, "/api/categories", nil)
	if code != http.StatusNotFound {
		t.Errorf("Expected 404 when API is disabled, got %d", code)
	}
	if body != nil {
		t.Errorf("Expected plain text not found body, got %v", body)
	}
}

func TestAPIAuth(t *testing.T) {
	env := newTestEnv(t, testKey)

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": testKey}, http.StatusOK},
		{"bearer key", map[string]string{"Authorization": "Bearer " + testKey}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := env.do(t, http.MethodGet, "/api/categories", tt.header)
			if code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, code)
			}
		})
	}
}

func TestAPIListCategories(t *testing.T) {
	env := newTestEnv(t, testKey)

	_, body := env.do(t, http.MethodGet, "/api/categories", map[string]string{"X-API-Key": testKey})

	var names []string
	for _, c := range body["categories"].([]any) {
		names = append(names, c.(map[string]any)["name"].(string))
	}
	if diff := cmp.Diff([]string{"спорт", "экономика", "технологии", "политика", "разное"}, names); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if body["match_mode"] != config.MatchSubstring {
		t.Errorf("Expected match_mode substring, got %v", body["match_mode"])
	}
}

func TestAPITriggerCycle(t *testing.T) {
	env := newTestEnv(t, testKey)

	code, body := env.do(t, http.MethodPost, "/api/cycle", map[string]string{"X-API-Key": testKey})

	if code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", code)
	}
	if len(env.scheduler.enqueued) != 1 {
		t.Fatalf("Expected 1 enqueued task, got %d", len(env.scheduler.enqueued))
	}
	if body["task_id"] != env.scheduler.enqueued[0].GetID() {
		t.Errorf("Expected task id %s, got %v", env.scheduler.enqueued[0].GetID(), body["task_id"])
	}
}

func TestAPITriggerCycleQueueFull(t *testing.T) {
	env := newTestEnv(t, testKey)
	env.scheduler.err = errors.New("task queue is full")

	code, _ := env.do(t, http.MethodPost, "/api/cycle", map[string]string{"X-API-Key": testKey})
	if code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", code)
	}
}

func TestAPICleanup(t *testing.T) {
	env := newTestEnv(t, testKey)
	ctx := context.Background()

	old := time.Now().Add(-40 * 24 * time.Hour).Format(time.RFC1123Z)
	if err := env.ledger.MarkDelivered(ctx, "https://x/old", "old", old); err != nil {
		t.Fatal(err)
	}
	if err := env.ledger.MarkDelivered(ctx, "https://x/new", "new", ""); err != nil {
		t.Fatal(err)
	}

	code, body := env.do(t, http.MethodPost, "/api/cleanup", map[string]string{"X-API-Key": testKey})

	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if body["deleted"] != float64(1) {
		t.Errorf("Expected 1 deleted record, got %v", body["deleted"])
	}
}

func TestGetFeed(t *testing.T) {
	env := newTestEnv(t, "")
	if err := env.ledger.MarkDelivered(context.Background(), "https://x/1", "Матч", ""); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/feed.xml", nil)
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Feed-Items"); got != "1" {
		t.Errorf("Expected X-Feed-Items 1, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), "<title>Матч</title>") {
		t.Errorf("Expected delivered item in feed, got %s", rec.Body.String())
	}
}

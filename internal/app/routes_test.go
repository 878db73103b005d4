package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/owenmcgrath/todoist-projection/internal/auth"
	"github.com/owenmcgrath/todoist-projection/internal/config"
	dom "github.com/owenmcgrath/todoist-projection/internal/domain"
	"github.com/owenmcgrath/todoist-projection/internal/events"
	"github.com/owenmcgrath/todoist-projection/internal/repo"
	"github.com/owenmcgrath/todoist-projection/internal/service"
)

type staticFetcher struct{}

func (staticFetcher) Sync(context.Context) (dom.SyncData, error) {
	return dom.SyncData{
		SyncToken: "s",
		Projects:  []dom.Project{{ID: "p", Name: "Inbox", IsInboxProject: true}},
		Items:     []dom.Task{{ID: "t", ProjectID: "p", Priority: 1}},
	}, nil
}

func (staticFetcher) CompletedSince(context.Context, time.Time, int) ([]dom.Task, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *service.SnapshotService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.Config{App: config.AppConfig{Env: "test", Version: "1.2.3"}}
	snapshots := service.NewSnapshotService(staticFetcher{}, nil, nil, nil, service.SnapshotOptions{})
	deps := routeDeps{
		sessions:  auth.NewStore(rdb, time.Hour),
		auth:      service.NewAuthService("", auth.NewStore(rdb, time.Hour)),
		snapshots: snapshots,
		history:   repo.NopHistoryRepo{},
		broker:    events.NewBroker(4),
	}
	return newRouter(cfg, deps), snapshots
}

func TestRequestIDHeader(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set(requestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc" {
		t.Fatalf("request id = %q, want caller's", got)
	}
}

func TestHealthReportsSnapshot(t *testing.T) {
	r, snapshots := newTestRouter(t)

	get := func() map[string]any {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("health: %d", w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return body
	}

	if body := get(); body["ok"] != true || body["env"] != "test" {
		t.Fatalf("health = %v", body)
	}
	if _, ok := get()["fetchedAt"]; ok {
		t.Fatalf("no snapshot yet, fetchedAt should be absent")
	}
	if _, err := snapshots.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if body := get(); body["fetchedAt"] == nil || body["stale"] != false {
		t.Fatalf("health = %v", body)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks/refresh"},
		{http.MethodGet, "/api/refreshes"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodGet, "/api/events"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: code = %d", tc.method, tc.path, w.Code)
		}
	}
}

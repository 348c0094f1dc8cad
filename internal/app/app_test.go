package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-insights/internal/config"
	"github.com/riskibarqy/fantasy-insights/internal/domain/cohort"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
)

type stubSummaries struct{}

func (stubSummaries) Get(context.Context, int) (cohort.GameweekSummary, error) {
	return cohort.GameweekSummary{GameWeek: 1}, nil
}

func (stubSummaries) List(context.Context, int, int) ([]cohort.GameweekSummary, error) {
	return nil, nil
}

func TestNewHTTPServer(t *testing.T) {
	cfg := config.Config{HTTPAddr: ":0", ReadTimeout: time.Second, WriteTimeout: 2 * time.Second}

	srv, err := NewHTTPServer(cfg, stubSummaries{}, logging.NewNop())
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	if srv.ReadTimeout != time.Second || srv.WriteTimeout != 2*time.Second {
		t.Fatalf("unexpected timeouts: %s %s", srv.ReadTimeout, srv.WriteTimeout)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/gameweeks/1/summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	if _, err := NewHTTPServer(config.Config{}, stubSummaries{}, nil); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestNewContainer_RequiresDB(t *testing.T) {
	if _, err := NewContainer(context.Background(), config.Config{}, nil); err == nil {
		t.Fatalf("expected error without DB_URL")
	}
}

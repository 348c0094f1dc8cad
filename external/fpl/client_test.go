package fpl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/riskibarqy/fantasy-insights/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-insights/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
		MaxRetries: 1,
		Logger:     logging.NewNop(),
		Backoff:    func(int) time.Duration { return time.Millisecond },
	})
}

func TestFetchBootstrap_MapsTeamsPlayersAndCurrentGameweek(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bootstrap-static/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"events":[{"id":1,"is_current":false},{"id":2,"is_current":true}],
			"teams":[{"id":14,"name":"Liverpool","short_name":"LIV"}],
			"elements":[{"id":328,"team":14,"first_name":"Mohamed","second_name":"Salah","web_name":"M.Salah","total_points":211}]
		}`))
	})

	got, err := client.FetchBootstrap(context.Background())
	if err != nil {
		t.Fatalf("fetch bootstrap: %v", err)
	}
	if got.CurrentGameWeek != 2 {
		t.Fatalf("unexpected current gameweek: %d", got.CurrentGameWeek)
	}
	if len(got.Teams) != 1 || got.Teams[0].ShortName != "LIV" {
		t.Fatalf("unexpected teams: %+v", got.Teams)
	}
	if len(got.Players) != 1 || got.Players[0].FullName() != "Mohamed Salah" || got.Players[0].TeamID != 14 {
		t.Fatalf("unexpected players: %+v", got.Players)
	}
}

func TestFetchStandingsPage_SendsPageQuery(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/leagues-classic/314/standings/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("page_standings") != "2" {
			t.Errorf("unexpected page: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"standings":{"has_next":true,"page":2,"results":[
			{"entry":99,"player_name":"Ana","entry_name":"Ana FC","rank":51,"last_rank":60,"total":1400,"event_total":71}
		]}}`))
	})

	got, err := client.FetchStandingsPage(context.Background(), "314", 2)
	if err != nil {
		t.Fatalf("fetch standings: %v", err)
	}
	if !got.HasNext || len(got.Entries) != 1 {
		t.Fatalf("unexpected page: %+v", got)
	}
	entry := got.Entries[0]
	if entry.EntryID != 99 || entry.Rank != 51 || entry.EventPoints != 71 || entry.TotalPoints != 1400 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestFetchStandingsPage_RejectsInvalidPage(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Logger: logging.NewNop()})
	if _, err := client.FetchStandingsPage(context.Background(), "314", 0); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFetchManagerPicks_MapsHistoryAndChip(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entry/42/event/7/picks/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"active_chip":"bboost",
			"entry_history":{"points":64,"bank":15,"value":1012},
			"picks":[
				{"element":328,"position":1,"multiplier":2,"is_captain":true,"is_vice_captain":false},
				{"element":401,"position":12,"multiplier":1,"is_captain":false,"is_vice_captain":true}
			]
		}`))
	})

	got, err := client.FetchManagerPicks(context.Background(), 42, 7)
	if err != nil {
		t.Fatalf("fetch picks: %v", err)
	}
	if got.ActiveChip != "bboost" || got.Bank != 15 || got.TeamValue != 1012 || got.EventPoints != 64 {
		t.Fatalf("unexpected picks header: %+v", got)
	}
	if len(got.Picks) != 2 || !got.Picks[0].IsCaptain || !got.Picks[1].IsViceCaptain || got.Picks[0].Multiplier != 2 {
		t.Fatalf("unexpected picks: %+v", got.Picks)
	}
}

func TestFetchManagerPicks_NullChip(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"active_chip":null,"entry_history":{"points":50},"picks":[]}`))
	})

	got, err := client.FetchManagerPicks(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("fetch picks: %v", err)
	}
	if got.ActiveChip != "" {
		t.Fatalf("expected empty chip, got %q", got.ActiveChip)
	}
}

func TestFetchManagerTransfers_ParsesTime(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"element_in":10,"element_in_cost":55,"element_out":20,"element_out_cost":60,"event":7,"time":"2024-10-04T17:02:11.123456Z"},
			{"element_in":11,"element_in_cost":45,"element_out":21,"element_out_cost":45,"event":6,"time":""}
		]`))
	})

	got, err := client.FetchManagerTransfers(context.Background(), 42)
	if err != nil {
		t.Fatalf("fetch transfers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(got))
	}
	if got[0].GameWeek != 7 || got[0].PlayerInID != 10 || got[0].PlayerOutCost != 60 {
		t.Fatalf("unexpected transfer: %+v", got[0])
	}
	if got[0].Time == nil || got[0].Time.Year() != 2024 {
		t.Fatalf("expected parsed time, got %v", got[0].Time)
	}
	if got[1].Time != nil {
		t.Fatalf("expected nil time for empty value")
	}
}

func TestClient_MapsProviderErrors(t *testing.T) {
	t.Parallel()

	notFound := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	if _, err := notFound.FetchManagerTransfers(context.Background(), 1); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	unavailable := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if _, err := unavailable.FetchBootstrap(context.Background()); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestClient_FailingManagersDoNotTripBreakerForOthers(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var entryID int64
		if _, err := fmt.Sscanf(r.URL.Path, "/entry/%d/", &entryID); err != nil {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if entryID <= 5 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/transfers/") {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`{"active_chip":null,"entry_history":{"points":60},"picks":[]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{
		BaseURL:        srv.URL,
		Timeout:        2 * time.Second,
		CircuitBreaker: resilience.DefaultBreakerConfig(),
		Logger:         logging.NewNop(),
	})

	ctx := context.Background()
	for entryID := int64(1); entryID <= 20; entryID++ {
		_, picksErr := client.FetchManagerPicks(ctx, entryID, 7)
		_, transfersErr := client.FetchManagerTransfers(ctx, entryID)
		if entryID <= 5 {
			if !errors.Is(picksErr, usecase.ErrDependencyUnavailable) {
				t.Fatalf("entry %d: expected ErrDependencyUnavailable, got %v", entryID, picksErr)
			}
			continue
		}
		if picksErr != nil || transfersErr != nil {
			t.Fatalf("entry %d: picks err=%v transfers err=%v", entryID, picksErr, transfersErr)
		}
	}
}

// Package fpl is the client for the fantasy league API.
package fpl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-insights/external/httpjson"
	"github.com/riskibarqy/fantasy-insights/internal/domain/reference"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/riskibarqy/fantasy-insights/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-insights/internal/usecase"
)

const defaultBaseURL = "https://fantasy.premierleague.com/api"

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RequestDelay   time.Duration
	CircuitBreaker resilience.BreakerConfig
	Logger         *logging.Logger
	Backoff        func(attempt int) time.Duration
}

type Client struct {
	requester *httpjson.Requester
}

var _ usecase.LeagueProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		requester: httpjson.New(httpjson.Config{
			Name:         "fpl",
			HTTPClient:   cfg.HTTPClient,
			BaseURL:      baseURL,
			Timeout:      cfg.Timeout,
			MaxRetries:   cfg.MaxRetries,
			RequestDelay: cfg.RequestDelay,
			Circuit:      cfg.CircuitBreaker,
			Logger:       cfg.Logger,
			Backoff:      cfg.Backoff,
		}),
	}
}

func (c *Client) FetchBootstrap(ctx context.Context) (usecase.ExternalBootstrap, error) {
	var payload bootstrapResponse
	if err := c.requester.GetJSON(ctx, "bootstrap-static/", nil, &payload); err != nil {
		return usecase.ExternalBootstrap{}, mapError(err, "fetch bootstrap")
	}

	out := usecase.ExternalBootstrap{
		Teams:   make([]reference.Team, 0, len(payload.Teams)),
		Players: make([]reference.Player, 0, len(payload.Elements)),
	}
	for _, item := range payload.Teams {
		out.Teams = append(out.Teams, reference.Team{
			ID:        item.ID,
			Name:      strings.TrimSpace(item.Name),
			ShortName: strings.TrimSpace(item.ShortName),
		})
	}
	for _, item := range payload.Elements {
		out.Players = append(out.Players, reference.Player{
			ID:          item.ID,
			TeamID:      item.Team,
			FirstName:   strings.TrimSpace(item.FirstName),
			SecondName:  strings.TrimSpace(item.SecondName),
			WebName:     strings.TrimSpace(item.WebName),
			TotalPoints: item.TotalPoints,
		})
	}
	for _, event := range payload.Events {
		if event.IsCurrent {
			out.CurrentGameWeek = event.ID
			break
		}
	}
	return out, nil
}

func (c *Client) FetchStandingsPage(ctx context.Context, leagueID string, page int) (usecase.ExternalStandingsPage, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" || page < 1 {
		return usecase.ExternalStandingsPage{}, fmt.Errorf("%w: league id and page >= 1 are required", usecase.ErrInvalidInput)
	}

	var payload standingsResponse
	path := "leagues-classic/" + url.PathEscape(leagueID) + "/standings/"
	query := url.Values{"page_standings": {strconv.Itoa(page)}}
	if err := c.requester.GetJSON(ctx, path, query, &payload); err != nil {
		return usecase.ExternalStandingsPage{}, mapError(err, "fetch standings league=%s page=%d", leagueID, page)
	}

	out := usecase.ExternalStandingsPage{
		Page:    page,
		HasNext: payload.Standings.HasNext,
		Entries: make([]usecase.ExternalStandingEntry, 0, len(payload.Standings.Results)),
	}
	for _, item := range payload.Standings.Results {
		out.Entries = append(out.Entries, usecase.ExternalStandingEntry{
			EntryID:     item.Entry,
			PlayerName:  item.PlayerName,
			EntryName:   item.EntryName,
			Rank:        item.Rank,
			LastRank:    item.LastRank,
			TotalPoints: item.Total,
			EventPoints: item.EventTotal,
		})
	}
	return out, nil
}

// FetchManagerPicks and FetchManagerTransfers bypass the circuit breaker:
// a run of failing managers must not reject the requests for the others.
func (c *Client) FetchManagerPicks(ctx context.Context, entryID int64, gameWeek int) (usecase.ExternalPicks, error) {
	var payload picksResponse
	path := fmt.Sprintf("entry/%d/event/%d/picks/", entryID, gameWeek)
	if err := c.requester.GetJSON(ctx, path, nil, &payload, httpjson.WithoutBreaker()); err != nil {
		return usecase.ExternalPicks{}, mapError(err, "fetch picks entry=%d gameweek=%d", entryID, gameWeek)
	}

	out := usecase.ExternalPicks{
		Bank:        payload.EntryHistory.Bank,
		TeamValue:   payload.EntryHistory.Value,
		EventPoints: payload.EntryHistory.Points,
		Picks:       make([]usecase.ExternalPick, 0, len(payload.Picks)),
	}
	if payload.ActiveChip != nil {
		out.ActiveChip = strings.TrimSpace(*payload.ActiveChip)
	}
	for _, item := range payload.Picks {
		out.Picks = append(out.Picks, usecase.ExternalPick{
			PlayerID:      item.Element,
			Position:      item.Position,
			IsCaptain:     item.IsCaptain,
			IsViceCaptain: item.IsViceCaptain,
			Multiplier:    item.Multiplier,
		})
	}
	return out, nil
}

// FetchManagerTransfers returns the manager's whole season history; callers
// filter by gameweek.
func (c *Client) FetchManagerTransfers(ctx context.Context, entryID int64) ([]usecase.ExternalTransfer, error) {
	var payload []transferItem
	path := fmt.Sprintf("entry/%d/transfers/", entryID)
	if err := c.requester.GetJSON(ctx, path, nil, &payload, httpjson.WithoutBreaker()); err != nil {
		return nil, mapError(err, "fetch transfers entry=%d", entryID)
	}

	out := make([]usecase.ExternalTransfer, 0, len(payload))
	for _, item := range payload {
		out = append(out, usecase.ExternalTransfer{
			GameWeek:      item.Event,
			PlayerInID:    item.ElementIn,
			PlayerOutID:   item.ElementOut,
			PlayerInCost:  item.ElementInCost,
			PlayerOutCost: item.ElementOutCost,
			Time:          parseProviderTime(item.Time),
		})
	}
	return out, nil
}

func parseProviderTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil
	}
	parsed = parsed.UTC()
	return &parsed
}

func mapError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	switch {
	case httpjson.StatusCode(err) == http.StatusNotFound:
		return fmt.Errorf("%s: %w: %w", msg, usecase.ErrNotFound, err)
	case crerr.Is(err, resilience.ErrCircuitOpen), crerr.Is(err, httpjson.ErrTransient):
		return fmt.Errorf("%s: %w: %w", msg, usecase.ErrDependencyUnavailable, err)
	default:
		return crerr.Wrap(err, msg)
	}
}

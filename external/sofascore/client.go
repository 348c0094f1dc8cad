// Package sofascore is the client for the analytics provider, reached through
// its RapidAPI gateway.
package sofascore

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
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/riskibarqy/fantasy-insights/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-insights/internal/usecase"
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	APIHost        string
	SeasonID       int64
	TournamentID   int64
	Timeout        time.Duration
	MaxRetries     int
	RequestDelay   time.Duration
	CircuitBreaker resilience.BreakerConfig
	Logger         *logging.Logger
	Backoff        func(attempt int) time.Duration
}

type Client struct {
	requester    *httpjson.Requester
	seasonID     int64
	tournamentID int64
}

var _ usecase.AnalyticsProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	host := strings.TrimSpace(cfg.APIHost)
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" && host != "" {
		baseURL = "https://" + host + "/v1"
	}
	return &Client{
		requester: httpjson.New(httpjson.Config{
			Name:         "sofascore",
			HTTPClient:   cfg.HTTPClient,
			BaseURL:      baseURL,
			Timeout:      cfg.Timeout,
			MaxRetries:   cfg.MaxRetries,
			RequestDelay: cfg.RequestDelay,
			Headers: map[string]string{
				"x-rapidapi-key":  strings.TrimSpace(cfg.APIKey),
				"x-rapidapi-host": host,
			},
			Circuit: cfg.CircuitBreaker,
			Logger:  cfg.Logger,
			Backoff: cfg.Backoff,
		}),
		seasonID:     cfg.SeasonID,
		tournamentID: cfg.TournamentID,
	}
}

type teamsStatisticsResponse struct {
	Data struct {
		AvgRating []struct {
			Team teamItem `json:"team"`
		} `json:"avgRating"`
	} `json:"data"`
}

type teamItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type squadResponse struct {
	Data struct {
		Players []struct {
			Player playerItem `json:"player"`
		} `json:"players"`
	} `json:"data"`
}

type playerItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

// FetchSeasonTeams lists the clubs of the configured season. The provider has
// no plain team listing, so the team rating table is used and deduplicated.
func (c *Client) FetchSeasonTeams(ctx context.Context) ([]usecase.ExternalAnalyticsTeam, error) {
	query := url.Values{
		"seasons_id":              {strconv.FormatInt(c.seasonID, 10)},
		"seasons_statistics_type": {"overall"},
		"unique_tournament_id":    {strconv.FormatInt(c.tournamentID, 10)},
	}

	var payload teamsStatisticsResponse
	if err := c.requester.GetJSON(ctx, "seasons/teams-statistics/result", query, &payload); err != nil {
		return nil, mapError(err, "fetch season teams season=%d", c.seasonID)
	}

	seen := make(map[int64]struct{}, len(payload.Data.AvgRating))
	out := make([]usecase.ExternalAnalyticsTeam, 0, len(payload.Data.AvgRating))
	for _, row := range payload.Data.AvgRating {
		if row.Team.ID <= 0 {
			continue
		}
		if _, ok := seen[row.Team.ID]; ok {
			continue
		}
		seen[row.Team.ID] = struct{}{}
		out = append(out, usecase.ExternalAnalyticsTeam{
			ID:        row.Team.ID,
			Name:      strings.TrimSpace(row.Team.Name),
			ShortName: strings.TrimSpace(row.Team.ShortName),
		})
	}
	return out, nil
}

// FetchTeamSquad bypasses the circuit breaker so one failing squad does not
// reject the other teams of a mapping run.
func (c *Client) FetchTeamSquad(ctx context.Context, teamID int64) ([]usecase.ExternalAnalyticsPlayer, error) {
	var payload squadResponse
	query := url.Values{"team_id": {strconv.FormatInt(teamID, 10)}}
	if err := c.requester.GetJSON(ctx, "teams/players", query, &payload, httpjson.WithoutBreaker()); err != nil {
		return nil, mapError(err, "fetch squad team=%d", teamID)
	}

	out := make([]usecase.ExternalAnalyticsPlayer, 0, len(payload.Data.Players))
	for _, row := range payload.Data.Players {
		if row.Player.ID <= 0 {
			continue
		}
		out = append(out, usecase.ExternalAnalyticsPlayer{
			ID:        row.Player.ID,
			TeamID:    teamID,
			Name:      strings.TrimSpace(row.Player.Name),
			ShortName: strings.TrimSpace(row.Player.ShortName),
		})
	}
	return out, nil
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

package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/fantasy-insights/internal/domain/identity"
	"github.com/riskibarqy/fantasy-insights/internal/domain/reference"
	"github.com/riskibarqy/fantasy-insights/internal/matching"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
)

const (
	ReviewScoreFloor     = 50
	ReviewCandidateLimit = 5
)

type UnmappedReport struct {
	Players []UnmappedPlayer `json:"players"`
}

// UnmappedPlayer is a scoring league player without an identity mapping.
type UnmappedPlayer struct {
	LeaguePlayerID  int64                `json:"league_player_id"`
	FullName        string               `json:"full_name"`
	WebName         string               `json:"web_name"`
	LeagueTeamID    int64                `json:"league_team_id"`
	TeamName        string               `json:"team_name"`
	TotalPoints     int                  `json:"total_points"`
	AnalyticsTeamID int64                `json:"analytics_team_id,omitempty"`
	Candidates      []AnalyticsCandidate `json:"candidates"`
}

type AnalyticsCandidate struct {
	AnalyticsPlayerID int64  `json:"analytics_player_id"`
	Name              string `json:"name"`
	ShortName         string `json:"short_name"`
	Score             int    `json:"score"`
	AlreadyMapped     bool   `json:"already_mapped"`
}

// MappingReportService lists league players that score points but have no
// analytics mapping, together with the closest analytics squad members.
type MappingReportService struct {
	analytics AnalyticsProvider
	reference reference.Repository
	identity  identity.Repository
	logger    *logging.Logger
}

func NewMappingReportService(
	analytics AnalyticsProvider,
	referenceRepo reference.Repository,
	identityRepo identity.Repository,
	logger *logging.Logger,
) *MappingReportService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MappingReportService{
		analytics: analytics,
		reference: referenceRepo,
		identity:  identityRepo,
		logger:    logger,
	}
}

func (s *MappingReportService) Build(ctx context.Context) (UnmappedReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MappingReportService.Build")
	defer span.End()

	players, err := s.reference.ListPlayers(ctx)
	if err != nil {
		return UnmappedReport{}, fmt.Errorf("list league players: %w", err)
	}
	teams, err := s.reference.ListTeams(ctx)
	if err != nil {
		return UnmappedReport{}, fmt.Errorf("list league teams: %w", err)
	}
	teamMappings, err := s.identity.ListTeamMappings(ctx)
	if err != nil {
		return UnmappedReport{}, fmt.Errorf("list team mappings: %w", err)
	}
	playerMappings, err := s.identity.ListPlayerMappings(ctx)
	if err != nil {
		return UnmappedReport{}, fmt.Errorf("list player mappings: %w", err)
	}

	teamNames := make(map[int64]string, len(teams))
	for _, item := range teams {
		teamNames[item.ID] = item.Name
	}
	analyticsTeamByLeague := s.analyticsTeamsByLeague(ctx, teamMappings)
	mappedLeague := make(map[int64]struct{}, len(playerMappings))
	mappedAnalytics := make(map[int64]struct{}, len(playerMappings))
	for _, item := range playerMappings {
		mappedLeague[item.LeaguePlayerID] = struct{}{}
		mappedAnalytics[item.AnalyticsPlayerID] = struct{}{}
	}

	report := UnmappedReport{Players: make([]UnmappedPlayer, 0)}
	squads := make(map[int64][]ExternalAnalyticsPlayer)
	for _, player := range players {
		if player.TotalPoints <= 0 {
			continue
		}
		if _, ok := mappedLeague[player.ID]; ok {
			continue
		}

		row := UnmappedPlayer{
			LeaguePlayerID: player.ID,
			FullName:       player.FullName(),
			WebName:        player.WebName,
			LeagueTeamID:   player.TeamID,
			TeamName:       teamNames[player.TeamID],
			TotalPoints:    player.TotalPoints,
			Candidates:     make([]AnalyticsCandidate, 0),
		}

		analyticsTeamID, ok := analyticsTeamByLeague[player.TeamID]
		if ok {
			row.AnalyticsTeamID = analyticsTeamID
			squad, cached := squads[analyticsTeamID]
			if !cached {
				squad, err = s.analytics.FetchTeamSquad(ctx, analyticsTeamID)
				if err != nil {
					s.logger.WarnContext(ctx, "analytics squad fetch failed for report",
						"analytics_team_id", analyticsTeamID,
						"error", err,
					)
					squad = nil
				}
				squads[analyticsTeamID] = squad
			}
			row.Candidates = reviewCandidates(player, squad, mappedAnalytics)
		}
		report.Players = append(report.Players, row)
	}

	sort.SliceStable(report.Players, func(i, j int) bool {
		if report.Players[i].TotalPoints != report.Players[j].TotalPoints {
			return report.Players[i].TotalPoints > report.Players[j].TotalPoints
		}
		return report.Players[i].LeaguePlayerID < report.Players[j].LeaguePlayerID
	})
	return report, nil
}

func reviewCandidates(player reference.Player, squad []ExternalAnalyticsPlayer, mapped map[int64]struct{}) []AnalyticsCandidate {
	target := playerCandidate(player)
	out := make([]AnalyticsCandidate, 0, ReviewCandidateLimit)
	for _, athlete := range squad {
		score := matching.ReviewScore(matching.Query{Name: athlete.Name, ShortName: athlete.ShortName}, target)
		if score < ReviewScoreFloor {
			continue
		}
		_, already := mapped[athlete.ID]
		out = append(out, AnalyticsCandidate{
			AnalyticsPlayerID: athlete.ID,
			Name:              athlete.Name,
			ShortName:         athlete.ShortName,
			Score:             score,
			AlreadyMapped:     already,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].AnalyticsPlayerID < out[j].AnalyticsPlayerID
	})
	if len(out) > ReviewCandidateLimit {
		out = out[:ReviewCandidateLimit]
	}
	return out
}

// analyticsTeamsByLeague inverts the team mapping. When two analytics teams
// point at one league team, the lowest analytics id wins.
func (s *MappingReportService) analyticsTeamsByLeague(ctx context.Context, mappings []identity.TeamMapping) map[int64]int64 {
	out := make(map[int64]int64, len(mappings))
	for _, item := range mappings {
		current, ok := out[item.LeagueTeamID]
		if !ok {
			out[item.LeagueTeamID] = item.AnalyticsTeamID
			continue
		}
		if item.AnalyticsTeamID == current {
			continue
		}
		kept := min(current, item.AnalyticsTeamID)
		s.logger.WarnContext(ctx, "league team mapped from several analytics teams",
			"league_team_id", item.LeagueTeamID,
			"kept_analytics_team_id", kept,
			"dropped_analytics_team_id", max(current, item.AnalyticsTeamID),
		)
		out[item.LeagueTeamID] = kept
	}
	return out
}

// Render formats the report for a terminal.
func (r UnmappedReport) Render() string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = fmt.Fprintf(buf, "%d unmapped league players with points\n", len(r.Players))
	for _, player := range r.Players {
		_, _ = fmt.Fprintf(buf, "\n%s (%s) id=%d team=%s points=%d\n",
			player.FullName, player.WebName, player.LeaguePlayerID, player.TeamName, player.TotalPoints)
		if player.AnalyticsTeamID == 0 {
			_, _ = buf.WriteString("    team has no analytics mapping\n")
			continue
		}
		if len(player.Candidates) == 0 {
			_, _ = fmt.Fprintf(buf, "    no candidate scored %d or more\n", ReviewScoreFloor)
			continue
		}
		for _, candidate := range player.Candidates {
			status := "free"
			if candidate.AlreadyMapped {
				status = "mapped"
			}
			_, _ = fmt.Fprintf(buf, "    %3d  %-40s id=%-10d short=%s [%s]\n",
				candidate.Score, candidate.Name, candidate.AnalyticsPlayerID, candidate.ShortName, status)
		}
	}
	return buf.String()
}

package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/riskibarqy/fantasy-insights/internal/domain/identity"
	"github.com/riskibarqy/fantasy-insights/internal/domain/reference"
	"github.com/riskibarqy/fantasy-insights/internal/matching"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
)

type MappingConfig struct {
	TeamThreshold   int
	PlayerThreshold int
	SquadWorkers    int
	Overrides       MappingOverrides
	ExportDir       string
}

func (c MappingConfig) normalized() MappingConfig {
	if c.TeamThreshold <= 0 {
		c.TeamThreshold = matching.DefaultTeamThreshold
	}
	if c.PlayerThreshold <= 0 {
		c.PlayerThreshold = matching.DefaultPlayerThreshold
	}
	if c.SquadWorkers < 1 {
		c.SquadWorkers = 1
	}
	return c
}

type TeamMappingResult struct {
	AnalyticsTeams int               `json:"analytics_teams"`
	Mapped         int               `json:"mapped"`
	Overridden     int               `json:"overridden"`
	Unmatched      []UnmatchedEntity `json:"unmatched"`
	ExportPath     string            `json:"export_path,omitempty"`
}

// TeamMappingService matches every analytics team against every league team.
type TeamMappingService struct {
	analytics AnalyticsProvider
	reference reference.Repository
	identity  identity.Repository
	cfg       MappingConfig
	logger    *logging.Logger
}

func NewTeamMappingService(
	analytics AnalyticsProvider,
	referenceRepo reference.Repository,
	identityRepo identity.Repository,
	cfg MappingConfig,
	logger *logging.Logger,
) *TeamMappingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamMappingService{
		analytics: analytics,
		reference: referenceRepo,
		identity:  identityRepo,
		cfg:       cfg.normalized(),
		logger:    logger,
	}
}

func (s *TeamMappingService) Build(ctx context.Context) (TeamMappingResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamMappingService.Build")
	defer span.End()

	leagueTeams, err := s.reference.ListTeams(ctx)
	if err != nil {
		return TeamMappingResult{}, fmt.Errorf("list league teams: %w", err)
	}
	if len(leagueTeams) == 0 {
		return TeamMappingResult{}, fmt.Errorf("%w: no league teams stored, run reference sync first", ErrNotFound)
	}

	analyticsTeams, err := s.analytics.FetchSeasonTeams(ctx)
	if err != nil {
		return TeamMappingResult{}, fmt.Errorf("fetch analytics teams: %w", err)
	}

	byID := make(map[int64]reference.Team, len(leagueTeams))
	candidates := make([]matching.Candidate, 0, len(leagueTeams))
	for _, item := range leagueTeams {
		byID[item.ID] = item
		candidates = append(candidates, matching.Candidate{
			ID:       item.ID,
			FullName: item.Name,
			Aliases:  []string{item.Name, item.ShortName},
		})
	}

	result := TeamMappingResult{
		AnalyticsTeams: len(analyticsTeams),
		Unmatched:      make([]UnmatchedEntity, 0),
	}
	mappings := make([]identity.TeamMapping, 0, len(analyticsTeams))
	for _, team := range analyticsTeams {
		if leagueID, ok := s.cfg.Overrides.Teams[team.ID]; ok {
			if target, known := byID[leagueID]; known {
				mappings = append(mappings, identity.TeamMapping{
					AnalyticsTeamID: team.ID,
					LeagueTeamID:    target.ID,
					AnalyticsName:   team.Name,
					LeagueName:      target.Name,
					MatchScore:      100,
					Source:          identity.SourceOverride,
				})
				result.Overridden++
				continue
			}
			s.logger.WarnContext(ctx, "team override points at unknown league team, ignoring",
				"analytics_team_id", team.ID,
				"league_team_id", leagueID,
			)
		}

		match := matching.Match(matching.Query{Name: team.Name, ShortName: team.ShortName}, candidates, s.cfg.TeamThreshold)
		if !match.Matched {
			miss := UnmatchedEntity{AnalyticsID: team.ID, AnalyticsName: team.Name, BestScore: match.Score}
			if match.Found {
				miss.BestLeagueID = match.Candidate.ID
				miss.BestLeagueName = match.Candidate.FullName
			}
			result.Unmatched = append(result.Unmatched, miss)
			s.logger.WarnContext(ctx, "analytics team unmatched",
				"analytics_team_id", team.ID,
				"name", team.Name,
				"best_candidate", miss.BestLeagueName,
				"best_score", miss.BestScore,
			)
			continue
		}

		mappings = append(mappings, identity.TeamMapping{
			AnalyticsTeamID: team.ID,
			LeagueTeamID:    match.Candidate.ID,
			AnalyticsName:   team.Name,
			LeagueName:      match.Candidate.FullName,
			MatchScore:      match.Score,
			Source:          identity.SourceFuzzy,
		})
	}

	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].AnalyticsTeamID < mappings[j].AnalyticsTeamID
	})
	if err := s.identity.UpsertTeamMappings(ctx, mappings); err != nil {
		return TeamMappingResult{}, fmt.Errorf("upsert team mappings: %w", err)
	}
	result.Mapped = len(mappings)

	exported := make(map[string]identity.TeamMapping, len(mappings))
	for _, item := range mappings {
		exported[strconv.FormatInt(item.AnalyticsTeamID, 10)] = item
	}
	if result.ExportPath, err = writeMappingExport(s.cfg.ExportDir, TeamMappingExportFile, exported); err != nil {
		return TeamMappingResult{}, err
	}

	s.logger.InfoContext(ctx, "team mapping built",
		"analytics_teams", result.AnalyticsTeams,
		"mapped", result.Mapped,
		"overridden", result.Overridden,
		"unmatched", len(result.Unmatched),
	)
	return result, nil
}

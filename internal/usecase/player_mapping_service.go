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
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/iter"
)

type PlayerMappingResult struct {
	TeamPairs        int               `json:"team_pairs"`
	FailedTeams      []int64           `json:"failed_teams"`
	AnalyticsPlayers int               `json:"analytics_players"`
	Mapped           int               `json:"mapped"`
	Overridden       int               `json:"overridden"`
	SuccessRate      float64           `json:"success_rate"`
	Unmatched        []UnmatchedEntity `json:"unmatched"`
	ExportPath       string            `json:"export_path,omitempty"`
}

// PlayerMappingService matches players within each mapped team pair. A player
// is never matched across team boundaries.
type PlayerMappingService struct {
	analytics AnalyticsProvider
	reference reference.Repository
	identity  identity.Repository
	cfg       MappingConfig
	logger    *logging.Logger
}

func NewPlayerMappingService(
	analytics AnalyticsProvider,
	referenceRepo reference.Repository,
	identityRepo identity.Repository,
	cfg MappingConfig,
	logger *logging.Logger,
) *PlayerMappingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerMappingService{
		analytics: analytics,
		reference: referenceRepo,
		identity:  identityRepo,
		cfg:       cfg.normalized(),
		logger:    logger,
	}
}

type teamPairOutcome struct {
	pair       identity.TeamMapping
	squadSize  int
	mappings   []identity.PlayerMapping
	unmatched  []UnmatchedEntity
	overridden int
	err        error
}

func (s *PlayerMappingService) Build(ctx context.Context) (PlayerMappingResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerMappingService.Build")
	defer span.End()

	pairs, err := s.identity.ListTeamMappings(ctx)
	if err != nil {
		return PlayerMappingResult{}, fmt.Errorf("list team mappings: %w", err)
	}
	if len(pairs) == 0 {
		return PlayerMappingResult{}, fmt.Errorf("%w: no team mappings stored, build the team mapping first", ErrNotFound)
	}

	leaguePlayers, err := s.reference.ListPlayers(ctx)
	if err != nil {
		return PlayerMappingResult{}, fmt.Errorf("list league players: %w", err)
	}
	playersByTeam := make(map[int64][]reference.Player)
	playersByID := make(map[int64]reference.Player, len(leaguePlayers))
	for _, item := range leaguePlayers {
		playersByTeam[item.TeamID] = append(playersByTeam[item.TeamID], item)
		playersByID[item.ID] = item
	}

	// Squads are fetched concurrently; the provider client enforces its own
	// request spacing. Output order follows pairs.
	mapper := iter.Mapper[identity.TeamMapping, teamPairOutcome]{MaxGoroutines: s.cfg.SquadWorkers}
	outcomes := mapper.Map(pairs, func(pair *identity.TeamMapping) teamPairOutcome {
		return s.matchTeamPair(ctx, *pair, playersByTeam[pair.LeagueTeamID], playersByID)
	})

	result := PlayerMappingResult{
		TeamPairs:   len(pairs),
		FailedTeams: make([]int64, 0),
		Unmatched:   make([]UnmatchedEntity, 0),
	}
	mappings := make([]identity.PlayerMapping, 0)
	for _, outcome := range outcomes {
		if outcome.err != nil {
			result.FailedTeams = append(result.FailedTeams, outcome.pair.AnalyticsTeamID)
			s.logger.WarnContext(ctx, "analytics squad fetch failed, skipping team",
				"analytics_team_id", outcome.pair.AnalyticsTeamID,
				"league_team_id", outcome.pair.LeagueTeamID,
				"error", outcome.err,
			)
			continue
		}
		result.AnalyticsPlayers += outcome.squadSize
		result.Overridden += outcome.overridden
		result.Unmatched = append(result.Unmatched, outcome.unmatched...)
		mappings = append(mappings, outcome.mappings...)
	}
	if len(result.FailedTeams) == len(pairs) {
		return PlayerMappingResult{}, fmt.Errorf("%w: every analytics squad fetch failed", ErrDependencyUnavailable)
	}

	sort.SliceStable(mappings, func(i, j int) bool {
		return mappings[i].AnalyticsPlayerID < mappings[j].AnalyticsPlayerID
	})
	mappings = dedupePlayerMappings(mappings)
	if err := s.identity.UpsertPlayerMappings(ctx, mappings); err != nil {
		return PlayerMappingResult{}, fmt.Errorf("upsert player mappings: %w", err)
	}
	result.Mapped = len(mappings)
	result.SuccessRate = successRate(result.Mapped, result.AnalyticsPlayers)

	exported := make(map[string]identity.PlayerMapping, len(mappings))
	for _, item := range mappings {
		exported[strconv.FormatInt(item.AnalyticsPlayerID, 10)] = item
	}
	if result.ExportPath, err = writeMappingExport(s.cfg.ExportDir, PlayerMappingExportFile, exported); err != nil {
		return PlayerMappingResult{}, err
	}

	s.logger.InfoContext(ctx, "player mapping built",
		"team_pairs", result.TeamPairs,
		"failed_teams", len(result.FailedTeams),
		"analytics_players", result.AnalyticsPlayers,
		"mapped", result.Mapped,
		"unmatched", len(result.Unmatched),
		"success_rate", result.SuccessRate,
	)
	return result, nil
}

func (s *PlayerMappingService) matchTeamPair(
	ctx context.Context,
	pair identity.TeamMapping,
	leaguePlayers []reference.Player,
	playersByID map[int64]reference.Player,
) teamPairOutcome {
	outcome := teamPairOutcome{pair: pair}

	squad, err := s.analytics.FetchTeamSquad(ctx, pair.AnalyticsTeamID)
	if err != nil {
		outcome.err = err
		return outcome
	}
	outcome.squadSize = len(squad)

	candidates := make([]matching.Candidate, 0, len(leaguePlayers))
	for _, item := range leaguePlayers {
		candidates = append(candidates, playerCandidate(item))
	}

	for _, athlete := range squad {
		if leagueID, ok := s.cfg.Overrides.Players[athlete.ID]; ok {
			target, known := playersByID[leagueID]
			if known && target.TeamID == pair.LeagueTeamID {
				outcome.mappings = append(outcome.mappings, newPlayerMapping(pair, athlete, target, 100, identity.SourceOverride))
				outcome.overridden++
				continue
			}
			s.logger.WarnContext(ctx, "player override does not point at a player of the mapped team, ignoring",
				"analytics_player_id", athlete.ID,
				"league_player_id", leagueID,
				"league_team_id", pair.LeagueTeamID,
			)
		}

		match := matching.Match(matching.Query{Name: athlete.Name, ShortName: athlete.ShortName}, candidates, s.cfg.PlayerThreshold)
		if !match.Matched {
			miss := UnmatchedEntity{
				AnalyticsID:     athlete.ID,
				AnalyticsName:   athlete.Name,
				AnalyticsTeamID: pair.AnalyticsTeamID,
				BestScore:       match.Score,
			}
			if match.Found {
				miss.BestLeagueID = match.Candidate.ID
				miss.BestLeagueName = match.Candidate.FullName
			}
			outcome.unmatched = append(outcome.unmatched, miss)
			s.logger.DebugContext(ctx, "analytics player unmatched",
				"analytics_player_id", athlete.ID,
				"name", athlete.Name,
				"best_candidate", miss.BestLeagueName,
				"best_score", miss.BestScore,
			)
			continue
		}

		outcome.mappings = append(outcome.mappings, newPlayerMapping(pair, athlete, playersByID[match.Candidate.ID], match.Score, identity.SourceFuzzy))
	}
	return outcome
}

func playerCandidate(p reference.Player) matching.Candidate {
	return matching.Candidate{
		ID:       p.ID,
		FullName: p.FullName(),
		Aliases:  []string{p.SecondName, p.WebName},
	}
}

func newPlayerMapping(pair identity.TeamMapping, athlete ExternalAnalyticsPlayer, target reference.Player, score int, source string) identity.PlayerMapping {
	return identity.PlayerMapping{
		AnalyticsPlayerID: athlete.ID,
		LeaguePlayerID:    target.ID,
		AnalyticsName:     athlete.Name,
		LeagueFullName:    target.FullName(),
		LeagueWebName:     target.WebName,
		LeagueTeamID:      pair.LeagueTeamID,
		AnalyticsTeamID:   pair.AnalyticsTeamID,
		MatchScore:        score,
		Source:            source,
	}
}

// dedupePlayerMappings keeps the first row per analytics id. A player listed
// in two squads (mid-season move) keeps the earlier team pair. Input must be
// sorted by analytics id.
func dedupePlayerMappings(in []identity.PlayerMapping) []identity.PlayerMapping {
	out := make([]identity.PlayerMapping, 0, len(in))
	for _, item := range in {
		if n := len(out); n > 0 && out[n-1].AnalyticsPlayerID == item.AnalyticsPlayerID {
			continue
		}
		out = append(out, item)
	}
	return out
}

func successRate(mapped, total int) float64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(mapped)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1).
		InexactFloat64()
}

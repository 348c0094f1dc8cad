package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fantasy-insights/internal/domain/reference"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
)

type ReferenceSyncResult struct {
	TeamCount       int `json:"team_count"`
	PlayerCount     int `json:"player_count"`
	CurrentGameWeek int `json:"current_game_week"`
}

// ReferenceSyncService keeps the local league team and player tables in step
// with the league provider.
type ReferenceSyncService struct {
	league LeagueProvider
	repo   reference.Repository
	logger *logging.Logger
}

func NewReferenceSyncService(league LeagueProvider, repo reference.Repository, logger *logging.Logger) *ReferenceSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReferenceSyncService{
		league: league,
		repo:   repo,
		logger: logger,
	}
}

func (s *ReferenceSyncService) Sync(ctx context.Context) (ReferenceSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceSyncService.Sync")
	defer span.End()

	bootstrap, err := s.league.FetchBootstrap(ctx)
	if err != nil {
		return ReferenceSyncResult{}, fmt.Errorf("fetch bootstrap: %w", err)
	}

	// Players reference teams, so teams go first.
	if err := s.repo.UpsertTeams(ctx, bootstrap.Teams); err != nil {
		return ReferenceSyncResult{}, fmt.Errorf("upsert league teams: %w", err)
	}
	if err := s.repo.UpsertPlayers(ctx, bootstrap.Players); err != nil {
		return ReferenceSyncResult{}, fmt.Errorf("upsert league players: %w", err)
	}

	result := ReferenceSyncResult{
		TeamCount:       len(bootstrap.Teams),
		PlayerCount:     len(bootstrap.Players),
		CurrentGameWeek: bootstrap.CurrentGameWeek,
	}
	s.logger.InfoContext(ctx, "reference data synced",
		"teams", result.TeamCount,
		"players", result.PlayerCount,
		"current_game_week", result.CurrentGameWeek,
	)
	return result, nil
}

// CurrentGameWeek asks the league provider which gameweek is in progress.
func (s *ReferenceSyncService) CurrentGameWeek(ctx context.Context) (int, error) {
	bootstrap, err := s.league.FetchBootstrap(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch bootstrap: %w", err)
	}
	if bootstrap.CurrentGameWeek <= 0 {
		return 0, fmt.Errorf("%w: no gameweek is marked current", ErrNotFound)
	}
	return bootstrap.CurrentGameWeek, nil
}

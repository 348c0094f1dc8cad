package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/riskibarqy/fantasy-insights/internal/domain/cohort"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
)

// ManagerFetcher is satisfied by *SnapshotFetcher.
type ManagerFetcher interface {
	Fetch(ctx context.Context, input FetchInput) (FetchResult, error)
	InvalidateKnownPlayers()
}

type PipelineConfig struct {
	LeagueID   string
	CohortSize int
	Workers    int
}

type GameweekInput struct {
	GameWeek   int    `validate:"gte=1,lte=38"`
	LeagueID   string `validate:"required"`
	CohortSize int    `validate:"gte=1,lte=10000"`
	Workers    int    `validate:"gte=1,lte=64"`
}

type RangeInput struct {
	FromGameWeek int    `validate:"gte=1,lte=38"`
	ToGameWeek   int    `validate:"gte=1,lte=38,gtefield=FromGameWeek"`
	LeagueID     string `validate:"required"`
	CohortSize   int    `validate:"gte=1,lte=10000"`
	Workers      int    `validate:"gte=1,lte=64"`
}

// GameweekRun reports one committed pass.
type GameweekRun struct {
	RunID       string                 `json:"run_id"`
	GameWeek    int                    `json:"game_week"`
	Managers    int                    `json:"managers"`
	FailedCount int                    `json:"failed_count"`
	Duration    time.Duration          `json:"duration"`
	Summary     cohort.GameweekSummary `json:"summary"`
}

type GameweekOutcome struct {
	GameWeek int
	Run      *GameweekRun
	Err      error
}

type RangeResult struct {
	Outcomes []GameweekOutcome
}

func (r RangeResult) SucceededCount() int {
	count := 0
	for _, item := range r.Outcomes {
		if item.Err == nil {
			count++
		}
	}
	return count
}

// Err joins every gameweek-level failure, or returns nil.
func (r RangeResult) Err() error {
	var errs []error
	for _, item := range r.Outcomes {
		if item.Err != nil {
			errs = append(errs, fmt.Errorf("game week %d: %w", item.GameWeek, item.Err))
		}
	}
	return errors.Join(errs...)
}

// PipelineService runs FETCH_STANDINGS, the per-manager fetch, REDUCE and
// PERSIST_SUMMARY for a gameweek. All rows of one gameweek are committed
// together, so a failed pass leaves the previous summary in place.
type PipelineService struct {
	fetcher  ManagerFetcher
	repo     cohort.Repository
	cfg      PipelineConfig
	validate *validator.Validate
	logger   *logging.Logger
	now      func() time.Time
	newRunID func() string
	onCommit []func(gameWeek int)
}

func NewPipelineService(fetcher ManagerFetcher, repo cohort.Repository, cfg PipelineConfig, logger *logging.Logger) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.LeagueID) == "" {
		cfg.LeagueID = "314"
	}
	if cfg.CohortSize <= 0 {
		cfg.CohortSize = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &PipelineService{
		fetcher:  fetcher,
		repo:     repo,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// OnCommit registers fn to run after a gameweek batch commits.
func (s *PipelineService) OnCommit(fn func(gameWeek int)) {
	if fn != nil {
		s.onCommit = append(s.onCommit, fn)
	}
}

// ReferenceChanged drops the cached local player table so the next pass sees
// players added by a reference sync.
func (s *PipelineService) ReferenceChanged() {
	s.fetcher.InvalidateKnownPlayers()
}

// GameweekInput builds an input from the configured defaults.
func (s *PipelineService) GameweekInput(gameWeek int) GameweekInput {
	return GameweekInput{
		GameWeek:   gameWeek,
		LeagueID:   s.cfg.LeagueID,
		CohortSize: s.cfg.CohortSize,
		Workers:    s.cfg.Workers,
	}
}

func (s *PipelineService) RunGameweek(ctx context.Context, input GameweekInput) (GameweekRun, error) {
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if err := s.validate.StructCtx(ctx, input); err != nil {
		return GameweekRun{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.RunGameweek")
	defer span.End()

	started := s.now()
	runID := s.newRunID()
	logger := s.logger.With("run_id", runID, "game_week", input.GameWeek)
	logger.InfoContext(ctx, "gameweek pass started",
		"league_id", input.LeagueID,
		"cohort_size", input.CohortSize,
		"workers", input.Workers,
	)

	fetched, err := s.fetcher.Fetch(ctx, FetchInput{
		GameWeek:   input.GameWeek,
		LeagueID:   input.LeagueID,
		CohortSize: input.CohortSize,
		Workers:    input.Workers,
	})
	if err != nil {
		logger.ErrorContext(ctx, "gameweek pass aborted while fetching", "error", err)
		return GameweekRun{}, fmt.Errorf("fetch game week %d: %w", input.GameWeek, err)
	}

	records := fetched.Records()
	if len(records) == 0 {
		logger.ErrorContext(ctx, "gameweek pass aborted, every manager fetch failed", "failed", fetched.FailedCount())
		return GameweekRun{}, fmt.Errorf("%w: game week %d: all %d manager fetches failed", ErrDependencyUnavailable, input.GameWeek, fetched.FailedCount())
	}

	summary := cohort.Reduce(input.GameWeek, records)
	summary.Meta = cohort.SummaryMeta{
		RunID:       runID,
		LeagueID:    input.LeagueID,
		CohortSize:  input.CohortSize,
		FailedCount: fetched.FailedCount(),
		SyncedAt:    s.now().UTC(),
	}

	batch := cohort.GameweekBatch{
		GameWeek: input.GameWeek,
		Managers: records,
		Summary:  summary,
	}
	if err := s.repo.SaveGameweek(ctx, batch); err != nil {
		logger.ErrorContext(ctx, "gameweek pass aborted while persisting", "error", err)
		return GameweekRun{}, fmt.Errorf("persist game week %d: %w", input.GameWeek, err)
	}
	for _, fn := range s.onCommit {
		fn(input.GameWeek)
	}

	run := GameweekRun{
		RunID:       runID,
		GameWeek:    input.GameWeek,
		Managers:    len(records),
		FailedCount: summary.Meta.FailedCount,
		Duration:    s.now().Sub(started),
		Summary:     summary,
	}
	logger.InfoContext(ctx, "gameweek pass committed",
		"managers", run.Managers,
		"failed", run.FailedCount,
		"average_points", summary.AveragePoints,
		"duration", run.Duration,
	)
	return run, nil
}

// RunRange runs every gameweek in [from, to]. A failed gameweek is recorded
// and the next one still runs; only cancellation stops the loop early.
func (s *PipelineService) RunRange(ctx context.Context, input RangeInput) (RangeResult, error) {
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if err := s.validate.StructCtx(ctx, input); err != nil {
		return RangeResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	result := RangeResult{Outcomes: make([]GameweekOutcome, 0, input.ToGameWeek-input.FromGameWeek+1)}
	for gameWeek := input.FromGameWeek; gameWeek <= input.ToGameWeek; gameWeek++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		run, err := s.RunGameweek(ctx, GameweekInput{
			GameWeek:   gameWeek,
			LeagueID:   input.LeagueID,
			CohortSize: input.CohortSize,
			Workers:    input.Workers,
		})
		outcome := GameweekOutcome{GameWeek: gameWeek, Err: err}
		if err == nil {
			outcome.Run = &run
		} else {
			s.logger.WarnContext(ctx, "gameweek failed, continuing with range", "game_week", gameWeek, "error", err)
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	s.logger.InfoContext(ctx, "gameweek range finished",
		"from", input.FromGameWeek,
		"to", input.ToGameWeek,
		"succeeded", result.SucceededCount(),
		"failed", len(result.Outcomes)-result.SucceededCount(),
	)
	return result, nil
}

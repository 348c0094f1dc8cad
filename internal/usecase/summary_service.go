package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/fantasy-insights/internal/domain/cohort"
	"github.com/riskibarqy/fantasy-insights/internal/platform/cache"
)

const maxSummaryRange = 38

// SummaryService serves the last committed gameweek summaries.
type SummaryService struct {
	repo   cohort.Repository
	single *cache.Store[cohort.GameweekSummary]
	ranges *cache.Store[[]cohort.GameweekSummary]
}

func NewSummaryService(repo cohort.Repository, ttl time.Duration) *SummaryService {
	return &SummaryService{
		repo:   repo,
		single: cache.NewStore[cohort.GameweekSummary](ttl),
		ranges: cache.NewStore[[]cohort.GameweekSummary](ttl),
	}
}

func (s *SummaryService) Get(ctx context.Context, gameWeek int) (cohort.GameweekSummary, error) {
	if gameWeek < 1 {
		return cohort.GameweekSummary{}, fmt.Errorf("%w: game week must be >= 1", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.SummaryService.Get")
	defer span.End()

	return s.single.GetOrLoad(ctx, "gw:"+strconv.Itoa(gameWeek), func(ctx context.Context) (cohort.GameweekSummary, error) {
		summary, exists, err := s.repo.GetSummary(ctx, gameWeek)
		if err != nil {
			return cohort.GameweekSummary{}, fmt.Errorf("get gameweek summary: %w", err)
		}
		if !exists {
			return cohort.GameweekSummary{}, fmt.Errorf("%w: summary for game week %d", ErrNotFound, gameWeek)
		}
		return summary, nil
	})
}

// List returns the stored summaries in [from, to] ordered by gameweek.
// Gameweeks without a summary are simply absent.
func (s *SummaryService) List(ctx context.Context, from, to int) ([]cohort.GameweekSummary, error) {
	if from < 1 || to < from {
		return nil, fmt.Errorf("%w: expected 1 <= from <= to", ErrInvalidInput)
	}
	if to-from+1 > maxSummaryRange {
		return nil, fmt.Errorf("%w: range covers more than %d game weeks", ErrInvalidInput, maxSummaryRange)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.SummaryService.List")
	defer span.End()

	key := "range:" + strconv.Itoa(from) + "-" + strconv.Itoa(to)
	return s.ranges.GetOrLoad(ctx, key, func(ctx context.Context) ([]cohort.GameweekSummary, error) {
		items, err := s.repo.ListSummaries(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("list gameweek summaries: %w", err)
		}
		if items == nil {
			items = make([]cohort.GameweekSummary, 0)
		}
		return items, nil
	})
}

// Invalidate drops cached reads after a pass commits in the same process.
func (s *SummaryService) Invalidate(gameWeek int) {
	s.single.Delete("gw:" + strconv.Itoa(gameWeek))
	s.ranges.DeletePrefix("range:")
}

package cohort

import "context"

type Repository interface {
	SaveGameweek(ctx context.Context, batch GameweekBatch) error
	GetSummary(ctx context.Context, gameWeek int) (GameweekSummary, bool, error)
	ListSummaries(ctx context.Context, fromGameWeek, toGameWeek int) ([]GameweekSummary, error)
}

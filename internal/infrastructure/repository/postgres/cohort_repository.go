package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-insights/internal/domain/cohort"
	qb "github.com/riskibarqy/fantasy-insights/internal/platform/querybuilder"
)

const (
	managerSnapshotsTable  = "manager_snapshots"
	squadPicksTable        = "squad_picks"
	transferEventsTable    = "transfer_events"
	gameweekSummariesTable = "gameweek_summaries"
)

var (
	managerSnapshotColumns = qb.Columns(managerSnapshotModel{})
	gameweekSummaryColumns = qb.Columns(gameweekSummaryModel{})
)

var _ cohort.Repository = (*CohortRepository)(nil)

type CohortRepository struct {
	db *sqlx.DB
}

func NewCohortRepository(db *sqlx.DB) *CohortRepository {
	return &CohortRepository{db: db}
}

// SaveGameweek writes every manager, pick, transfer and the summary for one
// gameweek in a single transaction. Managers absent from the batch keep
// whatever rows an earlier pass left behind.
func (r *CohortRepository) SaveGameweek(ctx context.Context, batch cohort.GameweekBatch) error {
	statements, err := gameweekStatements(batch)
	if err != nil {
		return err
	}
	return withTx(ctx, r.db, fmt.Sprintf("game week %d", batch.GameWeek), func(tx *sqlx.Tx) error {
		return execStatements(ctx, tx, statements)
	})
}

func (r *CohortRepository) GetSummary(ctx context.Context, gameWeek int) (cohort.GameweekSummary, bool, error) {
	query, args, err := qb.Select(gameweekSummaryColumns...).
		From(gameweekSummariesTable).
		Where(qb.Eq("game_week", gameWeek)).
		Limit(1).
		ToSQL()
	if err != nil {
		return cohort.GameweekSummary{}, false, fmt.Errorf("build select gameweek summary query: %w", err)
	}

	var row gameweekSummaryModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return cohort.GameweekSummary{}, false, nil
		}
		return cohort.GameweekSummary{}, false, fmt.Errorf("get gameweek summary: %w", err)
	}

	out, err := row.toDomain()
	if err != nil {
		return cohort.GameweekSummary{}, false, err
	}
	return out, true, nil
}

func (r *CohortRepository) ListSummaries(ctx context.Context, fromGameWeek, toGameWeek int) ([]cohort.GameweekSummary, error) {
	query, args, err := qb.Select(gameweekSummaryColumns...).
		From(gameweekSummariesTable).
		Where(qb.Between("game_week", fromGameWeek, toGameWeek)).
		OrderBy("game_week").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select gameweek summaries query: %w", err)
	}

	var rows []gameweekSummaryModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select gameweek summaries: %w", err)
	}

	out := make([]cohort.GameweekSummary, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// gameweekStatements orders writes so foreign keys hold inside the
// transaction: snapshots, stale pick removal, picks, transfers, summary.
func gameweekStatements(batch cohort.GameweekBatch) ([]statement, error) {
	if batch.GameWeek < 1 {
		return nil, fmt.Errorf("game week must be > 0")
	}

	var (
		snapshots = make([]managerSnapshotModel, 0, len(batch.Managers))
		picks     = make([]squadPickModel, 0, len(batch.Managers)*cohort.SquadSize)
		transfers = make([]transferEventModel, 0)
		entryIDs  = make([]int64, 0, len(batch.Managers))
	)
	for _, record := range batch.Managers {
		if record.Snapshot.GameWeek != batch.GameWeek {
			return nil, fmt.Errorf("manager %d snapshot is for game week %d, batch is %d",
				record.Snapshot.EntryID, record.Snapshot.GameWeek, batch.GameWeek)
		}
		snapshots = append(snapshots, managerSnapshotFromDomain(record.Snapshot))
		entryIDs = append(entryIDs, record.Snapshot.EntryID)
		for _, pick := range record.Picks {
			picks = append(picks, squadPickFromDomain(pick))
		}
		for _, transfer := range record.Transfers {
			transfers = append(transfers, transferEventFromDomain(transfer))
		}
	}

	out := make([]statement, 0, 5)
	if len(snapshots) > 0 {
		upserts, err := insertStatements("upsert manager snapshots", managerSnapshotsTable, snapshots,
			upsertSuffix([]string{"entry_id", "game_week"}, managerSnapshotColumns, "updated_at = NOW()"))
		if err != nil {
			return nil, err
		}
		out = append(out, upserts...)

		query, args, err := qb.DeleteFrom(squadPicksTable).
			Where(
				qb.Eq("game_week", batch.GameWeek),
				qb.Expr("entry_id = ANY(?)", pq.Array(entryIDs)),
			).
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build delete squad picks query: %w", err)
		}
		out = append(out, statement{name: "delete squad picks", query: query, args: args})
	}

	if len(picks) > 0 {
		inserts, err := insertStatements("insert squad picks", squadPicksTable, picks, "")
		if err != nil {
			return nil, err
		}
		out = append(out, inserts...)
	}

	if len(transfers) > 0 {
		inserts, err := insertStatements("insert transfer events", transferEventsTable, transfers,
			"ON CONFLICT ON CONSTRAINT transfer_events_natural_key DO NOTHING")
		if err != nil {
			return nil, err
		}
		out = append(out, inserts...)
	}

	summary := batch.Summary
	summary.GameWeek = batch.GameWeek
	model, err := gameweekSummaryFromDomain(summary)
	if err != nil {
		return nil, err
	}
	query, args, err := qb.InsertModel(gameweekSummariesTable, model,
		upsertSuffix([]string{"game_week"}, gameweekSummaryColumns))
	if err != nil {
		return nil, fmt.Errorf("build upsert gameweek summary query: %w", err)
	}
	out = append(out, statement{name: "upsert gameweek summary", query: query, args: args})
	return out, nil
}

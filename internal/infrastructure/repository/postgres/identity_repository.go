package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-insights/internal/domain/identity"
	qb "github.com/riskibarqy/fantasy-insights/internal/platform/querybuilder"
)

const (
	teamMappingsTable   = "team_mappings"
	playerMappingsTable = "player_mappings"
)

var (
	teamMappingColumns   = qb.Columns(teamMappingModel{})
	playerMappingColumns = qb.Columns(playerMappingModel{})
)

var _ identity.Repository = (*IdentityRepository)(nil)

// IdentityRepository stores the analytics-to-league key maps. Rows are
// upserted by analytics id, so rebuilding a mapping never duplicates it.
type IdentityRepository struct {
	db *sqlx.DB
}

func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) UpsertTeamMappings(ctx context.Context, mappings []identity.TeamMapping) error {
	statements, err := teamMappingUpsertStatements(mappings)
	if err != nil || len(statements) == 0 {
		return err
	}
	return withTx(ctx, r.db, "team mappings upsert", func(tx *sqlx.Tx) error {
		return execStatements(ctx, tx, statements)
	})
}

func (r *IdentityRepository) ListTeamMappings(ctx context.Context) ([]identity.TeamMapping, error) {
	query, args, err := qb.Select(teamMappingColumns...).From(teamMappingsTable).OrderBy("analytics_team_id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team mappings query: %w", err)
	}

	var rows []teamMappingModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team mappings: %w", err)
	}

	out := make([]identity.TeamMapping, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *IdentityRepository) UpsertPlayerMappings(ctx context.Context, mappings []identity.PlayerMapping) error {
	statements, err := playerMappingUpsertStatements(mappings)
	if err != nil || len(statements) == 0 {
		return err
	}
	return withTx(ctx, r.db, "player mappings upsert", func(tx *sqlx.Tx) error {
		return execStatements(ctx, tx, statements)
	})
}

func (r *IdentityRepository) ListPlayerMappings(ctx context.Context) ([]identity.PlayerMapping, error) {
	query, args, err := qb.Select(playerMappingColumns...).From(playerMappingsTable).OrderBy("analytics_player_id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player mappings query: %w", err)
	}

	var rows []playerMappingModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player mappings: %w", err)
	}

	out := make([]identity.PlayerMapping, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func teamMappingUpsertStatements(mappings []identity.TeamMapping) ([]statement, error) {
	models := make([]teamMappingModel, 0, len(mappings))
	for _, item := range mappings {
		models = append(models, teamMappingFromDomain(item))
	}
	return insertStatements("upsert team mappings", teamMappingsTable, models,
		upsertSuffix([]string{"analytics_team_id"}, teamMappingColumns, "updated_at = NOW()"))
}

func playerMappingUpsertStatements(mappings []identity.PlayerMapping) ([]statement, error) {
	models := make([]playerMappingModel, 0, len(mappings))
	for _, item := range mappings {
		models = append(models, playerMappingFromDomain(item))
	}
	return insertStatements("upsert player mappings", playerMappingsTable, models,
		upsertSuffix([]string{"analytics_player_id"}, playerMappingColumns, "updated_at = NOW()"))
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-insights/internal/domain/reference"
	qb "github.com/riskibarqy/fantasy-insights/internal/platform/querybuilder"
)

const (
	referenceTeamsTable   = "reference_teams"
	referencePlayersTable = "reference_players"
)

var (
	referenceTeamColumns   = qb.Columns(referenceTeamModel{})
	referencePlayerColumns = qb.Columns(referencePlayerModel{})
)

var _ reference.Repository = (*ReferenceRepository)(nil)

type ReferenceRepository struct {
	db *sqlx.DB
}

func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) UpsertTeams(ctx context.Context, teams []reference.Team) error {
	statements, err := teamUpsertStatements(teams)
	if err != nil || len(statements) == 0 {
		return err
	}
	return withTx(ctx, r.db, "reference teams upsert", func(tx *sqlx.Tx) error {
		return execStatements(ctx, tx, statements)
	})
}

func (r *ReferenceRepository) UpsertPlayers(ctx context.Context, players []reference.Player) error {
	statements, err := playerUpsertStatements(players)
	if err != nil || len(statements) == 0 {
		return err
	}
	return withTx(ctx, r.db, "reference players upsert", func(tx *sqlx.Tx) error {
		return execStatements(ctx, tx, statements)
	})
}

func (r *ReferenceRepository) ListTeams(ctx context.Context) ([]reference.Team, error) {
	query, args, err := qb.Select(referenceTeamColumns...).From(referenceTeamsTable).OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select reference teams query: %w", err)
	}

	var rows []referenceTeamModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select reference teams: %w", err)
	}

	out := make([]reference.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ReferenceRepository) ListPlayers(ctx context.Context) ([]reference.Player, error) {
	return r.selectPlayers(ctx)
}

func (r *ReferenceRepository) ListPlayersByTeam(ctx context.Context, teamID int64) ([]reference.Player, error) {
	return r.selectPlayers(ctx, qb.Eq("team_id", teamID))
}

func (r *ReferenceRepository) ListPlayerIDs(ctx context.Context) ([]int64, error) {
	query, args, err := qb.Select("id").From(referencePlayersTable).OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select reference player ids query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select reference player ids: %w", err)
	}
	return ids, nil
}

func (r *ReferenceRepository) selectPlayers(ctx context.Context, conditions ...qb.Condition) ([]reference.Player, error) {
	query, args, err := qb.Select(referencePlayerColumns...).
		From(referencePlayersTable).
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select reference players query: %w", err)
	}

	var rows []referencePlayerModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select reference players: %w", err)
	}

	out := make([]reference.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func teamUpsertStatements(teams []reference.Team) ([]statement, error) {
	models := make([]referenceTeamModel, 0, len(teams))
	for _, item := range teams {
		models = append(models, referenceTeamFromDomain(item))
	}
	return insertStatements("upsert reference teams", referenceTeamsTable, models,
		upsertSuffix([]string{"id"}, referenceTeamColumns, "updated_at = NOW()"))
}

func playerUpsertStatements(players []reference.Player) ([]statement, error) {
	models := make([]referencePlayerModel, 0, len(players))
	for _, item := range players {
		models = append(models, referencePlayerFromDomain(item))
	}
	return insertStatements("upsert reference players", referencePlayersTable, models,
		upsertSuffix([]string{"id"}, referencePlayerColumns, "updated_at = NOW()"))
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	qb "github.com/riskibarqy/fantasy-insights/internal/platform/querybuilder"
)

// maxRowsPerInsert keeps multi-row inserts well under the 65535 bind
// parameter limit of the postgres wire protocol.
const maxRowsPerInsert = 500

type statement struct {
	name  string
	query string
	args  []any
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// insertStatements splits models into chunked multi-row inserts.
func insertStatements[T any](name, table string, models []T, suffix string) ([]statement, error) {
	out := make([]statement, 0, (len(models)+maxRowsPerInsert-1)/maxRowsPerInsert)
	for start := 0; start < len(models); start += maxRowsPerInsert {
		end := min(start+maxRowsPerInsert, len(models))
		query, args, err := qb.InsertModels(table, models[start:end], suffix)
		if err != nil {
			return nil, fmt.Errorf("build %s query: %w", name, err)
		}
		out = append(out, statement{name: name, query: query, args: args})
	}
	return out, nil
}

// upsertSuffix overwrites every non-key column on conflict.
func upsertSuffix(conflict []string, columns []string, extra ...string) string {
	keys := make(map[string]struct{}, len(conflict))
	for _, key := range conflict {
		keys[key] = struct{}{}
	}

	sets := make([]string, 0, len(columns)+len(extra))
	for _, column := range columns {
		if _, ok := keys[column]; ok {
			continue
		}
		sets = append(sets, column+" = EXCLUDED."+column)
	}
	sets = append(sets, extra...)
	return "ON CONFLICT (" + strings.Join(conflict, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
}

func execStatements(ctx context.Context, exec sqlx.ExecerContext, statements []statement) error {
	for _, stmt := range statements {
		if _, err := exec.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			return fmt.Errorf("exec %s: %w", stmt.name, err)
		}
	}
	return nil
}

// withTx commits when fn succeeds and rolls back otherwise.
func withTx(ctx context.Context, db *sqlx.DB, name string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for %s: %w", name, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s tx: %w", name, err)
	}
	return nil
}

// JSONB values are bound as text; lib/pq would send []byte as bytea.
func marshalJSONB(v any) (string, error) {
	return sonic.ConfigStd.MarshalToString(v)
}

func unmarshalJSONB(raw string, target any) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return sonic.ConfigStd.UnmarshalFromString(raw, target)
}

func nullString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func intPointer(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	out := int(value.Int64)
	return &out
}

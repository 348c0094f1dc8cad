package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get summary: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("pq: relation squad_picks does not exist")) {
		t.Fatalf("expected unrelated error to be found")
	}
}

func TestUpsertSuffix(t *testing.T) {
	got := upsertSuffix([]string{"entry_id", "game_week"}, []string{"entry_id", "game_week", "rank", "bank"}, "updated_at = NOW()")
	want := "ON CONFLICT (entry_id, game_week) DO UPDATE SET rank = EXCLUDED.rank, bank = EXCLUDED.bank, updated_at = NOW()"
	if got != want {
		t.Fatalf("unexpected suffix:\n got %s\nwant %s", got, want)
	}
}

func TestInsertStatementsChunks(t *testing.T) {
	type row struct {
		ID int64 `db:"id"`
	}
	rows := make([]row, maxRowsPerInsert*2+1)
	for i := range rows {
		rows[i].ID = int64(i + 1)
	}

	statements, err := insertStatements("insert rows", "rows", rows, "")
	if err != nil {
		t.Fatalf("build statements: %v", err)
	}
	if len(statements) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(statements))
	}
	if len(statements[0].args) != maxRowsPerInsert || len(statements[2].args) != 1 {
		t.Fatalf("unexpected chunk sizes: %d, %d", len(statements[0].args), len(statements[2].args))
	}
	if statements[2].args[0] != int64(maxRowsPerInsert*2+1) {
		t.Fatalf("unexpected last row arg: %v", statements[2].args[0])
	}
	if !strings.HasPrefix(statements[1].query, "INSERT INTO rows (id) VALUES ($1), ($2)") {
		t.Fatalf("unexpected query: %.60s", statements[1].query)
	}
}

func TestInsertStatementsEmpty(t *testing.T) {
	statements, err := insertStatements[referenceTeamModel]("upsert reference teams", referenceTeamsTable, nil, "")
	if err != nil {
		t.Fatalf("build statements: %v", err)
	}
	if len(statements) != 0 {
		t.Fatalf("expected no statements, got %d", len(statements))
	}
}

func TestNullableHelpers(t *testing.T) {
	if nullString("  ").Valid {
		t.Fatalf("expected blank string to be null")
	}
	if got := nullString("wildcard"); !got.Valid || got.String != "wildcard" {
		t.Fatalf("unexpected null string: %+v", got)
	}

	if intPointer(nullInt(nil)) != nil {
		t.Fatalf("expected nil round trip")
	}
	value := 97
	if got := intPointer(nullInt(&value)); got == nil || *got != 97 {
		t.Fatalf("unexpected int pointer: %v", got)
	}
}

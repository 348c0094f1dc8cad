package postgres

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-insights/internal/domain/cohort"
	"github.com/shopspring/decimal"
)

func intRef(v int) *int { return &v }

func sampleBatch() cohort.GameweekBatch {
	transferredAt := time.Date(2025, 9, 12, 17, 30, 0, 0, time.FixedZone("BST", 3600))
	return cohort.GameweekBatch{
		GameWeek: 7,
		Managers: []cohort.ManagerRecord{
			{
				Snapshot: cohort.ManagerSnapshot{EntryID: 1001, GameWeek: 7, Rank: 1, TotalPoints: 512, EventPoints: 81, ActiveChip: "bboost"},
				Picks: []cohort.SquadPick{
					{EntryID: 1001, GameWeek: 7, PlayerID: 328, Position: 1, IsCaptain: true, Multiplier: 2},
					{EntryID: 1001, GameWeek: 7, PlayerID: 401, Position: 2, IsViceCaptain: true, Multiplier: 1},
				},
				Transfers: []cohort.TransferEvent{
					{EntryID: 1001, GameWeek: 7, PlayerInID: 401, PlayerOutID: 330, PlayerInCost: 141, PlayerOutCost: 72, TransferredAt: &transferredAt},
				},
			},
			{
				Snapshot: cohort.ManagerSnapshot{EntryID: 1002, GameWeek: 7, Rank: 2, TotalPoints: 498, EventPoints: 54},
				Picks: []cohort.SquadPick{
					{EntryID: 1002, GameWeek: 7, PlayerID: 328, Position: 1, IsCaptain: true, Multiplier: 2},
				},
			},
		},
		Summary: cohort.GameweekSummary{
			GameWeek:      7,
			ManagerCount:  2,
			AveragePoints: 67.5,
			HighestPoints: intRef(81),
			LowestPoints:  intRef(54),
			TemplateTeam:  []cohort.OwnershipEntry{{AthleteID: 328, Count: 2, Percentage: 100}},
			ChipUsage:     map[string]int{"bboost": 1},
			Meta: cohort.SummaryMeta{
				RunID:       "7d3f1f8e-7c1a-4b7e-9d8f-3a2b1c0d9e8f",
				LeagueID:    "314",
				CohortSize:  3,
				FailedCount: 1,
				SyncedAt:    time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestGameweekStatements_OrderAndScope(t *testing.T) {
	statements, err := gameweekStatements(sampleBatch())
	if err != nil {
		t.Fatalf("build statements: %v", err)
	}

	names := make([]string, 0, len(statements))
	for _, stmt := range statements {
		names = append(names, stmt.name)
	}
	wantNames := []string{
		"upsert manager snapshots",
		"delete squad picks",
		"insert squad picks",
		"insert transfer events",
		"upsert gameweek summary",
	}
	if !reflect.DeepEqual(names, wantNames) {
		t.Fatalf("unexpected statement order: %v", names)
	}

	deletePicks := statements[1]
	if deletePicks.query != "DELETE FROM squad_picks WHERE game_week = $1 AND entry_id = ANY($2)" {
		t.Fatalf("unexpected delete query: %s", deletePicks.query)
	}
	entryIDs, ok := deletePicks.args[1].(*pq.Int64Array)
	if !ok {
		t.Fatalf("expected entry ids bound as int64 array, got %T", deletePicks.args[1])
	}
	if !reflect.DeepEqual([]int64(*entryIDs), []int64{1001, 1002}) {
		t.Fatalf("unexpected entry ids: %v", *entryIDs)
	}

	if got := len(statements[2].args); got != 3*7 {
		t.Fatalf("expected three picks of seven columns, got %d args", got)
	}
	if !strings.HasSuffix(statements[3].query, "ON CONFLICT ON CONSTRAINT transfer_events_natural_key DO NOTHING") {
		t.Fatalf("transfers must not overwrite: %s", statements[3].query)
	}
	if !strings.Contains(statements[4].query, "ON CONFLICT (game_week) DO UPDATE SET manager_count = EXCLUDED.manager_count") {
		t.Fatalf("summary must be overwritten in full: %s", statements[4].query)
	}
}

func TestGameweekStatements_EmptyCohortWritesSummaryOnly(t *testing.T) {
	batch := sampleBatch()
	batch.Managers = nil

	statements, err := gameweekStatements(batch)
	if err != nil {
		t.Fatalf("build statements: %v", err)
	}
	if len(statements) != 1 || statements[0].name != "upsert gameweek summary" {
		t.Fatalf("expected only the summary upsert, got %+v", statements)
	}
}

func TestGameweekStatements_RejectsMismatchedSnapshot(t *testing.T) {
	batch := sampleBatch()
	batch.Managers[1].Snapshot.GameWeek = 8

	if _, err := gameweekStatements(batch); err == nil {
		t.Fatalf("expected mismatched game week to be rejected")
	}
	if _, err := gameweekStatements(cohort.GameweekBatch{}); err == nil {
		t.Fatalf("expected zero game week to be rejected")
	}
}

func TestManagerSnapshotModel_NullChip(t *testing.T) {
	batch := sampleBatch()
	if got := managerSnapshotFromDomain(batch.Managers[0].Snapshot).ActiveChip; !got.Valid || got.String != "bboost" {
		t.Fatalf("unexpected chip: %+v", got)
	}
	if managerSnapshotFromDomain(batch.Managers[1].Snapshot).ActiveChip.Valid {
		t.Fatalf("expected no chip to be stored as null")
	}
}

func TestTransferEventModel_StoresUTC(t *testing.T) {
	batch := sampleBatch()
	model := transferEventFromDomain(batch.Managers[0].Transfers[0])
	if model.TransferredAt == nil || model.TransferredAt.Location() != time.UTC || model.TransferredAt.Hour() != 16 {
		t.Fatalf("unexpected transferred_at: %v", model.TransferredAt)
	}
}

func TestGameweekSummaryModel(t *testing.T) {
	summary := sampleBatch().Summary
	model, err := gameweekSummaryFromDomain(summary)
	if err != nil {
		t.Fatalf("encode summary: %v", err)
	}

	if !model.AveragePoints.Equal(decimal.RequireFromString("67.5")) {
		t.Fatalf("unexpected average: %s", model.AveragePoints)
	}
	if model.TemplateTeam != `[{"athlete_id":328,"count":2,"percentage":100}]` {
		t.Fatalf("unexpected template team json: %s", model.TemplateTeam)
	}
	if model.MostCaptained != "[]" {
		t.Fatalf("expected empty list to be stored as [], got %s", model.MostCaptained)
	}

	got, err := model.toDomain()
	if err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if got.Meta != summary.Meta {
		t.Fatalf("unexpected meta: %+v", got.Meta)
	}
	if *got.HighestPoints != 81 || *got.LowestPoints != 54 || got.AveragePoints != 67.5 {
		t.Fatalf("unexpected points: %+v", got)
	}
	if !reflect.DeepEqual(got.TemplateTeam, summary.TemplateTeam) || got.ChipUsage["bboost"] != 1 {
		t.Fatalf("unexpected lists: %+v", got)
	}
	if got.MostTransferredIn == nil || len(got.MostTransferredIn) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got.MostTransferredIn)
	}
}

func TestGameweekSummaryModel_RejectsCorruptJSON(t *testing.T) {
	model, err := gameweekSummaryFromDomain(sampleBatch().Summary)
	if err != nil {
		t.Fatalf("encode summary: %v", err)
	}
	model.ChipUsage = "{not json"
	if _, err := model.toDomain(); err == nil {
		t.Fatalf("expected corrupt chip usage to fail")
	}
}

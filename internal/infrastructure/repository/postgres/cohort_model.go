package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-insights/internal/domain/cohort"
	"github.com/shopspring/decimal"
)

type managerSnapshotModel struct {
	EntryID     int64          `db:"entry_id"`
	GameWeek    int            `db:"game_week"`
	PlayerName  string         `db:"player_name"`
	EntryName   string         `db:"entry_name"`
	Rank        int            `db:"rank"`
	LastRank    int            `db:"last_rank"`
	TotalPoints int            `db:"total_points"`
	EventPoints int            `db:"event_points"`
	ActiveChip  sql.NullString `db:"active_chip"`
	Bank        int            `db:"bank"`
	TeamValue   int            `db:"team_value"`
}

type squadPickModel struct {
	EntryID       int64 `db:"entry_id"`
	GameWeek      int   `db:"game_week"`
	PlayerID      int64 `db:"player_id"`
	Position      int   `db:"position"`
	IsCaptain     bool  `db:"is_captain"`
	IsViceCaptain bool  `db:"is_vice_captain"`
	Multiplier    int   `db:"multiplier"`
}

type transferEventModel struct {
	EntryID       int64      `db:"entry_id"`
	GameWeek      int        `db:"game_week"`
	PlayerInID    int64      `db:"player_in_id"`
	PlayerOutID   int64      `db:"player_out_id"`
	PlayerInCost  int        `db:"player_in_cost"`
	PlayerOutCost int        `db:"player_out_cost"`
	TransferredAt *time.Time `db:"transferred_at"`
}

// gameweekSummaryModel holds the list columns as JSON text.
type gameweekSummaryModel struct {
	GameWeek           int             `db:"game_week"`
	ManagerCount       int             `db:"manager_count"`
	AveragePoints      decimal.Decimal `db:"average_points"`
	HighestPoints      sql.NullInt64   `db:"highest_points"`
	LowestPoints       sql.NullInt64   `db:"lowest_points"`
	TemplateTeam       string          `db:"template_team"`
	TemplateSquad      string          `db:"template_squad"`
	MostCaptained      string          `db:"most_captained"`
	ChipUsage          string          `db:"chip_usage"`
	MostTransferredIn  string          `db:"most_transferred_in"`
	MostTransferredOut string          `db:"most_transferred_out"`
	RunID              string          `db:"run_id"`
	LeagueID           string          `db:"league_id"`
	CohortSize         int             `db:"cohort_size"`
	FailedCount        int             `db:"failed_count"`
	SyncedAt           time.Time       `db:"synced_at"`
}

func managerSnapshotFromDomain(item cohort.ManagerSnapshot) managerSnapshotModel {
	return managerSnapshotModel{
		EntryID:     item.EntryID,
		GameWeek:    item.GameWeek,
		PlayerName:  item.PlayerName,
		EntryName:   item.EntryName,
		Rank:        item.Rank,
		LastRank:    item.LastRank,
		TotalPoints: item.TotalPoints,
		EventPoints: item.EventPoints,
		ActiveChip:  nullString(item.ActiveChip),
		Bank:        item.Bank,
		TeamValue:   item.TeamValue,
	}
}

func squadPickFromDomain(item cohort.SquadPick) squadPickModel {
	return squadPickModel{
		EntryID:       item.EntryID,
		GameWeek:      item.GameWeek,
		PlayerID:      item.PlayerID,
		Position:      item.Position,
		IsCaptain:     item.IsCaptain,
		IsViceCaptain: item.IsViceCaptain,
		Multiplier:    item.Multiplier,
	}
}

func transferEventFromDomain(item cohort.TransferEvent) transferEventModel {
	var transferredAt *time.Time
	if item.TransferredAt != nil {
		value := item.TransferredAt.UTC()
		transferredAt = &value
	}
	return transferEventModel{
		EntryID:       item.EntryID,
		GameWeek:      item.GameWeek,
		PlayerInID:    item.PlayerInID,
		PlayerOutID:   item.PlayerOutID,
		PlayerInCost:  item.PlayerInCost,
		PlayerOutCost: item.PlayerOutCost,
		TransferredAt: transferredAt,
	}
}

func gameweekSummaryFromDomain(item cohort.GameweekSummary) (gameweekSummaryModel, error) {
	out := gameweekSummaryModel{
		GameWeek:      item.GameWeek,
		ManagerCount:  item.ManagerCount,
		AveragePoints: decimal.NewFromFloat(item.AveragePoints).Round(2),
		HighestPoints: nullInt(item.HighestPoints),
		LowestPoints:  nullInt(item.LowestPoints),
		RunID:         item.Meta.RunID,
		LeagueID:      item.Meta.LeagueID,
		CohortSize:    item.Meta.CohortSize,
		FailedCount:   item.Meta.FailedCount,
		SyncedAt:      item.Meta.SyncedAt.UTC(),
	}

	chips := item.ChipUsage
	if chips == nil {
		chips = map[string]int{}
	}
	columns := []struct {
		name   string
		value  any
		target *string
	}{
		{name: "template_team", value: nonNilEntries(item.TemplateTeam), target: &out.TemplateTeam},
		{name: "template_squad", value: nonNilEntries(item.TemplateSquad), target: &out.TemplateSquad},
		{name: "most_captained", value: nonNilEntries(item.MostCaptained), target: &out.MostCaptained},
		{name: "chip_usage", value: chips, target: &out.ChipUsage},
		{name: "most_transferred_in", value: nonNilEntries(item.MostTransferredIn), target: &out.MostTransferredIn},
		{name: "most_transferred_out", value: nonNilEntries(item.MostTransferredOut), target: &out.MostTransferredOut},
	}
	for _, column := range columns {
		raw, err := marshalJSONB(column.value)
		if err != nil {
			return gameweekSummaryModel{}, fmt.Errorf("encode %s: %w", column.name, err)
		}
		*column.target = raw
	}
	return out, nil
}

func (m gameweekSummaryModel) toDomain() (cohort.GameweekSummary, error) {
	out := cohort.GameweekSummary{
		GameWeek:           m.GameWeek,
		ManagerCount:       m.ManagerCount,
		AveragePoints:      m.AveragePoints.InexactFloat64(),
		HighestPoints:      intPointer(m.HighestPoints),
		LowestPoints:       intPointer(m.LowestPoints),
		TemplateTeam:       []cohort.OwnershipEntry{},
		TemplateSquad:      []cohort.OwnershipEntry{},
		MostCaptained:      []cohort.OwnershipEntry{},
		ChipUsage:          map[string]int{},
		MostTransferredIn:  []cohort.OwnershipEntry{},
		MostTransferredOut: []cohort.OwnershipEntry{},
		Meta: cohort.SummaryMeta{
			RunID:       m.RunID,
			LeagueID:    m.LeagueID,
			CohortSize:  m.CohortSize,
			FailedCount: m.FailedCount,
			SyncedAt:    m.SyncedAt.UTC(),
		},
	}

	columns := []struct {
		name   string
		raw    string
		target any
	}{
		{name: "template_team", raw: m.TemplateTeam, target: &out.TemplateTeam},
		{name: "template_squad", raw: m.TemplateSquad, target: &out.TemplateSquad},
		{name: "most_captained", raw: m.MostCaptained, target: &out.MostCaptained},
		{name: "chip_usage", raw: m.ChipUsage, target: &out.ChipUsage},
		{name: "most_transferred_in", raw: m.MostTransferredIn, target: &out.MostTransferredIn},
		{name: "most_transferred_out", raw: m.MostTransferredOut, target: &out.MostTransferredOut},
	}
	for _, column := range columns {
		if err := unmarshalJSONB(column.raw, column.target); err != nil {
			return cohort.GameweekSummary{}, fmt.Errorf("decode %s for game week %d: %w", column.name, m.GameWeek, err)
		}
	}
	return out, nil
}

func nonNilEntries(items []cohort.OwnershipEntry) []cohort.OwnershipEntry {
	if items == nil {
		return []cohort.OwnershipEntry{}
	}
	return items
}

package cohort

import "time"

const (
	SquadSize         = 15
	StartingSlots     = 11
	StandingsPageSize = 50
)

// ManagerSnapshot is one manager's state for one gameweek.
type ManagerSnapshot struct {
	EntryID     int64
	GameWeek    int
	PlayerName  string
	EntryName   string
	Rank        int
	LastRank    int
	TotalPoints int
	EventPoints int
	ActiveChip  string
	Bank        int
	TeamValue   int
}

// SquadPick is one squad slot. Positions 1-11 are the starting lineup.
type SquadPick struct {
	EntryID       int64
	GameWeek      int
	PlayerID      int64
	Position      int
	IsCaptain     bool
	IsViceCaptain bool
	Multiplier    int
}

func (p SquadPick) IsStarting() bool {
	return p.Position >= 1 && p.Position <= StartingSlots
}

// TransferEvent is unique per (entry, gameweek, player in, player out).
type TransferEvent struct {
	EntryID       int64
	GameWeek      int
	PlayerInID    int64
	PlayerOutID   int64
	PlayerInCost  int
	PlayerOutCost int
	TransferredAt *time.Time
}

// ManagerRecord groups everything fetched for one manager in one pass.
type ManagerRecord struct {
	Snapshot  ManagerSnapshot
	Picks     []SquadPick
	Transfers []TransferEvent
}

type OwnershipEntry struct {
	AthleteID  int64   `json:"athlete_id"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// GameweekSummary is a derived cache row, rebuilt in full on every pass.
type GameweekSummary struct {
	GameWeek           int              `json:"game_week"`
	ManagerCount       int              `json:"manager_count"`
	AveragePoints      float64          `json:"average_points"`
	HighestPoints      *int             `json:"highest_points"`
	LowestPoints       *int             `json:"lowest_points"`
	TemplateTeam       []OwnershipEntry `json:"template_team"`
	TemplateSquad      []OwnershipEntry `json:"template_squad"`
	MostCaptained      []OwnershipEntry `json:"most_captained"`
	ChipUsage          map[string]int   `json:"chip_usage"`
	MostTransferredIn  []OwnershipEntry `json:"most_transferred_in"`
	MostTransferredOut []OwnershipEntry `json:"most_transferred_out"`
	Meta               SummaryMeta      `json:"-"`
}

// SummaryMeta describes the pass that produced a summary.
type SummaryMeta struct {
	RunID       string    `json:"run_id"`
	LeagueID    string    `json:"league_id"`
	CohortSize  int       `json:"cohort_size"`
	FailedCount int       `json:"failed_count"`
	SyncedAt    time.Time `json:"synced_at"`
}

// GameweekBatch is persisted atomically: all rows commit or none do.
type GameweekBatch struct {
	GameWeek int
	Managers []ManagerRecord
	Summary  GameweekSummary
}

package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-insights/internal/domain/reference"
)

// LeagueProvider is the fantasy league API: reference data, public league
// standings and per-manager gameweek state.
type LeagueProvider interface {
	FetchBootstrap(ctx context.Context) (ExternalBootstrap, error)
	FetchStandingsPage(ctx context.Context, leagueID string, page int) (ExternalStandingsPage, error)
	FetchManagerPicks(ctx context.Context, entryID int64, gameWeek int) (ExternalPicks, error)
	FetchManagerTransfers(ctx context.Context, entryID int64) ([]ExternalTransfer, error)
}

// AnalyticsProvider is the statistics API whose ids are mapped onto league ids.
type AnalyticsProvider interface {
	FetchSeasonTeams(ctx context.Context) ([]ExternalAnalyticsTeam, error)
	FetchTeamSquad(ctx context.Context, teamID int64) ([]ExternalAnalyticsPlayer, error)
}

type ExternalBootstrap struct {
	Teams           []reference.Team
	Players         []reference.Player
	CurrentGameWeek int
}

type ExternalStandingsPage struct {
	Page    int
	HasNext bool
	Entries []ExternalStandingEntry
}

type ExternalStandingEntry struct {
	EntryID     int64
	PlayerName  string
	EntryName   string
	Rank        int
	LastRank    int
	TotalPoints int
	EventPoints int
}

type ExternalPicks struct {
	ActiveChip  string
	Bank        int
	TeamValue   int
	EventPoints int
	Picks       []ExternalPick
}

type ExternalPick struct {
	PlayerID      int64
	Position      int
	IsCaptain     bool
	IsViceCaptain bool
	Multiplier    int
}

type ExternalTransfer struct {
	GameWeek      int
	PlayerInID    int64
	PlayerOutID   int64
	PlayerInCost  int
	PlayerOutCost int
	Time          *time.Time
}

type ExternalAnalyticsTeam struct {
	ID        int64
	Name      string
	ShortName string
}

type ExternalAnalyticsPlayer struct {
	ID        int64
	TeamID    int64
	Name      string
	ShortName string
}

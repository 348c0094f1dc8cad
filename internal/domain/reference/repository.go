package reference

import "context"

type Repository interface {
	UpsertTeams(ctx context.Context, teams []Team) error
	UpsertPlayers(ctx context.Context, players []Player) error
	ListTeams(ctx context.Context) ([]Team, error)
	ListPlayers(ctx context.Context) ([]Player, error)
	ListPlayersByTeam(ctx context.Context, teamID int64) ([]Player, error)
	ListPlayerIDs(ctx context.Context) ([]int64, error)
}

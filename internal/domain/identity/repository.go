package identity

import "context"

type Repository interface {
	UpsertTeamMappings(ctx context.Context, mappings []TeamMapping) error
	ListTeamMappings(ctx context.Context) ([]TeamMapping, error)
	UpsertPlayerMappings(ctx context.Context, mappings []PlayerMapping) error
	ListPlayerMappings(ctx context.Context) ([]PlayerMapping, error)
}

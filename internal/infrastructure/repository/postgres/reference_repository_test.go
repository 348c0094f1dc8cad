package postgres

import (
	"strings"
	"testing"

	"github.com/riskibarqy/fantasy-insights/internal/domain/identity"
	"github.com/riskibarqy/fantasy-insights/internal/domain/reference"
)

func TestTeamUpsertStatements(t *testing.T) {
	statements, err := teamUpsertStatements([]reference.Team{
		{ID: 14, Name: "Liverpool", ShortName: "LIV"},
		{ID: 13, Name: "Man City", ShortName: "MCI"},
	})
	if err != nil {
		t.Fatalf("build statements: %v", err)
	}
	if len(statements) != 1 {
		t.Fatalf("expected one statement, got %d", len(statements))
	}

	want := "INSERT INTO reference_teams (id, name, short_name) VALUES ($1, $2, $3), ($4, $5, $6) " +
		"ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, short_name = EXCLUDED.short_name, updated_at = NOW()"
	if statements[0].query != want {
		t.Fatalf("unexpected query:\n got %s\nwant %s", statements[0].query, want)
	}
	if len(statements[0].args) != 6 || statements[0].args[3] != int64(13) {
		t.Fatalf("unexpected args: %v", statements[0].args)
	}
}

func TestPlayerUpsertStatements(t *testing.T) {
	statements, err := playerUpsertStatements([]reference.Player{
		{ID: 328, TeamID: 14, FirstName: "Mohamed", SecondName: "Salah", WebName: "M.Salah", TotalPoints: 211},
	})
	if err != nil {
		t.Fatalf("build statements: %v", err)
	}
	query := statements[0].query
	if !strings.HasPrefix(query, "INSERT INTO reference_players (id, team_id, first_name, second_name, web_name, total_points)") {
		t.Fatalf("unexpected query: %s", query)
	}
	if !strings.Contains(query, "total_points = EXCLUDED.total_points") || strings.Contains(query, "id = EXCLUDED.id,") {
		t.Fatalf("unexpected conflict clause: %s", query)
	}
}

func TestReferencePlayerModelRoundTrip(t *testing.T) {
	player := reference.Player{ID: 401, TeamID: 13, FirstName: "Erling", SecondName: "Haaland", WebName: "Haaland", TotalPoints: 180}
	if got := referencePlayerFromDomain(player).toDomain(); got != player {
		t.Fatalf("unexpected player: %+v", got)
	}
}

func TestMappingModelsNormalizeSource(t *testing.T) {
	team := teamMappingFromDomain(identity.TeamMapping{AnalyticsTeamID: 44, LeagueTeamID: 14, MatchScore: 105})
	if team.Source != identity.SourceFuzzy {
		t.Fatalf("expected empty source to default to fuzzy, got %q", team.Source)
	}

	player := playerMappingFromDomain(identity.PlayerMapping{
		AnalyticsPlayerID: 159665,
		LeaguePlayerID:    328,
		LeagueTeamID:      14,
		AnalyticsTeamID:   44,
		MatchScore:        100,
		Source:            identity.SourceOverride,
	})
	if got := player.toDomain(); got.Source != identity.SourceOverride || got.LeagueTeamID != 14 {
		t.Fatalf("unexpected player mapping: %+v", got)
	}
}

func TestPlayerMappingUpsertStatements(t *testing.T) {
	statements, err := playerMappingUpsertStatements([]identity.PlayerMapping{
		{AnalyticsPlayerID: 159665, LeaguePlayerID: 328, AnalyticsTeamID: 44, LeagueTeamID: 14, MatchScore: 105},
	})
	if err != nil {
		t.Fatalf("build statements: %v", err)
	}
	if !strings.Contains(statements[0].query, "ON CONFLICT (analytics_player_id) DO UPDATE SET league_player_id = EXCLUDED.league_player_id") {
		t.Fatalf("unexpected query: %s", statements[0].query)
	}
	if len(statements[0].args) != len(playerMappingColumns) {
		t.Fatalf("expected %d args, got %d", len(playerMappingColumns), len(statements[0].args))
	}
}

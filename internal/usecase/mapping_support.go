package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sonic "github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

const (
	TeamMappingExportFile   = "team_mapping.json"
	PlayerMappingExportFile = "player_mapping.json"
)

// MappingOverrides pins analytics ids to league ids where fuzzy matching
// cannot find the right pairing.
//
//	teams:
//	  44: 14
//	players:
//	  159665: 328
type MappingOverrides struct {
	Teams   map[int64]int64 `yaml:"teams"`
	Players map[int64]int64 `yaml:"players"`
}

// LoadMappingOverrides reads the YAML overrides file. An empty path yields no
// overrides.
func LoadMappingOverrides(path string) (MappingOverrides, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return MappingOverrides{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return MappingOverrides{}, fmt.Errorf("read mapping overrides: %w", err)
	}

	var out MappingOverrides
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return MappingOverrides{}, fmt.Errorf("%w: parse mapping overrides %s: %v", ErrInvalidInput, path, err)
	}
	for analyticsID, leagueID := range out.Teams {
		if analyticsID <= 0 || leagueID <= 0 {
			return MappingOverrides{}, fmt.Errorf("%w: team override %d -> %d must use positive ids", ErrInvalidInput, analyticsID, leagueID)
		}
	}
	for analyticsID, leagueID := range out.Players {
		if analyticsID <= 0 || leagueID <= 0 {
			return MappingOverrides{}, fmt.Errorf("%w: player override %d -> %d must use positive ids", ErrInvalidInput, analyticsID, leagueID)
		}
	}
	return out, nil
}

// writeMappingExport writes v as indented JSON with sorted keys. Nothing is
// written when dir is empty.
func writeMappingExport(dir, name string, v any) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	raw, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(raw, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("replace %s: %w", name, err)
	}
	return path, nil
}

// UnmatchedEntity is an analytics entity that scored below the threshold,
// with its best near miss when one exists.
type UnmatchedEntity struct {
	AnalyticsID     int64  `json:"analytics_id"`
	AnalyticsName   string `json:"analytics_name"`
	AnalyticsTeamID int64  `json:"analytics_team_id,omitempty"`
	BestLeagueID    int64  `json:"best_league_id,omitempty"`
	BestLeagueName  string `json:"best_league_name,omitempty"`
	BestScore       int    `json:"best_score"`
}

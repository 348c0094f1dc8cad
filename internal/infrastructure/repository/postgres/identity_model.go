package postgres

import "github.com/riskibarqy/fantasy-insights/internal/domain/identity"

type teamMappingModel struct {
	AnalyticsTeamID int64  `db:"analytics_team_id"`
	LeagueTeamID    int64  `db:"league_team_id"`
	AnalyticsName   string `db:"analytics_name"`
	LeagueName      string `db:"league_name"`
	MatchScore      int    `db:"match_score"`
	Source          string `db:"source"`
}

type playerMappingModel struct {
	AnalyticsPlayerID int64  `db:"analytics_player_id"`
	LeaguePlayerID    int64  `db:"league_player_id"`
	AnalyticsName     string `db:"analytics_name"`
	LeagueFullName    string `db:"league_full_name"`
	LeagueWebName     string `db:"league_web_name"`
	LeagueTeamID      int64  `db:"league_team_id"`
	AnalyticsTeamID   int64  `db:"analytics_team_id"`
	MatchScore        int    `db:"match_score"`
	Source            string `db:"source"`
}

func teamMappingFromDomain(item identity.TeamMapping) teamMappingModel {
	return teamMappingModel{
		AnalyticsTeamID: item.AnalyticsTeamID,
		LeagueTeamID:    item.LeagueTeamID,
		AnalyticsName:   item.AnalyticsName,
		LeagueName:      item.LeagueName,
		MatchScore:      item.MatchScore,
		Source:          mappingSource(item.Source),
	}
}

func (m teamMappingModel) toDomain() identity.TeamMapping {
	return identity.TeamMapping{
		AnalyticsTeamID: m.AnalyticsTeamID,
		LeagueTeamID:    m.LeagueTeamID,
		AnalyticsName:   m.AnalyticsName,
		LeagueName:      m.LeagueName,
		MatchScore:      m.MatchScore,
		Source:          m.Source,
	}
}

func playerMappingFromDomain(item identity.PlayerMapping) playerMappingModel {
	return playerMappingModel{
		AnalyticsPlayerID: item.AnalyticsPlayerID,
		LeaguePlayerID:    item.LeaguePlayerID,
		AnalyticsName:     item.AnalyticsName,
		LeagueFullName:    item.LeagueFullName,
		LeagueWebName:     item.LeagueWebName,
		LeagueTeamID:      item.LeagueTeamID,
		AnalyticsTeamID:   item.AnalyticsTeamID,
		MatchScore:        item.MatchScore,
		Source:            mappingSource(item.Source),
	}
}

func (m playerMappingModel) toDomain() identity.PlayerMapping {
	return identity.PlayerMapping{
		AnalyticsPlayerID: m.AnalyticsPlayerID,
		LeaguePlayerID:    m.LeaguePlayerID,
		AnalyticsName:     m.AnalyticsName,
		LeagueFullName:    m.LeagueFullName,
		LeagueWebName:     m.LeagueWebName,
		LeagueTeamID:      m.LeagueTeamID,
		AnalyticsTeamID:   m.AnalyticsTeamID,
		MatchScore:        m.MatchScore,
		Source:            m.Source,
	}
}

func mappingSource(source string) string {
	if source == identity.SourceOverride {
		return identity.SourceOverride
	}
	return identity.SourceFuzzy
}

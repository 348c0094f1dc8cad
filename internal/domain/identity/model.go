package identity

const (
	SourceFuzzy    = "fuzzy"
	SourceOverride = "override"
)

// TeamMapping links an analytics-provider team to a league team.
// At most one row exists per AnalyticsTeamID.
type TeamMapping struct {
	AnalyticsTeamID int64  `json:"sofasport_id"`
	LeagueTeamID    int64  `json:"fpl_id"`
	AnalyticsName   string `json:"sofasport_name"`
	LeagueName      string `json:"fpl_name"`
	MatchScore      int    `json:"match_score"`
	Source          string `json:"source"`
}

// PlayerMapping links an analytics-provider player to a league player. The
// pair of team ids must match an existing TeamMapping.
type PlayerMapping struct {
	AnalyticsPlayerID int64  `json:"sofasport_id"`
	LeaguePlayerID    int64  `json:"fpl_id"`
	AnalyticsName     string `json:"sofasport_name"`
	LeagueFullName    string `json:"fpl_full_name"`
	LeagueWebName     string `json:"fpl_web_name"`
	LeagueTeamID      int64  `json:"fpl_team_id"`
	AnalyticsTeamID   int64  `json:"sofasport_team_id"`
	MatchScore        int    `json:"match_score"`
	Source            string `json:"source"`
}

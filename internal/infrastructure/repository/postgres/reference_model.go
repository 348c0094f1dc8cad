package postgres

import "github.com/riskibarqy/fantasy-insights/internal/domain/reference"

type referenceTeamModel struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	ShortName string `db:"short_name"`
}

type referencePlayerModel struct {
	ID          int64  `db:"id"`
	TeamID      int64  `db:"team_id"`
	FirstName   string `db:"first_name"`
	SecondName  string `db:"second_name"`
	WebName     string `db:"web_name"`
	TotalPoints int    `db:"total_points"`
}

func referenceTeamFromDomain(item reference.Team) referenceTeamModel {
	return referenceTeamModel{
		ID:        item.ID,
		Name:      item.Name,
		ShortName: item.ShortName,
	}
}

func (m referenceTeamModel) toDomain() reference.Team {
	return reference.Team{
		ID:        m.ID,
		Name:      m.Name,
		ShortName: m.ShortName,
	}
}

func referencePlayerFromDomain(item reference.Player) referencePlayerModel {
	return referencePlayerModel{
		ID:          item.ID,
		TeamID:      item.TeamID,
		FirstName:   item.FirstName,
		SecondName:  item.SecondName,
		WebName:     item.WebName,
		TotalPoints: item.TotalPoints,
	}
}

func (m referencePlayerModel) toDomain() reference.Player {
	return reference.Player{
		ID:          m.ID,
		TeamID:      m.TeamID,
		FirstName:   m.FirstName,
		SecondName:  m.SecondName,
		WebName:     m.WebName,
		TotalPoints: m.TotalPoints,
	}
}

package reference

import "strings"

// Team is a league-provider club as stored locally.
type Team struct {
	ID        int64
	Name      string
	ShortName string
}

// Player is a league-provider player row. The local player table is the
// universe every incoming pick or transfer is checked against.
type Player struct {
	ID          int64
	TeamID      int64
	FirstName   string
	SecondName  string
	WebName     string
	TotalPoints int
}

func (p Player) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.SecondName))
}

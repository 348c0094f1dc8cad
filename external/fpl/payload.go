package fpl

type bootstrapResponse struct {
	Events   []eventItem   `json:"events"`
	Teams    []teamItem    `json:"teams"`
	Elements []elementItem `json:"elements"`
}

type eventItem struct {
	ID        int  `json:"id"`
	IsCurrent bool `json:"is_current"`
	Finished  bool `json:"finished"`
}

type teamItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type elementItem struct {
	ID          int64  `json:"id"`
	Team        int64  `json:"team"`
	FirstName   string `json:"first_name"`
	SecondName  string `json:"second_name"`
	WebName     string `json:"web_name"`
	TotalPoints int    `json:"total_points"`
}

type standingsResponse struct {
	Standings struct {
		HasNext bool           `json:"has_next"`
		Page    int            `json:"page"`
		Results []standingItem `json:"results"`
	} `json:"standings"`
}

type standingItem struct {
	Entry      int64  `json:"entry"`
	PlayerName string `json:"player_name"`
	EntryName  string `json:"entry_name"`
	Rank       int    `json:"rank"`
	LastRank   int    `json:"last_rank"`
	Total      int    `json:"total"`
	EventTotal int    `json:"event_total"`
}

type picksResponse struct {
	ActiveChip   *string `json:"active_chip"`
	EntryHistory struct {
		Points int `json:"points"`
		Bank   int `json:"bank"`
		Value  int `json:"value"`
	} `json:"entry_history"`
	Picks []pickItem `json:"picks"`
}

type pickItem struct {
	Element       int64 `json:"element"`
	Position      int   `json:"position"`
	Multiplier    int   `json:"multiplier"`
	IsCaptain     bool  `json:"is_captain"`
	IsViceCaptain bool  `json:"is_vice_captain"`
}

type transferItem struct {
	ElementIn      int64  `json:"element_in"`
	ElementInCost  int    `json:"element_in_cost"`
	ElementOut     int64  `json:"element_out"`
	ElementOutCost int    `json:"element_out_cost"`
	Event          int    `json:"event"`
	Time           string `json:"time"`
}

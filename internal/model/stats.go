package model

// ShootingLine holds makes and attempts for one shot bucket and the derived percentage.
type ShootingLine struct {
	Made      int `json:"made"`
	Attempted int `json:"attempted"`
	Pct       int `json:"pct"` // 0 when Attempted == 0
}

// PlayerGameStats is the box-score line of one player, derived from an event log.
// This model is read-only and never persisted directly.
type PlayerGameStats struct {
	Key           string       `json:"key"`
	PlayerID      string       `json:"player_id,omitempty"`
	Name          string       `json:"name"`
	JerseyNumber  int          `json:"jersey_number"`
	Position      string       `json:"position"`
	Points        int          `json:"points"`
	FieldGoals    ShootingLine `json:"field_goals"`
	ThreePointers ShootingLine `json:"three_pointers"`
	FreeThrows    ShootingLine `json:"free_throws"`
	Assists       int          `json:"assists"`
	Rebounds      int          `json:"rebounds"`
	Steals        int          `json:"steals"`
	Blocks        int          `json:"blocks"`
	Turnovers     int          `json:"turnovers"`
	Fouls         int          `json:"fouls"`
	Substitutions int          `json:"substitutions"`
}

// TeamGameStats sums all player lines; team percentages come from summed
// makes and attempts rather than averaged player percentages.
type TeamGameStats struct {
	Points        int          `json:"points"`
	FieldGoals    ShootingLine `json:"field_goals"`
	ThreePointers ShootingLine `json:"three_pointers"`
	FreeThrows    ShootingLine `json:"free_throws"`
	Assists       int          `json:"assists"`
	Rebounds      int          `json:"rebounds"`
	Steals        int          `json:"steals"`
	Blocks        int          `json:"blocks"`
	Turnovers     int          `json:"turnovers"`
	Fouls         int          `json:"fouls"`
}

// ExtractedGameStats is the full box score of an event log.
type ExtractedGameStats struct {
	PlayerStats []PlayerGameStats `json:"player_stats"`
	TeamStats   TeamGameStats     `json:"team_stats"`
}

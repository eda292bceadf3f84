package store

import (
	"time"

	"github.com/fortuna/courtside/internal/stats"
)

// Team is a basketball franchise.
type Team struct {
	TeamID     int     `json:"Team_ID" gorm:"column:team_id;primaryKey"`
	Name       string  `json:"Team_Name" gorm:"column:team_name;not null;index"`
	City       string  `json:"Team_City" gorm:"column:team_city"`
	ExternalID *string `json:"-" gorm:"column:external_id;uniqueIndex"`
}

func (Team) TableName() string { return "teams" }

// Player belongs to at most one team; a nil TeamID is a free agent.
type Player struct {
	PlayerID     int     `json:"Player_ID" gorm:"column:player_id;primaryKey"`
	TeamID       *int    `json:"Team_ID" gorm:"column:team_id;index"`
	FirstName    string  `json:"First_Name" gorm:"column:first_name"`
	LastName     string  `json:"Last_Name" gorm:"column:last_name"`
	PositionID   string  `json:"Position_ID" gorm:"column:position_id"`
	JerseyNumber int     `json:"Jersey_Number" gorm:"column:jersey_number"`
	ExternalID   *string `json:"-" gorm:"column:external_id;uniqueIndex"`
}

func (Player) TableName() string { return "players" }

// FullName joins first and last name.
func (p *Player) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	return p.FirstName + " " + p.LastName
}

// Game references a home and an away team.
type Game struct {
	GameID     int       `json:"Game_ID" gorm:"column:game_id;primaryKey"`
	HomeID     int       `json:"Home_ID" gorm:"column:home_id;index"`
	AwayID     int       `json:"Away_ID" gorm:"column:away_id;index"`
	GameDate   time.Time `json:"Game_Date" gorm:"column:game_date"`
	ExternalID *string   `json:"-" gorm:"column:external_id;uniqueIndex"`
}

func (Game) TableName() string { return "games" }

// Stat is one player's counters for one game. (player_id, game_id) is unique.
type Stat struct {
	StatID   int `json:"Stat_ID" gorm:"column:stat_id;primaryKey"`
	PlayerID int `json:"Player_ID" gorm:"column:player_id;not null;uniqueIndex:idx_stats_player_game,priority:1"`
	GameID   int `json:"Game_ID" gorm:"column:game_id;not null;uniqueIndex:idx_stats_player_game,priority:2;index"`
	stats.Counters
}

func (Stat) TableName() string { return "stats" }

// Line strips the row down to what the aggregator needs.
func (s *Stat) Line() stats.Line {
	return stats.Line{PlayerID: s.PlayerID, Counters: s.Counters}
}

// Lines converts a slice of rows.
func Lines(rows []*Stat) []stats.Line {
	out := make([]stats.Line, 0, len(rows))
	for _, s := range rows {
		out = append(out, s.Line())
	}
	return out
}

// All lists every model for auto-migration.
func All() []interface{} {
	return []interface{}{&Team{}, &Player{}, &Game{}, &Stat{}}
}

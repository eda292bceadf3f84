// Package ingest turns box scores from external sources into teams, players,
// games and stat rows.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/stats"
)

// Side says which team in a box score a player line belongs to.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// TeamLine identifies one side of a box score.
type TeamLine struct {
	ExternalID   string
	Name         string
	City         string
	Abbreviation string
}

// Label is the best human name for the team.
func (t TeamLine) Label() string {
	return fallbackString(strings.TrimSpace(t.City+" "+t.Name), t.Abbreviation, t.ExternalID)
}

// Shooting is a made-attempted pair as printed in a box score ("7-15").
type Shooting struct {
	Made      int
	Attempted int
}

// PlayerLine is a single player's raw box-score row.
type PlayerLine struct {
	ExternalID string
	FirstName  string
	LastName   string
	Jersey     int
	Position   string
	Side       Side

	FieldGoals    Shooting
	ThreePointers Shooting
	FreeThrows    Shooting

	OffRebounds int
	DefRebounds int
	Assists     int
	Steals      int
	Blocks      int
	Turnovers   int
	Fouls       int
}

// Counters converts box-score shooting splits into made/missed counters.
// Field goals include threes, so two-pointers are what remains after the
// three-point split is taken out. Inconsistent source rows clamp to zero.
func (p PlayerLine) Counters() stats.Counters {
	twoMade := clamp(p.FieldGoals.Made - p.ThreePointers.Made)
	twoAttempted := p.FieldGoals.Attempted - p.ThreePointers.Attempted

	return stats.Counters{
		ThreePointsMade:   clamp(p.ThreePointers.Made),
		ThreePointsMissed: clamp(p.ThreePointers.Attempted - p.ThreePointers.Made),
		TwoPointsMade:     twoMade,
		TwoPointsMissed:   clamp(twoAttempted - twoMade),
		FreeThrowMade:     clamp(p.FreeThrows.Made),
		FreeThrowMissed:   clamp(p.FreeThrows.Attempted - p.FreeThrows.Made),
		Steals:            clamp(p.Steals),
		Turnovers:         clamp(p.Turnovers),
		Assists:           clamp(p.Assists),
		Blocks:            clamp(p.Blocks),
		Fouls:             clamp(p.Fouls),
		OffRebounds:       clamp(p.OffRebounds),
		DefRebounds:       clamp(p.DefRebounds),
	}
}

// FullName joins first and last name.
func (p PlayerLine) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// BoxScore is one finished game as reported by a source.
type BoxScore struct {
	ExternalID string
	Source     string
	Date       time.Time
	Home       TeamLine
	Away       TeamLine
	Players    []PlayerLine
}

// Key identifies the game across imports. Sources without their own event id
// fall back to the matchup and date.
func (b *BoxScore) Key() string {
	if b.ExternalID != "" {
		return b.ExternalID
	}
	return fmt.Sprintf("%s:%s@%s:%s",
		b.Source,
		normalizeName(b.Away.Label()),
		normalizeName(b.Home.Label()),
		b.Date.UTC().Format("20060102"),
	)
}

// Validate rejects box scores the importer cannot place.
func (b *BoxScore) Validate() error {
	if b.Home.Label() == "" || b.Away.Label() == "" {
		return fmt.Errorf("box score %s: both teams need a name or id", b.Key())
	}
	for i, p := range b.Players {
		if p.Side != SideHome && p.Side != SideAway {
			return fmt.Errorf("box score %s: player %d (%s) has no side", b.Key(), i, p.FullName())
		}
		if p.LastName == "" && p.ExternalID == "" {
			return fmt.Errorf("box score %s: player %d has no name or id", b.Key(), i)
		}
	}
	return nil
}

// Source yields one box score.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*BoxScore, error)
}

// SplitName splits a display name on its last space: "Shai Gilgeous-Alexander"
// becomes ("Shai", "Gilgeous-Alexander").
func SplitName(display string) (first, last string) {
	display = strings.Join(strings.Fields(display), " ")
	if idx := strings.LastIndex(display, " "); idx > 0 {
		return display[:idx], display[idx+1:]
	}
	return "", display
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func fallbackString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

package stats

import "sort"

// Line is one stat row as seen by the aggregator.
type Line struct {
	PlayerID int
	Counters
}

// Totals is the sum of every Line recorded for one player.
type Totals struct {
	PlayerID int `json:"Player_ID"`
	Counters
	Games    int `json:"Games"`
	Points   int `json:"Points"`
	Rebounds int `json:"Rebounds"`
}

// Score is a game's two team totals.
type Score struct {
	GameID        int `json:"GameId"`
	HomeTeamScore int `json:"HomeTeamScore"`
	AwayTeamScore int `json:"AwayTeamScore"`
}

// TeamOf resolves a player to their current team. ok is false when the
// player is unknown or has no team.
type TeamOf func(playerID int) (teamID int, ok bool)

// GameScore sums points for the home and away sides. Each line is credited
// to the team its player currently belongs to; lines whose player cannot be
// resolved count for neither side.
func GameScore(gameID, homeID, awayID int, lines []Line, teamOf TeamOf) Score {
	score := Score{GameID: gameID}
	for _, l := range lines {
		teamID, ok := teamOf(l.PlayerID)
		if !ok {
			continue
		}
		switch teamID {
		case homeID:
			score.HomeTeamScore += l.Points()
		case awayID:
			score.AwayTeamScore += l.Points()
		}
	}
	return score
}

// TotalsByPlayer groups lines by player and sums each counter. The result is
// ordered by player id.
func TotalsByPlayer(lines []Line) []Totals {
	byPlayer := make(map[int]*Totals)
	for _, l := range lines {
		t, ok := byPlayer[l.PlayerID]
		if !ok {
			t = &Totals{PlayerID: l.PlayerID}
			byPlayer[l.PlayerID] = t
		}
		t.Add(l.Counters)
		t.Games++
	}

	out := make([]Totals, 0, len(byPlayer))
	for _, t := range byPlayer {
		t.Points = t.Counters.Points()
		t.Rebounds = t.Counters.Rebounds()
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// TotalsForPlayer sums the lines belonging to playerID. ok is false when
// none do.
func TotalsForPlayer(playerID int, lines []Line) (Totals, bool) {
	var own []Line
	for _, l := range lines {
		if l.PlayerID == playerID {
			own = append(own, l)
		}
	}
	if len(own) == 0 {
		return Totals{}, false
	}
	return TotalsByPlayer(own)[0], true
}

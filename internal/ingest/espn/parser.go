package espn

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/ingest"
)

// Box-score column labels. Columns are looked up by label rather than
// position because ESPN reorders them between seasons.
const (
	statLabelFG     = "FG" // "made-attempted"
	statLabel3PT    = "3PT"
	statLabelFT     = "FT"
	statLabelOffReb = "OREB"
	statLabelDefReb = "DREB"
	statLabelAst    = "AST"
	statLabelStl    = "STL"
	statLabelBlk    = "BLK"
	statLabelTO     = "TO"
	statLabelPF     = "PF"
)

// ParseSummary converts a summary payload into a box score. Players who did
// not play are left out.
func ParseSummary(summary map[string]interface{}) (*ingest.BoxScore, error) {
	header := extractMap(summary, "header")
	competitions := extractArray(header, "competitions")
	if len(competitions) == 0 {
		return nil, fmt.Errorf("summary has no competitions")
	}
	comp, _ := competitions[0].(map[string]interface{})

	box := &ingest.BoxScore{Source: "espn"}
	if id := fallbackString(extractString(header, "id"), extractString(comp, "id")); id != "" {
		box.ExternalID = "espn:" + id
	}
	if dateStr := extractString(comp, "date"); dateStr != "" {
		date, err := parseDate(dateStr)
		if err != nil {
			return nil, err
		}
		box.Date = date
	}

	sides := make(map[string]ingest.Side)
	for _, c := range extractArray(comp, "competitors") {
		competitor, _ := c.(map[string]interface{})
		team := parseTeam(extractMap(competitor, "team"))
		switch extractString(competitor, "homeAway") {
		case "home":
			box.Home = team
			sides[team.ExternalID] = ingest.SideHome
			sides[team.Abbreviation] = ingest.SideHome
		case "away":
			box.Away = team
			sides[team.ExternalID] = ingest.SideAway
			sides[team.Abbreviation] = ingest.SideAway
		}
	}
	if box.Home.ExternalID == "" || box.Away.ExternalID == "" {
		return nil, fmt.Errorf("summary is missing a home or away competitor")
	}

	boxscore := extractMap(summary, "boxscore")
	playersData := extractArray(boxscore, "players")
	if len(playersData) == 0 {
		return nil, fmt.Errorf("no players data in boxscore")
	}

	for _, teamDataInterface := range playersData {
		teamData, _ := teamDataInterface.(map[string]interface{})
		team := parseTeam(extractMap(teamData, "team"))
		side, ok := sides[team.ExternalID]
		if !ok {
			side, ok = sides[team.Abbreviation]
		}
		if !ok {
			return nil, fmt.Errorf("boxscore team %s is not in the game header", team.Label())
		}

		statistics := extractArray(teamData, "statistics")
		if len(statistics) == 0 {
			continue
		}
		statGroup, _ := statistics[0].(map[string]interface{})

		labels := extractArray(statGroup, "names")
		if len(labels) == 0 {
			labels = extractArray(statGroup, "labels")
		}
		index := make(map[string]int, len(labels))
		for i, l := range labels {
			if name, ok := l.(string); ok {
				index[name] = i
			}
		}

		for _, athleteInterface := range extractArray(statGroup, "athletes") {
			athleteData, _ := athleteInterface.(map[string]interface{})
			if didNotPlay, ok := athleteData["didNotPlay"].(bool); ok && didNotPlay {
				continue
			}
			line, ok := parsePlayerLine(athleteData, index)
			if !ok {
				continue
			}
			line.Side = side
			box.Players = append(box.Players, line)
		}
	}

	return box, nil
}

func parseTeam(team map[string]interface{}) ingest.TeamLine {
	line := ingest.TeamLine{
		Name:         extractString(team, "name"),
		City:         extractString(team, "location"),
		Abbreviation: strings.ToUpper(extractString(team, "abbreviation")),
	}
	if id := extractString(team, "id"); id != "" {
		line.ExternalID = "espn:team:" + id
	}
	if line.Name == "" {
		line.Name = extractString(team, "displayName")
	}
	return line
}

func parsePlayerLine(athleteData map[string]interface{}, index map[string]int) (ingest.PlayerLine, bool) {
	athlete := extractMap(athleteData, "athlete")
	stats := extractArray(athleteData, "stats")
	if len(stats) == 0 {
		return ingest.PlayerLine{}, false
	}

	getStat := func(label string) string {
		if idx, ok := index[label]; ok && idx < len(stats) {
			return fmt.Sprint(stats[idx])
		}
		return ""
	}

	first, last := extractString(athlete, "firstName"), extractString(athlete, "lastName")
	if last == "" {
		first, last = ingest.SplitName(fallbackString(extractString(athlete, "displayName"), extractString(athlete, "shortName")))
	}

	line := ingest.PlayerLine{
		FirstName:     first,
		LastName:      last,
		Jersey:        parseInt(extractString(athlete, "jersey")),
		Position:      extractString(extractMap(athlete, "position"), "abbreviation"),
		FieldGoals:    parseShotFormat(getStat(statLabelFG)),
		ThreePointers: parseShotFormat(getStat(statLabel3PT)),
		FreeThrows:    parseShotFormat(getStat(statLabelFT)),
		OffRebounds:   parseInt(getStat(statLabelOffReb)),
		DefRebounds:   parseInt(getStat(statLabelDefReb)),
		Assists:       parseInt(getStat(statLabelAst)),
		Steals:        parseInt(getStat(statLabelStl)),
		Blocks:        parseInt(getStat(statLabelBlk)),
		Turnovers:     parseInt(getStat(statLabelTO)),
		Fouls:         parseInt(getStat(statLabelPF)),
	}
	if id := extractString(athlete, "id"); id != "" {
		line.ExternalID = "espn:player:" + id
	}
	return line, true
}

// parseDate accepts RFC 3339 and ESPN's minute-precision form
// ("2025-01-24T00:00Z").
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04Z", s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("parse game date %q: %w", s, err)
	}
	return t.UTC(), nil
}

func extractString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case string:
			return val
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
	}
	return ""
}

func fallbackString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func extractMap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key]; ok {
		if mapVal, ok := v.(map[string]interface{}); ok {
			return mapVal
		}
	}
	return map[string]interface{}{}
}

func extractArray(m map[string]interface{}, key string) []interface{} {
	if v, ok := m[key]; ok {
		if arrVal, ok := v.([]interface{}); ok {
			return arrVal
		}
	}
	return []interface{}{}
}

// parseInt reads a counter cell; "--" and blanks count as zero.
func parseInt(s string) int {
	i, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "+"))
	if err != nil {
		return 0
	}
	return i
}

func parseShotFormat(shotStr string) ingest.Shooting {
	parts := strings.Split(strings.TrimSpace(shotStr), "-")
	if len(parts) != 2 {
		return ingest.Shooting{}
	}
	return ingest.Shooting{Made: parseInt(parts[0]), Attempted: parseInt(parts[1])}
}

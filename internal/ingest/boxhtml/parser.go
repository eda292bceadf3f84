// Package boxhtml reads box scores published as HTML tables.
//
// A page carries one table.box-score per side:
//
//	<div data-game-id="..." data-date="2025-01-23T19:00:00Z">
//	  <table class="box-score" data-side="home" data-team="Pacers" data-city="Indianapolis" data-abbr="IND">
//	    <thead><tr><th>Player</th><th>FG</th><th>3PT</th>...</tr></thead>
//	    <tbody><tr data-player-id="..."><td>Tyrese Haliburton</td><td>7-15</td>...</tr></tbody>
//	  </table>
//	</div>
//
// Columns are matched by header text, so their order is free and either a
// combined "FG" column ("7-15") or split "FGM"/"FGA" columns may be used.
package boxhtml

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/courtside/internal/ingest"
)

// Parse reads a box-score page.
func Parse(r io.Reader) (*ingest.BoxScore, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return ParseDocument(doc)
}

// ParseDocument reads a box score out of an already parsed page.
func ParseDocument(doc *goquery.Document) (*ingest.BoxScore, error) {
	box := &ingest.BoxScore{Source: "html"}

	if id, ok := doc.Find("[data-game-id]").First().Attr("data-game-id"); ok && strings.TrimSpace(id) != "" {
		box.ExternalID = "html:" + strings.TrimSpace(id)
	}
	if raw, ok := doc.Find("[data-date]").First().Attr("data-date"); ok {
		date, err := parseDate(raw)
		if err != nil {
			return nil, err
		}
		box.Date = date
	}

	var seen int
	var parseErr error
	doc.Find("table.box-score").EachWithBreak(func(i int, table *goquery.Selection) bool {
		side := ingest.Side(strings.ToLower(strings.TrimSpace(table.AttrOr("data-side", ""))))
		team := ingest.TeamLine{
			ExternalID:   table.AttrOr("data-team-id", ""),
			Name:         strings.TrimSpace(table.AttrOr("data-team", "")),
			City:         strings.TrimSpace(table.AttrOr("data-city", "")),
			Abbreviation: strings.ToUpper(strings.TrimSpace(table.AttrOr("data-abbr", ""))),
		}
		if team.ExternalID != "" {
			team.ExternalID = "html:team:" + team.ExternalID
		}

		switch side {
		case ingest.SideHome:
			box.Home = team
		case ingest.SideAway:
			box.Away = team
		default:
			parseErr = fmt.Errorf("table %d: data-side must be home or away, got %q", i, side)
			return false
		}
		seen++

		lines, err := parseTable(table, side)
		if err != nil {
			parseErr = fmt.Errorf("%s table: %w", side, err)
			return false
		}
		box.Players = append(box.Players, lines...)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if seen != 2 || box.Home.Label() == "" || box.Away.Label() == "" {
		return nil, fmt.Errorf("expected a home and an away box-score table, found %d tables", seen)
	}

	return box, nil
}

func parseTable(table *goquery.Selection, side ingest.Side) ([]ingest.PlayerLine, error) {
	columns := make(map[string]int)
	table.Find("thead tr").First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
		columns[strings.ToUpper(strings.TrimSpace(cell.Text()))] = i
	})
	nameCol, ok := firstColumn(columns, "PLAYER", "NAME", "STARTERS")
	if !ok {
		return nil, fmt.Errorf("no player column in header")
	}

	var lines []ingest.PlayerLine
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		if row.HasClass("dnp") || row.HasClass("totals") {
			return
		}
		cells := row.Find("td, th").Map(func(_ int, cell *goquery.Selection) string {
			return strings.TrimSpace(cell.Text())
		})
		cell := func(labels ...string) string {
			if idx, ok := firstColumn(columns, labels...); ok && idx < len(cells) {
				return cells[idx]
			}
			return ""
		}

		name := cell("PLAYER", "NAME", "STARTERS")
		if name == "" || len(cells) <= nameCol+1 {
			return
		}
		for _, c := range cells {
			if strings.HasPrefix(strings.ToUpper(c), "DNP") {
				return
			}
		}

		first, last := ingest.SplitName(name)
		line := ingest.PlayerLine{
			FirstName:     first,
			LastName:      last,
			Jersey:        parseInt(strings.TrimPrefix(cell("#", "NO", "JERSEY"), "#")),
			Position:      cell("POS", "POSITION"),
			Side:          side,
			FieldGoals:    shooting(cell("FG"), cell("FGM"), cell("FGA")),
			ThreePointers: shooting(cell("3PT", "3P"), cell("3PM", "FG3M"), cell("3PA", "FG3A")),
			FreeThrows:    shooting(cell("FT"), cell("FTM"), cell("FTA")),
			OffRebounds:   parseInt(cell("OREB", "OR")),
			DefRebounds:   parseInt(cell("DREB", "DR")),
			Assists:       parseInt(cell("AST", "A")),
			Steals:        parseInt(cell("STL", "ST")),
			Blocks:        parseInt(cell("BLK", "BS")),
			Turnovers:     parseInt(cell("TO", "TOV")),
			Fouls:         parseInt(cell("PF", "FOULS")),
		}
		if id, ok := row.Attr("data-player-id"); ok && strings.TrimSpace(id) != "" {
			line.ExternalID = "html:player:" + strings.TrimSpace(id)
		}
		lines = append(lines, line)
	})
	return lines, nil
}

func firstColumn(columns map[string]int, labels ...string) (int, bool) {
	for _, l := range labels {
		if idx, ok := columns[l]; ok {
			return idx, true
		}
	}
	return 0, false
}

// shooting reads a combined "made-attempted" cell, or split made and
// attempted cells when the combined one is absent.
func shooting(combined, made, attempted string) ingest.Shooting {
	if parts := strings.Split(combined, "-"); len(parts) == 2 {
		return ingest.Shooting{Made: parseInt(parts[0]), Attempted: parseInt(parts[1])}
	}
	return ingest.Shooting{Made: parseInt(made), Attempted: parseInt(attempted)}
}

func parseInt(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return i
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse game date %q", s)
}

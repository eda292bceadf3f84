package boxhtml

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/courtside/internal/ingest"
	"github.com/fortuna/courtside/internal/stats"
)

func loadFixture(t *testing.T) *ingest.BoxScore {
	t.Helper()
	box, err := FileSource{Path: filepath.Join("testdata", "pacers_spurs.html")}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return box
}

func findPlayer(t *testing.T, box *ingest.BoxScore, last string) ingest.PlayerLine {
	t.Helper()
	for _, p := range box.Players {
		if p.LastName == last {
			return p
		}
	}
	t.Fatalf("player %s not found in %+v", last, box.Players)
	return ingest.PlayerLine{}
}

func TestParseGameAndTeams(t *testing.T) {
	box := loadFixture(t)

	if box.ExternalID != "html:20250123-SAS-IND" {
		t.Errorf("unexpected external id %q", box.ExternalID)
	}
	if want := time.Date(2025, 1, 24, 0, 0, 0, 0, time.UTC); !box.Date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, box.Date)
	}
	if box.Home.Name != "Pacers" || box.Home.City != "Indianapolis" || box.Home.Abbreviation != "IND" {
		t.Errorf("unexpected home team %+v", box.Home)
	}
	if box.Away.Name != "Spurs" || box.Away.City != "San Antonio" {
		t.Errorf("unexpected away team %+v", box.Away)
	}
}

func TestParseSkipsDidNotPlay(t *testing.T) {
	box := loadFixture(t)

	if len(box.Players) != 4 {
		t.Fatalf("expected 4 players who played, got %d", len(box.Players))
	}
	for _, p := range box.Players {
		if p.LastName == "Bassey" || p.LastName == "Jackson" {
			t.Errorf("DNP row for %s should be skipped", p.FullName())
		}
	}
}

func TestParseCombinedColumns(t *testing.T) {
	box := loadFixture(t)
	p := findPlayer(t, box, "Wembanyama")

	if p.Side != ingest.SideAway || p.FirstName != "Victor" || p.Jersey != 1 || p.Position != "C" {
		t.Errorf("unexpected player identity %+v", p)
	}
	if p.ExternalID != "html:player:1641705" {
		t.Errorf("unexpected external id %q", p.ExternalID)
	}

	want := stats.Counters{
		ThreePointsMade: 3, ThreePointsMissed: 5,
		TwoPointsMade: 6, TwoPointsMissed: 4,
		FreeThrowMade: 4, FreeThrowMissed: 1,
		Steals: 1, Turnovers: 2, Assists: 3, Blocks: 5, Fouls: 3,
		OffRebounds: 2, DefRebounds: 9,
	}
	if got := p.Counters(); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestParseSplitColumns(t *testing.T) {
	box := loadFixture(t)
	p := findPlayer(t, box, "Haliburton")

	if p.Side != ingest.SideHome {
		t.Fatalf("expected home side, got %s", p.Side)
	}
	c := p.Counters()
	if c.TwoPointsMade != 4 || c.TwoPointsMissed != 3 || c.ThreePointsMissed != 5 || c.FreeThrowMissed != 0 {
		t.Errorf("unexpected shooting split %+v", c)
	}
	if c.Points() != 19 || c.Assists != 10 {
		t.Errorf("expected 19 points and 10 assists, got %d and %d", c.Points(), c.Assists)
	}

	siakam := findPlayer(t, box, "Siakam")
	if siakam.ExternalID != "" {
		t.Errorf("rows without data-player-id should have no external id, got %q", siakam.ExternalID)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"no tables", `<html><body><p>nothing</p></body></html>`},
		{"bad side", `<table class="box-score" data-side="neutral" data-team="A"><thead><tr><th>Player</th></tr></thead></table>`},
		{"one side", `<table class="box-score" data-side="home" data-team="A"><thead><tr><th>Player</th></tr></thead></table>`},
		{"no player column", `<table class="box-score" data-side="home" data-team="A"><thead><tr><th>FG</th></tr></thead></table>
			<table class="box-score" data-side="away" data-team="B"><thead><tr><th>FG</th></tr></thead></table>`},
		{"bad date", `<div data-date="yesterday"></div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.html)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestURLSource(t *testing.T) {
	page, err := os.ReadFile(filepath.Join("testdata", "pacers_spurs.html"))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/box" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write(page)
	}))
	defer srv.Close()

	box, err := URLSource{URL: srv.URL + "/box"}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(box.Players) != 4 {
		t.Errorf("expected 4 players, got %d", len(box.Players))
	}

	if _, err := (URLSource{URL: srv.URL + "/missing"}).Fetch(context.Background()); err == nil {
		t.Error("expected an error for a 404 page")
	}
}

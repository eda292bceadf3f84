package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/fortuna/courtside/internal/logger"
	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/storetest"
)

type fixture struct {
	db       *store.Database
	stats    *service.StatsService
	importer *Importer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storetest.DB(t)
	svc := service.NewStatsService(db, service.NopCache(), time.Minute, service.NopPublisher(), logger.Nop())
	return &fixture{db: db, stats: svc, importer: NewImporter(db, svc, logger.Nop())}
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.DB().Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func sampleBox(id string) *BoxScore {
	return &BoxScore{
		ExternalID: id,
		Source:     "test",
		Date:       time.Date(2025, 1, 23, 0, 0, 0, 0, time.UTC),
		Home:       TeamLine{ExternalID: "t:ind", Name: "Pacers", City: "Indiana", Abbreviation: "IND"},
		Away:       TeamLine{ExternalID: "t:sas", Name: "Spurs", City: "San Antonio", Abbreviation: "SA"},
		Players: []PlayerLine{
			{
				ExternalID: "p:hali", FirstName: "Tyrese", LastName: "Haliburton", Jersey: 0, Position: "G", Side: SideHome,
				FieldGoals: Shooting{7, 15}, ThreePointers: Shooting{3, 8}, FreeThrows: Shooting{2, 2}, Assists: 10,
			},
			{
				ExternalID: "p:wemby", FirstName: "Victor", LastName: "Wembanyama", Jersey: 1, Position: "C", Side: SideAway,
				FieldGoals: Shooting{9, 18}, ThreePointers: Shooting{3, 8}, FreeThrows: Shooting{4, 5}, Blocks: 5,
			},
			{
				FirstName: "Chris", LastName: "Paul", Jersey: 3, Position: "G", Side: SideAway,
				FieldGoals: Shooting{4, 9}, ThreePointers: Shooting{1, 4}, FreeThrows: Shooting{2, 2}, Assists: 11,
			},
		},
	}
}

func TestImportCreatesEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.importer.Import(ctx, sampleBox("g:1"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !res.GameCreated || res.Players != 3 || res.Key != "g:1" {
		t.Errorf("unexpected result %+v", res)
	}

	if n := f.count(t, &store.Team{}); n != 2 {
		t.Errorf("expected 2 teams, got %d", n)
	}
	if n := f.count(t, &store.Player{}); n != 3 {
		t.Errorf("expected 3 players, got %d", n)
	}
	if n := f.count(t, &store.Stat{}); n != 3 {
		t.Errorf("expected 3 stat rows, got %d", n)
	}

	score, err := f.stats.GameScore(ctx, res.GameID)
	if err != nil {
		t.Fatalf("game score: %v", err)
	}
	if score.HomeTeamScore != 19 || score.AwayTeamScore != 36 {
		t.Errorf("expected 19-36, got %d-%d", score.HomeTeamScore, score.AwayTeamScore)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.importer.Import(ctx, sampleBox("g:1"))
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := f.importer.Import(ctx, sampleBox("g:1"))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}

	if second.GameCreated || second.GameID != first.GameID {
		t.Errorf("expected the same game to be reused, got %+v then %+v", first, second)
	}
	if n := f.count(t, &store.Stat{}); n != 3 {
		t.Errorf("expected 3 stat rows, got %d", n)
	}
	if n := f.count(t, &store.Player{}); n != 3 {
		t.Errorf("expected 3 players, got %d", n)
	}

	score, err := f.stats.GameScore(ctx, first.GameID)
	if err != nil {
		t.Fatalf("game score: %v", err)
	}
	if score.HomeTeamScore != 19 || score.AwayTeamScore != 36 {
		t.Errorf("re-import must not double count, got %d-%d", score.HomeTeamScore, score.AwayTeamScore)
	}
}

func TestReimportConvergesToNewTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.importer.Import(ctx, sampleBox("g:1"))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	revised := sampleBox("g:1")
	revised.Players[0].Assists = 8
	revised.Players[0].Steals = 2
	if _, err := f.importer.Import(ctx, revised); err != nil {
		t.Fatalf("re-import: %v", err)
	}

	rows, err := f.stats.GameStats(ctx, res.GameID)
	if err != nil {
		t.Fatalf("game stats: %v", err)
	}
	var found bool
	for _, row := range rows {
		if row.Counters == revised.Players[0].Counters() {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a row equal to the revised line %+v", revised.Players[0].Counters())
	}
}

func TestImportMatchesExistingRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pacers := storetest.SeedTeam(t, f.db, "Pacers", "Indianapolis")
	hali := storetest.SeedPlayer(t, f.db, storetest.IntPtr(pacers.TeamID), "Tyrese", "Haliburton")

	box := sampleBox("g:1")
	box.Players[0].ExternalID = ""
	if _, err := f.importer.Import(ctx, box); err != nil {
		t.Fatalf("import: %v", err)
	}

	if n := f.count(t, &store.Team{}); n != 2 {
		t.Errorf("expected the seeded team to be reused, got %d teams", n)
	}
	if n := f.count(t, &store.Player{}); n != 3 {
		t.Errorf("expected the seeded player to be reused, got %d players", n)
	}

	var tagged store.Team
	if err := f.db.DB().Where("team_id = ?", pacers.TeamID).Take(&tagged).Error; err != nil {
		t.Fatal(err)
	}
	if tagged.ExternalID == nil || *tagged.ExternalID != "t:ind" {
		t.Errorf("expected the matched team to be tagged with its external id, got %v", tagged.ExternalID)
	}

	totals, err := f.stats.PlayerTotals(ctx, hali.PlayerID)
	if err != nil {
		t.Fatalf("player totals: %v", err)
	}
	if totals.Points != 19 {
		t.Errorf("expected 19 points on the seeded player, got %d", totals.Points)
	}
}

func TestImportRejectsInvalidBox(t *testing.T) {
	f := newFixture(t)

	box := sampleBox("g:1")
	box.Players[1].Side = ""
	if _, err := f.importer.Import(context.Background(), box); err == nil {
		t.Fatal("expected an error")
	}
	if n := f.count(t, &store.Team{}); n != 0 {
		t.Errorf("nothing should be written for an invalid box, got %d teams", n)
	}
}

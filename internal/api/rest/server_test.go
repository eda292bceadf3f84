package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/fortuna/courtside/internal/logger"
	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/storetest"
)

type testServer struct {
	t      *testing.T
	db     *store.Database
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := storetest.DB(t)
	h := NewHandler(db, Options{}, logger.Nop())
	return &testServer{t: t, db: db, router: NewRouter(h, logger.Nop())}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func statBody(playerID, gameID int, c stats.Counters) map[string]interface{} {
	body := map[string]interface{}{"Player_ID": playerID, "Game_ID": gameID}
	for _, f := range stats.Fields() {
		body[f.Name] = f.Get(c)
	}
	return body
}

func TestTeamsLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do("POST", "/Teams", map[string]string{"Team_Name": "Warriors", "Team_City": "San Francisco"})
	expectStatus(t, rec, http.StatusCreated)
	var team store.Team
	decodeBody(t, rec, &team)
	if team.TeamID == 0 || team.Name != "Warriors" {
		t.Fatalf("unexpected team %+v", team)
	}
	if loc := rec.Header().Get("Location"); loc != "/Teams/1" {
		t.Fatalf("unexpected Location %q", loc)
	}

	rec = s.do("GET", "/Teams", nil)
	expectStatus(t, rec, http.StatusOK)
	var list []map[string]interface{}
	decodeBody(t, rec, &list)
	if len(list) != 1 || list[0]["Team_Name"] != "Warriors" || list[0]["Team_City"] != "San Francisco" {
		t.Fatalf("unexpected list %+v", list)
	}
	if _, leaked := list[0]["external_id"]; leaked {
		t.Fatal("external id must not be serialized")
	}

	expectStatus(t, s.do("GET", "/Teams/1", nil), http.StatusOK)
	expectStatus(t, s.do("GET", "/Teams/ByName/Warriors", nil), http.StatusOK)

	expectStatus(t, s.do("DELETE", "/Teams/1", nil), http.StatusNoContent)
	expectStatus(t, s.do("GET", "/Teams/1", nil), http.StatusNotFound)
	expectStatus(t, s.do("DELETE", "/Teams/1", nil), http.StatusNotFound)
}

func TestTeamsByNameNotFoundNamesValue(t *testing.T) {
	s := newTestServer(t)

	rec := s.do("GET", "/Teams/ByName/Supersonics", nil)
	expectStatus(t, rec, http.StatusNotFound)
	var body map[string]interface{}
	decodeBody(t, rec, &body)
	if msg, _ := body["error"].(string); !strings.Contains(msg, "Supersonics") {
		t.Fatalf("expected message naming the queried value, got %q", msg)
	}
}

func TestPlayersRequireExistingTeam(t *testing.T) {
	s := newTestServer(t)
	team := storetest.SeedTeam(t, s.db, "Spurs", "San Antonio")

	rec := s.do("POST", "/Players", map[string]interface{}{
		"Team_ID": 9999, "First_Name": "A", "Last_Name": "B", "Position_ID": "F", "Jersey_Number": 1,
	})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do("POST", "/Players", map[string]interface{}{
		"Team_ID": team.TeamID, "First_Name": "Victor", "Last_Name": "Wembanyama", "Position_ID": "C", "Jersey_Number": 1,
	})
	expectStatus(t, rec, http.StatusCreated)
	var player map[string]interface{}
	decodeBody(t, rec, &player)
	if player["Last_Name"] != "Wembanyama" || player["Jersey_Number"] != float64(1) {
		t.Fatalf("unexpected player %+v", player)
	}

	expectStatus(t, s.do("GET", "/Players", nil), http.StatusOK)
	expectStatus(t, s.do("DELETE", "/Players/1", nil), http.StatusNoContent)
	expectStatus(t, s.do("GET", "/Players/1", nil), http.StatusNotFound)
}

func TestGamesRequireExistingTeams(t *testing.T) {
	s := newTestServer(t)
	home := storetest.SeedTeam(t, s.db, "Kings", "Sacramento")
	away := storetest.SeedTeam(t, s.db, "Blazers", "Portland")

	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"missing home", map[string]interface{}{"Home_ID": 9999, "Away_ID": away.TeamID, "Game_Date": "2024-02-01"}, http.StatusBadRequest},
		{"missing away", map[string]interface{}{"Home_ID": home.TeamID, "Away_ID": 9999, "Game_Date": "2024-02-01"}, http.StatusBadRequest},
		{"bad date", map[string]interface{}{"Home_ID": home.TeamID, "Away_ID": away.TeamID, "Game_Date": "tomorrow"}, http.StatusBadRequest},
		{"zulu date", map[string]interface{}{"Home_ID": home.TeamID, "Away_ID": away.TeamID, "Game_Date": "2024-02-01T19:00:00Z"}, http.StatusCreated},
		{"zoneless date", map[string]interface{}{"Home_ID": home.TeamID, "Away_ID": away.TeamID, "Game_Date": "2024-02-02T19:00:00"}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, s.do("POST", "/Games", tt.body), tt.want)
		})
	}

	rec := s.do("GET", "/Games", nil)
	expectStatus(t, rec, http.StatusOK)
	var games []store.Game
	decodeBody(t, rec, &games)
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
}

func TestInvalidBody(t *testing.T) {
	s := newTestServer(t)
	expectStatus(t, s.do("POST", "/Teams", "{not json"), http.StatusBadRequest)
	expectStatus(t, s.do("POST", "/Stats", "[]"), http.StatusBadRequest)
}

func TestStatUpsertOverHTTP(t *testing.T) {
	s := newTestServer(t)
	home := storetest.SeedTeam(t, s.db, "Home", "H")
	away := storetest.SeedTeam(t, s.db, "Away", "A")
	player := storetest.SeedPlayer(t, s.db, storetest.IntPtr(home.TeamID), "P", "One")
	game := storetest.SeedGame(t, s.db, home.TeamID, away.TeamID)

	rec := s.do("POST", "/Stats", statBody(player.PlayerID, game.GameID, stats.Counters{ThreePointsMade: 3, Assists: 2}))
	expectStatus(t, rec, http.StatusCreated)
	var created store.Stat
	decodeBody(t, rec, &created)
	if created.ThreePointsMade != 3 || created.Assists != 2 {
		t.Fatalf("created row should equal submitted deltas, got %+v", created.Counters)
	}
	if rec.Header().Get("Location") == "" {
		t.Fatal("expected Location header on create")
	}

	rec = s.do("POST", "/Stats", statBody(player.PlayerID, game.GameID, stats.Counters{ThreePointsMade: 2}))
	expectStatus(t, rec, http.StatusOK)
	var updated store.Stat
	decodeBody(t, rec, &updated)
	if updated.StatID != created.StatID || updated.ThreePointsMade != 5 || updated.Assists != 2 {
		t.Fatalf("expected accumulated row, got %+v", updated)
	}

	rec = s.do("GET", "/Stats", nil)
	expectStatus(t, rec, http.StatusOK)
	var rows []store.Stat
	decodeBody(t, rec, &rows)
	if len(rows) != 1 {
		t.Fatalf("expected one row for the pair, got %d", len(rows))
	}
}

func TestStatForeignKeyGuard(t *testing.T) {
	s := newTestServer(t)
	home := storetest.SeedTeam(t, s.db, "Home", "H")
	player := storetest.SeedPlayer(t, s.db, storetest.IntPtr(home.TeamID), "P", "One")
	game := storetest.SeedGame(t, s.db, home.TeamID, home.TeamID)

	expectStatus(t, s.do("POST", "/Stats", statBody(9999, game.GameID, stats.Counters{Steals: 1})), http.StatusBadRequest)
	expectStatus(t, s.do("POST", "/Stats", statBody(player.PlayerID, 9999, stats.Counters{Steals: 1})), http.StatusBadRequest)
	expectStatus(t, s.do("POST", "/Stats", statBody(player.PlayerID, game.GameID, stats.Counters{Steals: -1})), http.StatusBadRequest)

	rec := s.do("GET", "/Stats", nil)
	expectStatus(t, rec, http.StatusOK)
	var rows []store.Stat
	decodeBody(t, rec, &rows)
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestGameScoreOverHTTP(t *testing.T) {
	s := newTestServer(t)
	home := storetest.SeedTeam(t, s.db, "Home", "H")
	away := storetest.SeedTeam(t, s.db, "Away", "A")
	a := storetest.SeedPlayer(t, s.db, storetest.IntPtr(home.TeamID), "A", "A")
	b := storetest.SeedPlayer(t, s.db, storetest.IntPtr(away.TeamID), "B", "B")
	game := storetest.SeedGame(t, s.db, home.TeamID, away.TeamID)

	expectStatus(t, s.do("GET", "/Stats/GameScore/1", nil), http.StatusNotFound)
	expectStatus(t, s.do("GET", "/Stats/GameScore/77", nil), http.StatusNotFound)

	expectStatus(t, s.do("POST", "/Stats", statBody(a.PlayerID, game.GameID, stats.Counters{ThreePointsMade: 2, TwoPointsMade: 1, FreeThrowMade: 1})), http.StatusCreated)
	expectStatus(t, s.do("POST", "/Stats", statBody(b.PlayerID, game.GameID, stats.Counters{ThreePointsMade: 1, TwoPointsMade: 2})), http.StatusCreated)

	rec := s.do("GET", "/Stats/GameScore/1", nil)
	expectStatus(t, rec, http.StatusOK)
	var score map[string]int
	decodeBody(t, rec, &score)
	if score["GameId"] != game.GameID || score["HomeTeamScore"] != 9 || score["AwayTeamScore"] != 7 {
		t.Fatalf("unexpected score %+v", score)
	}
}

func TestAggregateEndpoints(t *testing.T) {
	s := newTestServer(t)
	home := storetest.SeedTeam(t, s.db, "Home", "H")
	away := storetest.SeedTeam(t, s.db, "Away", "A")
	a := storetest.SeedPlayer(t, s.db, storetest.IntPtr(home.TeamID), "A", "A")
	g1 := storetest.SeedGame(t, s.db, home.TeamID, away.TeamID)
	g2 := storetest.SeedGame(t, s.db, away.TeamID, home.TeamID)
	storetest.SeedStat(t, s.db, a.PlayerID, g1.GameID, stats.Counters{Steals: 2, TwoPointsMade: 3})
	storetest.SeedStat(t, s.db, a.PlayerID, g2.GameID, stats.Counters{Steals: 1, TwoPointsMade: 4})

	rec := s.do("GET", "/Stats/Player/1", nil)
	expectStatus(t, rec, http.StatusOK)
	var totals stats.Totals
	decodeBody(t, rec, &totals)
	if totals.Steals != 3 || totals.TwoPointsMade != 7 || totals.Points != 14 {
		t.Fatalf("unexpected player totals %+v", totals)
	}

	rec = s.do("GET", "/Stats/Team/1/AllTime", nil)
	expectStatus(t, rec, http.StatusOK)
	var teamTotals []stats.Totals
	decodeBody(t, rec, &teamTotals)
	if len(teamTotals) != 1 || teamTotals[0].Steals != 3 {
		t.Fatalf("unexpected team totals %+v", teamTotals)
	}

	rec = s.do("GET", "/Stats/Team/1/Game/2", nil)
	expectStatus(t, rec, http.StatusOK)
	var rows []store.Stat
	decodeBody(t, rec, &rows)
	if len(rows) != 1 || rows[0].GameID != g2.GameID {
		t.Fatalf("unexpected team game rows %+v", rows)
	}

	expectStatus(t, s.do("GET", "/Stats/Game/1", nil), http.StatusOK)
	expectStatus(t, s.do("GET", "/Stats/Team/2/AllTime", nil), http.StatusNotFound)
	expectStatus(t, s.do("GET", "/Stats/Team/2/Game/1", nil), http.StatusNotFound)
	expectStatus(t, s.do("GET", "/Stats/Player/99", nil), http.StatusNotFound)
}

func TestStatActionAndCorrection(t *testing.T) {
	s := newTestServer(t)
	home := storetest.SeedTeam(t, s.db, "Home", "H")
	a := storetest.SeedPlayer(t, s.db, storetest.IntPtr(home.TeamID), "A", "A")
	game := storetest.SeedGame(t, s.db, home.TeamID, home.TeamID)

	action := map[string]interface{}{"Player_ID": a.PlayerID, "Game_ID": game.GameID, "Action": "foul"}
	expectStatus(t, s.do("POST", "/Stats/Action", action), http.StatusCreated)
	expectStatus(t, s.do("POST", "/Stats/Action", action), http.StatusOK)
	action["Action"] = "flop"
	expectStatus(t, s.do("POST", "/Stats/Action", action), http.StatusBadRequest)

	expectStatus(t, s.do("POST", "/Stats/Correction", statBody(a.PlayerID, game.GameID, stats.Counters{Fouls: -3})), http.StatusBadRequest)
	rec := s.do("POST", "/Stats/Correction", statBody(a.PlayerID, game.GameID, stats.Counters{Fouls: -1}))
	expectStatus(t, rec, http.StatusOK)
	var row store.Stat
	decodeBody(t, rec, &row)
	if row.Fouls != 1 {
		t.Fatalf("expected 1 foul after correction, got %d", row.Fouls)
	}
}

func TestStatNotFoundAndDelete(t *testing.T) {
	s := newTestServer(t)
	home := storetest.SeedTeam(t, s.db, "Home", "H")
	a := storetest.SeedPlayer(t, s.db, storetest.IntPtr(home.TeamID), "A", "A")
	game := storetest.SeedGame(t, s.db, home.TeamID, home.TeamID)
	seeded := storetest.SeedStat(t, s.db, a.PlayerID, game.GameID, stats.Counters{})

	expectStatus(t, s.do("GET", "/Stats/424242", nil), http.StatusNotFound)
	expectStatus(t, s.do("DELETE", "/Stats/424242", nil), http.StatusNotFound)

	path := "/Stats/" + strconv.Itoa(seeded.StatID)
	expectStatus(t, s.do("GET", path, nil), http.StatusOK)
	expectStatus(t, s.do("DELETE", path, nil), http.StatusNoContent)
	expectStatus(t, s.do("GET", path, nil), http.StatusNotFound)
}

func TestHealthAndTestConnection(t *testing.T) {
	s := newTestServer(t)

	rec := s.do("GET", "/health", nil)
	expectStatus(t, rec, http.StatusOK)
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["database"] != "ok" || body["cache"] != "disabled" {
		t.Fatalf("unexpected health %+v", body)
	}

	rec = s.do("GET", "/TestConnection", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Result: 1") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	s := newTestServer(t)
	if err := s.db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rec := s.do("GET", "/Teams", nil)
	expectStatus(t, rec, http.StatusInternalServerError)
	var body map[string]interface{}
	decodeBody(t, rec, &body)
	if body["error"] != internalMessage {
		t.Fatalf("expected generic message, got %+v", body)
	}
	if _, ok := body["details"]; ok {
		t.Fatal("internal details must not be returned")
	}
}

func TestMiddleware(t *testing.T) {
	s := newTestServer(t)

	rec := s.do("GET", "/Teams", nil)
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS header")
	}

	expectStatus(t, s.do("OPTIONS", "/Stats", nil), http.StatusNoContent)
	expectStatus(t, s.do("GET", "/Nope", nil), http.StatusNotFound)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected caller request id to be echoed, got %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestUnmatchedRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/Nope", http.StatusNotFound},
		{"GET", "/Stats/abc", http.StatusNotFound},
		{"GET", "/Teams/x", http.StatusNotFound},
		{"DELETE", "/Players/ByName/x", http.StatusNotFound},
		{"PUT", "/Teams", http.StatusMethodNotAllowed},
		{"PATCH", "/Stats/1", http.StatusMethodNotAllowed},
		{"OPTIONS", "/Teams/1", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, nil)
			expectStatus(t, rec, tt.want)
			if tt.want == http.StatusNoContent {
				return
			}
			var body map[string]interface{}
			decodeBody(t, rec, &body)
			if body["error"] == "" || body["error"] == nil {
				t.Fatalf("expected an error message, got %s", rec.Body.String())
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	expectStatus(t, rec, http.StatusInternalServerError)
}

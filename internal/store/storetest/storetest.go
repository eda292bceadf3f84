// Package storetest opens throwaway SQLite databases and seeds rows for
// package tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
)

// DB opens a migrated SQLite database under tb's temp dir and closes it on
// cleanup.
func DB(tb testing.TB) *store.Database {
	tb.Helper()
	dsn := filepath.Join(tb.TempDir(), "courtside.db") + "?_pragma=busy_timeout(5000)"
	db, err := store.OpenSQLite(dsn, nil)
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })
	if err := db.AutoMigrate(); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func SeedTeam(tb testing.TB, db *store.Database, name, city string) *store.Team {
	tb.Helper()
	t := &store.Team{Name: name, City: city}
	if err := db.DB().WithContext(context.Background()).Create(t).Error; err != nil {
		tb.Fatalf("seed team: %v", err)
	}
	return t
}

func SeedPlayer(tb testing.TB, db *store.Database, teamID *int, first, last string) *store.Player {
	tb.Helper()
	p := &store.Player{TeamID: teamID, FirstName: first, LastName: last, PositionID: "G", JerseyNumber: 1}
	if err := db.DB().WithContext(context.Background()).Create(p).Error; err != nil {
		tb.Fatalf("seed player: %v", err)
	}
	return p
}

func SeedGame(tb testing.TB, db *store.Database, homeID, awayID int) *store.Game {
	tb.Helper()
	g := &store.Game{HomeID: homeID, AwayID: awayID, GameDate: time.Date(2024, 1, 15, 19, 30, 0, 0, time.UTC)}
	if err := db.DB().WithContext(context.Background()).Create(g).Error; err != nil {
		tb.Fatalf("seed game: %v", err)
	}
	return g
}

func SeedStat(tb testing.TB, db *store.Database, playerID, gameID int, c stats.Counters) *store.Stat {
	tb.Helper()
	s := &store.Stat{PlayerID: playerID, GameID: gameID, Counters: c}
	if err := db.DB().WithContext(context.Background()).Create(s).Error; err != nil {
		tb.Fatalf("seed stat: %v", err)
	}
	return s
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

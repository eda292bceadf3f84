package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/courtside/internal/logger"
	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// StatsService handles stat recording and aggregation
type StatsService struct {
	statsRepo  *repository.StatsRepository
	playerRepo *repository.PlayerRepository
	teamRepo   *repository.TeamRepository
	gameRepo   *repository.GameRepository
	cache      Cache
	cacheTTL   time.Duration
	publisher  Publisher
	log        *logger.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(db *store.Database, cache Cache, cacheTTL time.Duration, publisher Publisher, log *logger.Logger) *StatsService {
	return &StatsService{
		statsRepo:  repository.NewStatsRepository(db),
		playerRepo: repository.NewPlayerRepository(db),
		teamRepo:   repository.NewTeamRepository(db),
		gameRepo:   repository.NewGameRepository(db),
		cache:      cache,
		cacheTTL:   cacheTTL,
		publisher:  publisher,
		log:        log.With("service", "StatsService"),
	}
}

// Submission is a set of counter deltas for one player in one game.
type Submission struct {
	PlayerID int `json:"Player_ID"`
	GameID   int `json:"Game_ID"`
	stats.Counters
}

// ActionSubmission records a single play-by-play event.
type ActionSubmission struct {
	PlayerID int    `json:"Player_ID"`
	GameID   int    `json:"Game_ID"`
	Action   string `json:"Action"`
}

// List returns every stat row
func (s *StatsService) List(ctx context.Context) ([]*store.Stat, error) {
	rows, err := s.statsRepo.GetAll(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	return rows, nil
}

// Get returns one stat row
func (s *StatsService) Get(ctx context.Context, statID int) (*store.Stat, error) {
	row, err := s.statsRepo.GetByID(ctx, statID)
	if err != nil {
		return nil, lookup(err, "Stat with ID '%d' not found.", statID)
	}
	return row, nil
}

// Record adds a submission to the (player, game) row, creating it on first
// use. created is true when a new row was inserted.
func (s *StatsService) Record(ctx context.Context, sub Submission) (row *store.Stat, created bool, err error) {
	if err := s.checkRefs(ctx, sub.PlayerID, sub.GameID); err != nil {
		return nil, false, err
	}
	if name, neg := sub.Negative(); neg {
		return nil, false, BadRequest("%s must not be negative; submit a correction instead", name)
	}

	row, created, err = s.statsRepo.Upsert(ctx, sub.PlayerID, sub.GameID, sub.Counters)
	if err != nil {
		return nil, false, Internal(err)
	}

	event := EventStatUpdated
	if created {
		event = EventStatCreated
	}
	s.afterWrite(ctx, event, row)
	return row, created, nil
}

// RecordAction maps a play-by-play action to a one-unit delta and records it.
func (s *StatsService) RecordAction(ctx context.Context, sub ActionSubmission) (*store.Stat, bool, error) {
	delta, ok := stats.ActionDelta(sub.Action)
	if !ok {
		return nil, false, BadRequest("Unknown action '%s'.", sub.Action)
	}
	return s.Record(ctx, Submission{PlayerID: sub.PlayerID, GameID: sub.GameID, Counters: delta})
}

// Correct applies signed deltas to an existing row. It fails without
// touching the row if any counter would drop below zero.
func (s *StatsService) Correct(ctx context.Context, sub Submission) (*store.Stat, error) {
	if err := s.checkRefs(ctx, sub.PlayerID, sub.GameID); err != nil {
		return nil, err
	}

	row, err := s.statsRepo.Correct(ctx, sub.PlayerID, sub.GameID, sub.Counters)
	switch {
	case errors.Is(err, repository.ErrNegativeCounter):
		return nil, BadRequest("Correction would make a counter negative.")
	case err != nil:
		return nil, lookup(err, "No stats recorded for player '%d' in game '%d'.", sub.PlayerID, sub.GameID)
	}

	s.afterWrite(ctx, EventStatCorrected, row)
	return row, nil
}

// SetTotals makes the (player, game) row equal target, creating it if
// needed. Importers use it so re-running an import does not double count.
func (s *StatsService) SetTotals(ctx context.Context, playerID, gameID int, target stats.Counters) (*store.Stat, error) {
	existing, err := s.statsRepo.GetForPlayerInGame(ctx, playerID, gameID)
	if errors.Is(err, repository.ErrNotFound) {
		row, _, err := s.Record(ctx, Submission{PlayerID: playerID, GameID: gameID, Counters: target})
		return row, err
	}
	if err != nil {
		return nil, Internal(err)
	}
	if existing.Counters == target {
		return existing, nil
	}
	return s.Correct(ctx, Submission{PlayerID: playerID, GameID: gameID, Counters: target.Sub(existing.Counters)})
}

// Delete removes a stat row
func (s *StatsService) Delete(ctx context.Context, statID int) error {
	row, err := s.statsRepo.Delete(ctx, statID)
	if err != nil {
		return lookup(err, "Stat with ID '%d' not found.", statID)
	}
	s.afterWrite(ctx, EventStatDeleted, row)
	return nil
}

// PlayerTotals sums a player's counters across every game.
func (s *StatsService) PlayerTotals(ctx context.Context, playerID int) (*stats.Totals, error) {
	key := fmt.Sprintf("totals:player:%d", playerID)
	var cached stats.Totals
	gen, hit := s.cached(ctx, key, &cached)
	if hit {
		return &cached, nil
	}

	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		return nil, lookup(err, "Player with ID '%d' not found.", playerID)
	}
	rows, err := s.statsRepo.GetByPlayer(ctx, playerID)
	if err != nil {
		return nil, Internal(err)
	}
	totals, ok := stats.TotalsForPlayer(playerID, store.Lines(rows))
	if !ok {
		return nil, NotFound("No stats recorded for player '%d'.", playerID)
	}

	s.put(ctx, gen, key, totals)
	return &totals, nil
}

// GameStats returns every row recorded for a game.
func (s *StatsService) GameStats(ctx context.Context, gameID int) ([]*store.Stat, error) {
	if _, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		return nil, lookup(err, "Game with ID '%d' not found.", gameID)
	}
	rows, err := s.statsRepo.GetByGame(ctx, gameID)
	if err != nil {
		return nil, Internal(err)
	}
	if len(rows) == 0 {
		return nil, NotFound("No stats recorded for game '%d'.", gameID)
	}
	return rows, nil
}

// GameScore totals points for the home and away sides of a game. Each stat
// row counts for its player's current team.
func (s *StatsService) GameScore(ctx context.Context, gameID int) (*stats.Score, error) {
	key := fmt.Sprintf("score:game:%d", gameID)
	var cached stats.Score
	gen, hit := s.cached(ctx, key, &cached)
	if hit {
		return &cached, nil
	}

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, lookup(err, "Game with ID '%d' not found.", gameID)
	}
	rows, err := s.statsRepo.GetByGame(ctx, gameID)
	if err != nil {
		return nil, Internal(err)
	}
	if len(rows) == 0 {
		return nil, NotFound("No stats recorded for game '%d'.", gameID)
	}

	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.PlayerID)
	}
	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, Internal(err)
	}
	teamOf := make(map[int]int, len(players))
	for _, p := range players {
		if p.TeamID != nil {
			teamOf[p.PlayerID] = *p.TeamID
		}
	}

	score := stats.GameScore(game.GameID, game.HomeID, game.AwayID, store.Lines(rows), func(playerID int) (int, bool) {
		t, ok := teamOf[playerID]
		return t, ok
	})

	s.put(ctx, gen, key, score)
	return &score, nil
}

// TeamGameStats returns the rows recorded in a game by the team's current
// roster.
func (s *StatsService) TeamGameStats(ctx context.Context, teamID, gameID int) ([]*store.Stat, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return nil, lookup(err, "Team with ID '%d' not found.", teamID)
	}
	if _, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		return nil, lookup(err, "Game with ID '%d' not found.", gameID)
	}
	rows, err := s.statsRepo.GetByTeam(ctx, teamID, gameID)
	if err != nil {
		return nil, Internal(err)
	}
	if len(rows) == 0 {
		return nil, NotFound("No stats recorded for team '%d' in game '%d'.", teamID, gameID)
	}
	return rows, nil
}

// TeamAllTime returns per-player totals across every game for the team's
// current roster.
func (s *StatsService) TeamAllTime(ctx context.Context, teamID int) ([]stats.Totals, error) {
	key := fmt.Sprintf("totals:team:%d", teamID)
	var cached []stats.Totals
	gen, hit := s.cached(ctx, key, &cached)
	if hit {
		return cached, nil
	}

	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return nil, lookup(err, "Team with ID '%d' not found.", teamID)
	}
	rows, err := s.statsRepo.GetByTeam(ctx, teamID, 0)
	if err != nil {
		return nil, Internal(err)
	}
	if len(rows) == 0 {
		return nil, NotFound("No stats recorded for team '%d'.", teamID)
	}

	totals := stats.TotalsByPlayer(store.Lines(rows))
	s.put(ctx, gen, key, totals)
	return totals, nil
}

// checkRefs verifies the player and game exist before any stat write.
func (s *StatsService) checkRefs(ctx context.Context, playerID, gameID int) error {
	ok, err := s.playerRepo.Exists(ctx, playerID)
	if err != nil {
		return Internal(err)
	}
	if !ok {
		return BadRequest("Player with given Player_ID does not exist")
	}
	ok, err = s.gameRepo.Exists(ctx, gameID)
	if err != nil {
		return Internal(err)
	}
	if !ok {
		return BadRequest("Game with given Game_ID does not exist")
	}
	return nil
}

func (s *StatsService) afterWrite(ctx context.Context, event string, row *store.Stat) {
	invalidate(ctx, s.cache, s.log)
	if err := s.publisher.PublishStatEvent(ctx, event, row); err != nil {
		s.log.Warn("publishing stat event failed", "event", event, "stat_id", row.StatID, "error", err)
	}
	s.log.Debug("stat written", "event", event, "stat_id", row.StatID, "player_id", row.PlayerID, "game_id", row.GameID)
}

// cached looks key up in the current generation. gen is -1 when the cache
// is unavailable, which tells put to skip the store.
func (s *StatsService) cached(ctx context.Context, key string, dest interface{}) (gen int64, hit bool) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "error", err)
		return -1, false
	}
	hit, err = s.cache.Get(ctx, gen, key, dest)
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "error", err)
		return gen, false
	}
	return gen, hit
}

// put stores value under the generation it was computed in.
func (s *StatsService) put(ctx context.Context, gen int64, key string, value interface{}) {
	if gen < 0 {
		return
	}
	if err := s.cache.Set(ctx, gen, key, value, s.cacheTTL); err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
	}
}

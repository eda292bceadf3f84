package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
)

// StatsRepository handles stat row access
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetAll returns every stat row ordered by id
func (r *StatsRepository) GetAll(ctx context.Context) ([]*store.Stat, error) {
	var rows []*store.Stat
	if err := r.db.DB().WithContext(ctx).Order("stat_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	return rows, nil
}

// GetByID finds a stat row by ID
func (r *StatsRepository) GetByID(ctx context.Context, statID int) (*store.Stat, error) {
	row := &store.Stat{}
	err := r.db.DB().WithContext(ctx).Where("stat_id = ?", statID).Take(row).Error
	if isNotFound(err) {
		return nil, fmt.Errorf("stat %d: %w", statID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying stat: %w", err)
	}
	return row, nil
}

// GetForPlayerInGame finds the single row keyed by (player, game)
func (r *StatsRepository) GetForPlayerInGame(ctx context.Context, playerID, gameID int) (*store.Stat, error) {
	return getForPlayerInGame(r.db.DB().WithContext(ctx), playerID, gameID)
}

// GetByPlayer returns a player's rows across all games
func (r *StatsRepository) GetByPlayer(ctx context.Context, playerID int) ([]*store.Stat, error) {
	var rows []*store.Stat
	err := r.db.DB().WithContext(ctx).Where("player_id = ?", playerID).Order("game_id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying player stats: %w", err)
	}
	return rows, nil
}

// GetByGame returns every row recorded for a game
func (r *StatsRepository) GetByGame(ctx context.Context, gameID int) ([]*store.Stat, error) {
	var rows []*store.Stat
	err := r.db.DB().WithContext(ctx).Where("game_id = ?", gameID).Order("player_id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying game stats: %w", err)
	}
	return rows, nil
}

// GetByTeam returns rows for the team's current roster, optionally limited
// to one game (gameID > 0).
func (r *StatsRepository) GetByTeam(ctx context.Context, teamID, gameID int) ([]*store.Stat, error) {
	db := r.db.DB().WithContext(ctx)
	roster := db.Model(&store.Player{}).Select("player_id").Where("team_id = ?", teamID)

	q := db.Where("player_id IN (?)", roster)
	if gameID > 0 {
		q = q.Where("game_id = ?", gameID)
	}

	var rows []*store.Stat
	if err := q.Order("player_id, game_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying team stats: %w", err)
	}
	return rows, nil
}

// Upsert adds delta to the row for (player, game), creating it when absent.
// created reports whether a new row was inserted.
func (r *StatsRepository) Upsert(ctx context.Context, playerID, gameID int, delta stats.Counters) (row *store.Stat, created bool, err error) {
	err = r.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := getForPlayerInGame(tx, playerID, gameID)
		switch {
		case err == nil:
			res := tx.Model(&store.Stat{}).
				Where("stat_id = ?", existing.StatID).
				Updates(increments(delta))
			if res.Error != nil {
				return fmt.Errorf("incrementing stat: %w", res.Error)
			}
		case errors.Is(err, ErrNotFound):
			fresh := &store.Stat{PlayerID: playerID, GameID: gameID, Counters: delta}
			// A concurrent insert for the same pair lands on the unique
			// index; fold this submission into it instead of failing.
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "player_id"}, {Name: "game_id"}},
				DoUpdates: accumulate(),
			}).Create(fresh)
			if res.Error != nil {
				return fmt.Errorf("inserting stat: %w", res.Error)
			}
			created = true
		default:
			return err
		}

		row, err = getForPlayerInGame(tx, playerID, gameID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return row, created, nil
}

// Correct applies signed deltas to an existing row. The update only matches
// when every resulting counter stays non-negative; otherwise
// ErrNegativeCounter is returned and the row is untouched.
func (r *StatsRepository) Correct(ctx context.Context, playerID, gameID int, delta stats.Counters) (*store.Stat, error) {
	var row *store.Stat
	err := r.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := getForPlayerInGame(tx, playerID, gameID)
		if err != nil {
			return err
		}

		q := tx.Model(&store.Stat{}).Where("stat_id = ?", existing.StatID)
		for _, f := range stats.Fields() {
			if v := f.Get(delta); v < 0 {
				q = q.Where(fmt.Sprintf("%s + ? >= 0", f.Column), v)
			}
		}
		res := q.Updates(increments(delta))
		if res.Error != nil {
			return fmt.Errorf("correcting stat: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNegativeCounter
		}

		row, err = getForPlayerInGame(tx, playerID, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Delete removes a stat row
func (r *StatsRepository) Delete(ctx context.Context, statID int) (*store.Stat, error) {
	var row *store.Stat
	err := r.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found := &store.Stat{}
		err := tx.Where("stat_id = ?", statID).Take(found).Error
		if isNotFound(err) {
			return fmt.Errorf("stat %d: %w", statID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("querying stat: %w", err)
		}
		if err := tx.Delete(found).Error; err != nil {
			return fmt.Errorf("deleting stat: %w", err)
		}
		row = found
		return nil
	})
	return row, err
}

func getForPlayerInGame(db *gorm.DB, playerID, gameID int) (*store.Stat, error) {
	row := &store.Stat{}
	err := db.Where("player_id = ? AND game_id = ?", playerID, gameID).Take(row).Error
	if isNotFound(err) {
		return nil, fmt.Errorf("stat for player %d in game %d: %w", playerID, gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying stat: %w", err)
	}
	return row, nil
}

// increments builds "col = col + ?" for every counter.
func increments(delta stats.Counters) map[string]interface{} {
	fs := stats.Fields()
	out := make(map[string]interface{}, len(fs))
	for _, f := range fs {
		out[f.Column] = gorm.Expr(fmt.Sprintf("%s + ?", f.Column), f.Get(delta))
	}
	return out
}

// accumulate builds the ON CONFLICT assignments adding the rejected row's
// counters onto the stored ones.
func accumulate() clause.Set {
	fs := stats.Fields()
	set := make(clause.Set, 0, len(fs))
	for _, f := range fs {
		set = append(set, clause.Assignment{
			Column: clause.Column{Name: f.Column},
			Value:  gorm.Expr(fmt.Sprintf("stats.%s + excluded.%s", f.Column, f.Column)),
		})
	}
	return set
}

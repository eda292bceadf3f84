package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/courtside/internal/store"
)

// GameRepository handles game data access
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

// GetAll returns every game, oldest first
func (r *GameRepository) GetAll(ctx context.Context) ([]*store.Game, error) {
	var games []*store.Game
	if err := r.db.DB().WithContext(ctx).Order("game_date, game_id").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	return games, nil
}

// GetByID finds a game by ID
func (r *GameRepository) GetByID(ctx context.Context, gameID int) (*store.Game, error) {
	game := &store.Game{}
	err := r.db.DB().WithContext(ctx).Where("game_id = ?", gameID).Take(game).Error
	if isNotFound(err) {
		return nil, fmt.Errorf("game %d: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game: %w", err)
	}
	return game, nil
}

// GetByExternalID finds a game by importer identifier
func (r *GameRepository) GetByExternalID(ctx context.Context, externalID string) (*store.Game, error) {
	game := &store.Game{}
	err := r.db.DB().WithContext(ctx).Where("external_id = ?", externalID).Take(game).Error
	if isNotFound(err) {
		return nil, fmt.Errorf("game %q: %w", externalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game by external id: %w", err)
	}
	return game, nil
}

// Exists reports whether a game with the given ID is stored
func (r *GameRepository) Exists(ctx context.Context, gameID int) (bool, error) {
	var n int64
	if err := r.db.DB().WithContext(ctx).Model(&store.Game{}).Where("game_id = ?", gameID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("checking game: %w", err)
	}
	return n > 0, nil
}

// Create inserts a game and fills in its ID
func (r *GameRepository) Create(ctx context.Context, game *store.Game) error {
	if err := r.db.DB().WithContext(ctx).Create(game).Error; err != nil {
		return fmt.Errorf("inserting game: %w", err)
	}
	return nil
}

// Delete removes a game. Its stat rows are left in place.
func (r *GameRepository) Delete(ctx context.Context, gameID int) error {
	res := r.db.DB().WithContext(ctx).Where("game_id = ?", gameID).Delete(&store.Game{})
	if res.Error != nil {
		return fmt.Errorf("deleting game: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("game %d: %w", gameID, ErrNotFound)
	}
	return nil
}

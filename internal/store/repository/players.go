package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/courtside/internal/store"
)

// PlayerRepository handles player data access
type PlayerRepository struct {
	db *store.Database
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *store.Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// GetAll returns every player ordered by id
func (r *PlayerRepository) GetAll(ctx context.Context) ([]*store.Player, error) {
	var players []*store.Player
	if err := r.db.DB().WithContext(ctx).Order("player_id").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	return players, nil
}

// GetByID finds a player by ID
func (r *PlayerRepository) GetByID(ctx context.Context, playerID int) (*store.Player, error) {
	player := &store.Player{}
	err := r.db.DB().WithContext(ctx).Where("player_id = ?", playerID).Take(player).Error
	if isNotFound(err) {
		return nil, fmt.Errorf("player %d: %w", playerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}
	return player, nil
}

// GetByIDs loads the players with the given IDs. Unknown IDs are skipped.
func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []int) ([]*store.Player, error) {
	var players []*store.Player
	if len(playerIDs) == 0 {
		return players, nil
	}
	if err := r.db.DB().WithContext(ctx).Where("player_id IN ?", playerIDs).Find(&players).Error; err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	return players, nil
}

// GetByExternalID finds a player by importer identifier
func (r *PlayerRepository) GetByExternalID(ctx context.Context, externalID string) (*store.Player, error) {
	player := &store.Player{}
	err := r.db.DB().WithContext(ctx).Where("external_id = ?", externalID).Take(player).Error
	if isNotFound(err) {
		return nil, fmt.Errorf("player %q: %w", externalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying player by external id: %w", err)
	}
	return player, nil
}

// FindOnTeam finds a rostered player by name
func (r *PlayerRepository) FindOnTeam(ctx context.Context, teamID int, firstName, lastName string) (*store.Player, error) {
	player := &store.Player{}
	err := r.db.DB().WithContext(ctx).
		Where("team_id = ? AND first_name = ? AND last_name = ?", teamID, firstName, lastName).
		Order("player_id").
		Take(player).Error
	if isNotFound(err) {
		return nil, fmt.Errorf("player %s %s on team %d: %w", firstName, lastName, teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying player by name: %w", err)
	}
	return player, nil
}

// Exists reports whether a player with the given ID is stored
func (r *PlayerRepository) Exists(ctx context.Context, playerID int) (bool, error) {
	var n int64
	if err := r.db.DB().WithContext(ctx).Model(&store.Player{}).Where("player_id = ?", playerID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("checking player: %w", err)
	}
	return n > 0, nil
}

// Create inserts a player and fills in its ID
func (r *PlayerRepository) Create(ctx context.Context, player *store.Player) error {
	if err := r.db.DB().WithContext(ctx).Create(player).Error; err != nil {
		return fmt.Errorf("inserting player: %w", err)
	}
	return nil
}

// MoveToTeam reassigns a player's current team
func (r *PlayerRepository) MoveToTeam(ctx context.Context, playerID int, teamID *int) error {
	err := r.db.DB().WithContext(ctx).Model(&store.Player{}).
		Where("player_id = ?", playerID).
		Update("team_id", teamID).Error
	if err != nil {
		return fmt.Errorf("moving player: %w", err)
	}
	return nil
}

// Delete removes a player. Their stat rows are left in place.
func (r *PlayerRepository) Delete(ctx context.Context, playerID int) error {
	res := r.db.DB().WithContext(ctx).Where("player_id = ?", playerID).Delete(&store.Player{})
	if res.Error != nil {
		return fmt.Errorf("deleting player: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("player %d: %w", playerID, ErrNotFound)
	}
	return nil
}

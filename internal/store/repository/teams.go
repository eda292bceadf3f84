package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/courtside/internal/store"
)

// TeamRepository handles team data access
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetAll returns every team ordered by id
func (r *TeamRepository) GetAll(ctx context.Context) ([]*store.Team, error) {
	var teams []*store.Team
	if err := r.db.DB().WithContext(ctx).Order("team_id").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	return teams, nil
}

// GetByID finds a team by ID
func (r *TeamRepository) GetByID(ctx context.Context, teamID int) (*store.Team, error) {
	team := &store.Team{}
	err := r.db.DB().WithContext(ctx).Where("team_id = ?", teamID).Take(team).Error
	if isNotFound(err) {
		return nil, fmt.Errorf("team %d: %w", teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}
	return team, nil
}

// GetByName returns teams whose name matches exactly
func (r *TeamRepository) GetByName(ctx context.Context, name string) ([]*store.Team, error) {
	var teams []*store.Team
	err := r.db.DB().WithContext(ctx).Where("team_name = ?", name).Order("team_id").Find(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("querying teams by name: %w", err)
	}
	return teams, nil
}

// GetByExternalID finds a team by its importer-assigned identifier
func (r *TeamRepository) GetByExternalID(ctx context.Context, externalID string) (*store.Team, error) {
	team := &store.Team{}
	err := r.db.DB().WithContext(ctx).Where("external_id = ?", externalID).Take(team).Error
	if isNotFound(err) {
		return nil, fmt.Errorf("team %q: %w", externalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team by external id: %w", err)
	}
	return team, nil
}

// Exists reports whether a team with the given ID is stored
func (r *TeamRepository) Exists(ctx context.Context, teamID int) (bool, error) {
	var n int64
	if err := r.db.DB().WithContext(ctx).Model(&store.Team{}).Where("team_id = ?", teamID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("checking team: %w", err)
	}
	return n > 0, nil
}

// Create inserts a team and fills in its ID
func (r *TeamRepository) Create(ctx context.Context, team *store.Team) error {
	if err := r.db.DB().WithContext(ctx).Create(team).Error; err != nil {
		return fmt.Errorf("inserting team: %w", err)
	}
	return nil
}

// SetExternalID tags an existing team with an importer identifier
func (r *TeamRepository) SetExternalID(ctx context.Context, teamID int, externalID string) error {
	err := r.db.DB().WithContext(ctx).Model(&store.Team{}).
		Where("team_id = ?", teamID).
		Update("external_id", externalID).Error
	if err != nil {
		return fmt.Errorf("tagging team: %w", err)
	}
	return nil
}

// Delete removes a team. Players and games referencing it are left alone.
func (r *TeamRepository) Delete(ctx context.Context, teamID int) error {
	res := r.db.DB().WithContext(ctx).Where("team_id = ?", teamID).Delete(&store.Team{})
	if res.Error != nil {
		return fmt.Errorf("deleting team: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("team %d: %w", teamID, ErrNotFound)
	}
	return nil
}

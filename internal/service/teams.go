package service

import (
	"context"

	"github.com/fortuna/courtside/internal/logger"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// TeamService handles team business logic
type TeamService struct {
	teamRepo *repository.TeamRepository
	cache    Cache
	log      *logger.Logger
}

// NewTeamService creates a new team service
func NewTeamService(db *store.Database, cache Cache, log *logger.Logger) *TeamService {
	return &TeamService{
		teamRepo: repository.NewTeamRepository(db),
		cache:    cache,
		log:      log.With("service", "TeamService"),
	}
}

// TeamInput is the body accepted when creating a team.
type TeamInput struct {
	Name string `json:"Team_Name"`
	City string `json:"Team_City"`
}

// List returns every team
func (s *TeamService) List(ctx context.Context) ([]*store.Team, error) {
	teams, err := s.teamRepo.GetAll(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	return teams, nil
}

// Get returns one team
func (s *TeamService) Get(ctx context.Context, teamID int) (*store.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, lookup(err, "Team with ID '%d' not found.", teamID)
	}
	return team, nil
}

// ByName returns the teams whose name matches exactly
func (s *TeamService) ByName(ctx context.Context, name string) ([]*store.Team, error) {
	teams, err := s.teamRepo.GetByName(ctx, name)
	if err != nil {
		return nil, Internal(err)
	}
	if len(teams) == 0 {
		return nil, NotFound("No teams found with the name '%s'.", name)
	}
	return teams, nil
}

// Create stores a new team
func (s *TeamService) Create(ctx context.Context, in TeamInput) (*store.Team, error) {
	team := &store.Team{Name: in.Name, City: in.City}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, Internal(err)
	}
	s.log.Info("team created", "team_id", team.TeamID, "name", team.Name)
	return team, nil
}

// Delete removes a team. Players and games pointing at it keep the id.
func (s *TeamService) Delete(ctx context.Context, teamID int) error {
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		return lookup(err, "Team with ID '%d' not found.", teamID)
	}
	invalidate(ctx, s.cache, s.log)
	s.log.Info("team deleted", "team_id", teamID)
	return nil
}

func invalidate(ctx context.Context, cache Cache, log *logger.Logger) {
	if err := cache.Invalidate(ctx); err != nil {
		log.Warn("cache invalidation failed", "error", err)
	}
}

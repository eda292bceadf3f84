package service

import (
	"context"

	"github.com/fortuna/courtside/internal/logger"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// PlayerService handles player business logic
type PlayerService struct {
	playerRepo *repository.PlayerRepository
	teamRepo   *repository.TeamRepository
	cache      Cache
	log        *logger.Logger
}

// NewPlayerService creates a new player service
func NewPlayerService(db *store.Database, cache Cache, log *logger.Logger) *PlayerService {
	return &PlayerService{
		playerRepo: repository.NewPlayerRepository(db),
		teamRepo:   repository.NewTeamRepository(db),
		cache:      cache,
		log:        log.With("service", "PlayerService"),
	}
}

// PlayerInput is the body accepted when creating a player.
type PlayerInput struct {
	TeamID       *int   `json:"Team_ID"`
	FirstName    string `json:"First_Name"`
	LastName     string `json:"Last_Name"`
	PositionID   string `json:"Position_ID"`
	JerseyNumber int    `json:"Jersey_Number"`
}

// List returns every player
func (s *PlayerService) List(ctx context.Context) ([]*store.Player, error) {
	players, err := s.playerRepo.GetAll(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	return players, nil
}

// Get returns one player
func (s *PlayerService) Get(ctx context.Context, playerID int) (*store.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, lookup(err, "Player with ID '%d' not found.", playerID)
	}
	return player, nil
}

// Create stores a new player. A team, when given, must already exist.
func (s *PlayerService) Create(ctx context.Context, in PlayerInput) (*store.Player, error) {
	if in.TeamID != nil {
		ok, err := s.teamRepo.Exists(ctx, *in.TeamID)
		if err != nil {
			return nil, Internal(err)
		}
		if !ok {
			return nil, BadRequest("Team with ID '%d' not found.", *in.TeamID)
		}
	}

	player := &store.Player{
		TeamID:       in.TeamID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PositionID:   in.PositionID,
		JerseyNumber: in.JerseyNumber,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, Internal(err)
	}
	s.log.Info("player created", "player_id", player.PlayerID, "name", player.FullName())
	return player, nil
}

// Delete removes a player. Their stat rows stay behind.
func (s *PlayerService) Delete(ctx context.Context, playerID int) error {
	if err := s.playerRepo.Delete(ctx, playerID); err != nil {
		return lookup(err, "Player with ID '%d' not found.", playerID)
	}
	invalidate(ctx, s.cache, s.log)
	s.log.Info("player deleted", "player_id", playerID)
	return nil
}

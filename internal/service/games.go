package service

import (
	"context"
	"time"

	"github.com/fortuna/courtside/internal/logger"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// GameService handles game business logic
type GameService struct {
	gameRepo *repository.GameRepository
	teamRepo *repository.TeamRepository
	cache    Cache
	log      *logger.Logger
}

// NewGameService creates a new game service
func NewGameService(db *store.Database, cache Cache, log *logger.Logger) *GameService {
	return &GameService{
		gameRepo: repository.NewGameRepository(db),
		teamRepo: repository.NewTeamRepository(db),
		cache:    cache,
		log:      log.With("service", "GameService"),
	}
}

// GameInput is a game to create.
type GameInput struct {
	HomeID   int
	AwayID   int
	GameDate time.Time
}

// List returns every game
func (s *GameService) List(ctx context.Context) ([]*store.Game, error) {
	games, err := s.gameRepo.GetAll(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	return games, nil
}

// Get returns one game
func (s *GameService) Get(ctx context.Context, gameID int) (*store.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, lookup(err, "Game with ID '%d' not found.", gameID)
	}
	return game, nil
}

// Create stores a game between two existing teams. Home and away being the
// same team is allowed.
func (s *GameService) Create(ctx context.Context, in GameInput) (*store.Game, error) {
	ok, err := s.teamRepo.Exists(ctx, in.HomeID)
	if err != nil {
		return nil, Internal(err)
	}
	if !ok {
		return nil, BadRequest("Home Team does not exist")
	}
	ok, err = s.teamRepo.Exists(ctx, in.AwayID)
	if err != nil {
		return nil, Internal(err)
	}
	if !ok {
		return nil, BadRequest("Away Team does not exist")
	}

	game := &store.Game{HomeID: in.HomeID, AwayID: in.AwayID, GameDate: in.GameDate}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, Internal(err)
	}
	s.log.Info("game created", "game_id", game.GameID, "home_id", game.HomeID, "away_id", game.AwayID)
	return game, nil
}

// Delete removes a game. Its stat rows stay behind.
func (s *GameService) Delete(ctx context.Context, gameID int) error {
	if err := s.gameRepo.Delete(ctx, gameID); err != nil {
		return lookup(err, "Game with ID '%d' not found.", gameID)
	}
	invalidate(ctx, s.cache, s.log)
	s.log.Info("game deleted", "game_id", gameID)
	return nil
}

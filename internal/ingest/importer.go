package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fortuna/courtside/internal/logger"
	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// Result summarizes one imported box score.
type Result struct {
	Key         string
	GameID      int
	GameCreated bool
	Players     int
}

// Importer writes box scores into the store. Stats go through the same
// service the API uses, so cache invalidation and events still fire.
type Importer struct {
	teamRepo   *repository.TeamRepository
	playerRepo *repository.PlayerRepository
	gameRepo   *repository.GameRepository
	stats      *service.StatsService
	log        *logger.Logger

	// resolveMu serializes find-or-create of teams, players and games so
	// concurrent imports of the same matchup do not insert duplicates.
	resolveMu sync.Mutex
}

// NewImporter creates an importer over db.
func NewImporter(db *store.Database, stats *service.StatsService, log *logger.Logger) *Importer {
	return &Importer{
		teamRepo:   repository.NewTeamRepository(db),
		playerRepo: repository.NewPlayerRepository(db),
		gameRepo:   repository.NewGameRepository(db),
		stats:      stats,
		log:        log.With("component", "importer"),
	}
}

type placement struct {
	game    *store.Game
	created bool
	players []*store.Player
}

// Import resolves the teams, players and game of box and sets each player's
// stat row to the box-score totals. Importing the same box twice leaves the
// rows unchanged.
func (im *Importer) Import(ctx context.Context, box *BoxScore) (*Result, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}

	p, err := im.place(ctx, box)
	if err != nil {
		return nil, err
	}

	for i, line := range box.Players {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		player := p.players[i]
		if _, err := im.stats.SetTotals(ctx, player.PlayerID, p.game.GameID, line.Counters()); err != nil {
			return nil, fmt.Errorf("box score %s: stats for %s: %w", box.Key(), line.FullName(), err)
		}
	}

	im.log.Info("box score imported",
		"key", box.Key(),
		"source", box.Source,
		"game_id", p.game.GameID,
		"game_created", p.created,
		"players", len(box.Players),
	)

	return &Result{
		Key:         box.Key(),
		GameID:      p.game.GameID,
		GameCreated: p.created,
		Players:     len(box.Players),
	}, nil
}

func (im *Importer) place(ctx context.Context, box *BoxScore) (*placement, error) {
	im.resolveMu.Lock()
	defer im.resolveMu.Unlock()

	home, err := im.resolveTeam(ctx, box.Home)
	if err != nil {
		return nil, fmt.Errorf("resolve home team: %w", err)
	}
	away, err := im.resolveTeam(ctx, box.Away)
	if err != nil {
		return nil, fmt.Errorf("resolve away team: %w", err)
	}

	game, created, err := im.resolveGame(ctx, box, home, away)
	if err != nil {
		return nil, fmt.Errorf("resolve game: %w", err)
	}

	players := make([]*store.Player, len(box.Players))
	for i, line := range box.Players {
		teamID := home.TeamID
		if line.Side == SideAway {
			teamID = away.TeamID
		}
		player, err := im.resolvePlayer(ctx, line, teamID)
		if err != nil {
			return nil, fmt.Errorf("resolve player %s: %w", line.FullName(), err)
		}
		players[i] = player
	}

	return &placement{game: game, created: created, players: players}, nil
}

// resolveTeam looks a team up by external id, then by name, and creates it
// when neither matches.
func (im *Importer) resolveTeam(ctx context.Context, line TeamLine) (*store.Team, error) {
	if line.ExternalID != "" {
		team, err := im.teamRepo.GetByExternalID(ctx, line.ExternalID)
		if err == nil {
			return team, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	teams, err := im.teamRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if team := matchTeam(teams, line); team != nil {
		if line.ExternalID != "" && team.ExternalID == nil {
			if err := im.teamRepo.SetExternalID(ctx, team.TeamID, line.ExternalID); err != nil {
				return nil, err
			}
			team.ExternalID = optional(line.ExternalID)
		}
		return team, nil
	}

	team := &store.Team{
		Name:       fallbackString(line.Name, line.Abbreviation, line.ExternalID),
		City:       line.City,
		ExternalID: optional(line.ExternalID),
	}
	if err := im.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	im.log.Debug("team created", "team_id", team.TeamID, "name", team.Name)
	return team, nil
}

func (im *Importer) resolveGame(ctx context.Context, box *BoxScore, home, away *store.Team) (*store.Game, bool, error) {
	key := box.Key()
	game, err := im.gameRepo.GetByExternalID(ctx, key)
	if err == nil {
		return game, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	game = &store.Game{
		HomeID:     home.TeamID,
		AwayID:     away.TeamID,
		GameDate:   box.Date.UTC(),
		ExternalID: optional(key),
	}
	if err := im.gameRepo.Create(ctx, game); err != nil {
		return nil, false, err
	}
	return game, true, nil
}

// resolvePlayer looks a player up by external id, then by name on the team,
// and creates them on the team when neither matches.
func (im *Importer) resolvePlayer(ctx context.Context, line PlayerLine, teamID int) (*store.Player, error) {
	if line.ExternalID != "" {
		player, err := im.playerRepo.GetByExternalID(ctx, line.ExternalID)
		if err == nil {
			return player, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	player, err := im.playerRepo.FindOnTeam(ctx, teamID, line.FirstName, line.LastName)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	player = &store.Player{
		TeamID:       &teamID,
		FirstName:    line.FirstName,
		LastName:     line.LastName,
		PositionID:   line.Position,
		JerseyNumber: line.Jersey,
		ExternalID:   optional(line.ExternalID),
	}
	if err := im.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package rest

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/service"
)

// gameRequest accepts Game_Date as RFC 3339, a zoneless timestamp, or a
// bare date. Zoneless values are taken as UTC.
type gameRequest struct {
	HomeID   int    `json:"Home_ID"`
	AwayID   int    `json:"Away_ID"`
	GameDate string `json:"Game_Date"`
}

var gameDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseGameDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range gameDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, service.BadRequest("Game_Date '%s' is not a valid date.", s)
}

// GetGames returns every game
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameService.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, games)
}

// GetGame returns one game
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Game not found.")
		return
	}

	game, err := h.gameService.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

// PostGame creates a game between two existing teams
func (h *Handler) PostGame(w http.ResponseWriter, r *http.Request) {
	var req gameRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	date, err := parseGameDate(req.GameDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	game, err := h.gameService.Create(r.Context(), service.GameInput{
		HomeID:   req.HomeID,
		AwayID:   req.AwayID,
		GameDate: date,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondCreated(w, fmt.Sprintf("/Games/%d", game.GameID), game)
}

// DeleteGame removes a game
func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Game not found.")
		return
	}

	if err := h.gameService.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

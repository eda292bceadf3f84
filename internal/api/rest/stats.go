package rest

import (
	"fmt"
	"net/http"

	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store"
)

// GetStats returns every stat row
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.statsService.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// GetStat returns one stat row
func (h *Handler) GetStat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Stat not found.")
		return
	}

	row, err := h.statsService.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

// PostStat adds counters to a player's line for a game: 201 when the line
// is new, 200 when an existing line was incremented.
func (h *Handler) PostStat(w http.ResponseWriter, r *http.Request) {
	var sub service.Submission
	if err := decode(r, &sub); err != nil {
		h.fail(w, r, err)
		return
	}

	row, created, err := h.statsService.Record(r.Context(), sub)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondUpsert(w, row, created)
}

// PostStatAction records one play-by-play event such as "3pt_make"
func (h *Handler) PostStatAction(w http.ResponseWriter, r *http.Request) {
	var sub service.ActionSubmission
	if err := decode(r, &sub); err != nil {
		h.fail(w, r, err)
		return
	}

	row, created, err := h.statsService.RecordAction(r.Context(), sub)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondUpsert(w, row, created)
}

// PostStatCorrection applies signed deltas to an existing line
func (h *Handler) PostStatCorrection(w http.ResponseWriter, r *http.Request) {
	var sub service.Submission
	if err := decode(r, &sub); err != nil {
		h.fail(w, r, err)
		return
	}

	row, err := h.statsService.Correct(r.Context(), sub)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

// DeleteStat removes a stat row
func (h *Handler) DeleteStat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Stat not found.")
		return
	}

	if err := h.statsService.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPlayerTotals returns a player's summed counters across all games
func (h *Handler) GetPlayerTotals(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Player not found.")
		return
	}

	totals, err := h.statsService.PlayerTotals(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

// GetGameStats returns every stat row for a game
func (h *Handler) GetGameStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Game not found.")
		return
	}

	rows, err := h.statsService.GameStats(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// GetGameScore returns the home and away totals for a game
func (h *Handler) GetGameScore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Game not found.")
		return
	}

	score, err := h.statsService.GameScore(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, score)
}

// GetTeamGameStats returns a roster's rows for one game
func (h *Handler) GetTeamGameStats(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "teamId")
	if err != nil {
		respondError(w, http.StatusNotFound, "Team not found.")
		return
	}
	gameID, err := pathID(r, "gameId")
	if err != nil {
		respondError(w, http.StatusNotFound, "Game not found.")
		return
	}

	rows, err := h.statsService.TeamGameStats(r.Context(), teamID, gameID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// GetTeamAllTime returns per-player all-time totals for a roster
func (h *Handler) GetTeamAllTime(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "teamId")
	if err != nil {
		respondError(w, http.StatusNotFound, "Team not found.")
		return
	}

	totals, err := h.statsService.TeamAllTime(r.Context(), teamID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

func respondUpsert(w http.ResponseWriter, row *store.Stat, created bool) {
	if created {
		respondCreated(w, fmt.Sprintf("/Stats/%d", row.StatID), row)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

package rest

import (
	"fmt"
	"net/http"

	"github.com/fortuna/courtside/internal/service"
)

// GetPlayers returns every player
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, players)
}

// GetPlayer returns one player
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Player not found.")
		return
	}

	player, err := h.playerService.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, player)
}

// PostPlayer creates a player on an existing team (or none)
func (h *Handler) PostPlayer(w http.ResponseWriter, r *http.Request) {
	var in service.PlayerInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	player, err := h.playerService.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondCreated(w, fmt.Sprintf("/Players/%d", player.PlayerID), player)
}

// DeletePlayer removes a player
func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Player not found.")
		return
	}

	if err := h.playerService.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

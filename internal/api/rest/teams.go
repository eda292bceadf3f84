package rest

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/courtside/internal/service"
)

// GetTeams returns every team
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, teams)
}

// GetTeam returns one team
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Team not found.")
		return
	}

	team, err := h.teamService.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// GetTeamsByName returns teams whose name matches exactly
func (h *Handler) GetTeamsByName(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ByName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, teams)
}

// PostTeam creates a team
func (h *Handler) PostTeam(w http.ResponseWriter, r *http.Request) {
	var in service.TeamInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	team, err := h.teamService.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondCreated(w, fmt.Sprintf("/Teams/%d", team.TeamID), team)
}

// DeleteTeam removes a team
func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusNotFound, "Team not found.")
		return
	}

	if err := h.teamService.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MediSynth-io/updateservice/internal/pagination"
	"github.com/MediSynth-io/updateservice/internal/store"
)

type teamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (req *teamRequest) validate(create bool) error {
	if create {
		if req.Name == nil {
			return invalid("name is required")
		}
		if err := required("name", *req.Name); err != nil {
			return err
		}
	}
	if err := maxLength("name", req.Name); err != nil {
		return err
	}
	return maxLength("description", req.Description)
}

func (api *Api) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := decode(r, &req); err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := req.validate(true); err != nil {
		api.writeError(w, r, err)
		return
	}

	team, err := api.store.CreateTeam(r.Context(), *req.Name, req.Description)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (api *Api) ListTeams(w http.ResponseWriter, r *http.Request) {
	page, err := api.pages.Parse(r.URL.Query())
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	teams, err := api.store.ListTeams(r.Context(), page.Limit(), page.Offset)
	if err == nil {
		err = pagination.Check(len(teams))
	}
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (api *Api) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "team_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	var req teamRequest
	if err := decode(r, &req); err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := req.validate(false); err != nil {
		api.writeError(w, r, err)
		return
	}

	team, err := api.store.UpdateTeam(r.Context(), id, req.Name, req.Description)
	switch {
	case errors.Is(err, store.ErrTeamNotFound):
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("The team with id:%d does not exists", id))
	case errors.Is(err, store.ErrTeamExists):
		writeDetail(w, http.StatusBadRequest, "Team name already exists")
	case err != nil:
		api.writeError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, team)
	}
}

package api

import (
	"errors"
	"net/http"

	"github.com/MediSynth-io/updateservice/internal/models"
	"github.com/MediSynth-io/updateservice/internal/pagination"
	"github.com/MediSynth-io/updateservice/internal/store"
)

type applicationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (api *Api) CreateApplication(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "team_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	var req applicationRequest
	if err := decode(r, &req); err != nil {
		api.writeError(w, r, err)
		return
	}
	if req.Name == nil {
		api.writeError(w, r, invalid("name is required"))
		return
	}
	if err := required("name", *req.Name); err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := maxLength("description", req.Description); err != nil {
		api.writeError(w, r, err)
		return
	}

	app, err := api.store.CreateApplication(r.Context(), teamID, *req.Name, req.Description)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app.View())
}

func (api *Api) ListApplications(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "team_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	page, err := api.pages.Parse(r.URL.Query())
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	apps, err := api.store.ListApplications(r.Context(), teamID, page.Limit(), page.Offset, r.URL.Query().Get("search"))
	if err == nil {
		err = pagination.Check(len(apps))
	}
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	views := make([]models.ApplicationView, 0, len(apps))
	for i := range apps {
		views = append(views, apps[i].View())
	}
	writeJSON(w, http.StatusOK, views)
}

func (api *Api) PatchApplication(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "team_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	appID, err := pathID(r, "application_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	var req applicationRequest
	if err := decode(r, &req); err != nil {
		api.writeError(w, r, err)
		return
	}
	if req.Name == nil && req.Description == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "At least on field has to be present")
		return
	}
	if req.Name != nil {
		if err := required("name", *req.Name); err != nil {
			api.writeError(w, r, err)
			return
		}
	}
	if err := maxLength("description", req.Description); err != nil {
		api.writeError(w, r, err)
		return
	}

	app, err := api.store.PatchApplication(r.Context(), teamID, appID, req.Name, req.Description)
	if errors.Is(err, store.ErrApplicationExists) {
		writeDetail(w, http.StatusBadRequest, "Application name already exists")
		return
	}
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app.View())
}

func (api *Api) GetApplication(w http.ResponseWriter, r *http.Request) {
	teamID, err := pathID(r, "team_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	appID, err := pathID(r, "application_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	detail, err := api.store.GetApplication(r.Context(), teamID, appID)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

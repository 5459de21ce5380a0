package api

import (
	"net/http"
)

type groupRequest struct {
	Name string `json:"name"`
}

func (api *Api) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := required("name", req.Name); err != nil {
		api.writeError(w, r, err)
		return
	}

	group, err := api.store.CreateGroup(r.Context(), req.Name)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (api *Api) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "group_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	if err := api.store.DeleteGroup(r.Context(), id); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, "Group has been deleted")
}

func (api *Api) AssignGroup(w http.ResponseWriter, r *http.Request) {
	appID, groupID, err := linkIDs(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	link, err := api.store.AssignGroup(r.Context(), appID, groupID)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (api *Api) UnassignGroup(w http.ResponseWriter, r *http.Request) {
	appID, groupID, err := linkIDs(r)
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	if err := api.store.UnassignGroup(r.Context(), appID, groupID); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, "Application has been unassigned")
}

func linkIDs(r *http.Request) (appID, groupID int64, err error) {
	if appID, err = pathID(r, "application_id"); err != nil {
		return 0, 0, err
	}
	if groupID, err = pathID(r, "group_id"); err != nil {
		return 0, 0, err
	}
	return appID, groupID, nil
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MediSynth-io/updateservice/internal/pagination"
	"github.com/MediSynth-io/updateservice/internal/store"
	"github.com/go-chi/chi/v5"
)

type userRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (api *Api) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decode(r, &req); err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := required("email", req.Email); err != nil {
		api.writeError(w, r, err)
		return
	}
	if err := required("full_name", req.FullName); err != nil {
		api.writeError(w, r, err)
		return
	}

	user, err := api.store.CreateUser(r.Context(), req.Email, req.FullName)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (api *Api) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := api.pages.Parse(r.URL.Query())
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	users, err := api.store.ListUsers(r.Context(), page.Limit(), page.Offset, r.URL.Query().Get("search"))
	if err == nil {
		err = pagination.Check(len(users))
	}
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type tokenPayload struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

type tokenResponse struct {
	ID    int64        `json:"id"`
	Token tokenPayload `json:"token"`
}

func (api *Api) CreateToken(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	t, err := api.authority.CreateToken(r.Context(), userID)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{
		ID:    t.ID,
		Token: tokenPayload{UserID: t.UserID, Token: t.Token},
	})
}

func (api *Api) DeleteToken(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		api.writeError(w, r, err)
		return
	}

	if err := api.authority.DeleteToken(r.Context(), userID, chi.URLParam(r, "token")); err != nil {
		api.writeError(w, r, err)
		return
	}
	writeMessage(w, "The token has been deleted successfully")
}

// Hello greets the user named by name_id, or the world when there is none.
func (api *Api) Hello(w http.ResponseWriter, r *http.Request) {
	name := "world"
	if raw := r.URL.Query().Get("name_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			api.writeError(w, r, invalid("name_id must be an integer"))
			return
		}
		user, err := api.store.GetUser(r.Context(), id)
		switch {
		case err == nil:
			name = user.FullName
		case !errors.Is(err, store.ErrUserNotFound):
			api.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, "Hello, "+name+"!")
}

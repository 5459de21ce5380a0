package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MediSynth-io/updateservice/internal/auth"
	"github.com/MediSynth-io/updateservice/internal/packages"
	"github.com/MediSynth-io/updateservice/internal/pagination"
	"github.com/MediSynth-io/updateservice/internal/store"
	"github.com/go-chi/chi/v5"
)

const maxFieldLength = 255

// validationError is a malformed request. It is answered with 422.
type validationError struct {
	msg string
}

func (e *validationError) Error() string {
	return e.msg
}

func invalid(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

var notFound = []struct {
	err    error
	detail string
}{
	{store.ErrUserNotFound, "The user with the id requested does not exist"},
	{store.ErrApplicationNotFound, "The application with the id requested does not exist"},
	{store.ErrTeamNotFound, "The team with the id requested does not exist"},
	{store.ErrPackageNotFound, "The package with the id requested does not exist"},
	{store.ErrGroupNotFound, "The group with the id requested does not exist"},
	{store.ErrTokenNotFound, "Could not find this token for the requested user"},
	{packages.ErrFileNotFound, "File not found"},
	{pagination.ErrEmptyPage, "This page has no items to display"},
}

var badRequest = []struct {
	err    error
	detail string
}{
	{store.ErrTeamExists, "This team already exists"},
	{store.ErrEmailTaken, "There is already a user registered with this email"},
	{store.ErrApplicationExists, "An application with the same name already exists"},
	{store.ErrGroupExists, "A group with the same name already exists"},
	{store.ErrGroupInUse, "Can not delete groups with apllications assigned to it"},
	{pagination.ErrOffsetTooLarge, "Offset is too big"},
}

// writeError maps a domain error onto its HTTP status and detail body.
// Anything unrecognised is logged and answered with 500.
func (api *Api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr       *validationError
		teamErr    *store.TeamNotFoundError
		noMatch    *store.NoMatchError
		assigned   *store.AlreadyAssignedError
		unassigned *store.NotAssignedError
	)

	switch {
	case errors.As(err, &verr):
		writeDetail(w, http.StatusUnprocessableEntity, verr.msg)
		return
	case errors.Is(err, pagination.ErrInvalidPage), errors.Is(err, packages.ErrInvalidVersion),
		errors.Is(err, packages.ErrInvalidFilename):
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.As(err, &teamErr):
		writeDetail(w, http.StatusNotFound, map[string]any{
			"error": map[string]any{
				"message": fmt.Sprintf("Team %d does not exist", teamErr.TeamID),
				"code":    http.StatusNotFound,
			},
		})
		return
	case errors.As(err, &noMatch):
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("No %s found for '%s'", noMatch.Entity, noMatch.Search))
		return
	case errors.As(err, &assigned):
		writeDetail(w, http.StatusBadRequest,
			fmt.Sprintf("Application %d already assign to group %d", assigned.ApplicationID, assigned.GroupID))
		return
	case errors.As(err, &unassigned):
		writeDetail(w, http.StatusNotFound,
			fmt.Sprintf("Application %d not assigned to group %d", unassigned.ApplicationID, unassigned.GroupID))
		return
	case errors.Is(err, auth.ErrTokenRevoked):
		writeDetail(w, http.StatusUnauthorized, "The token you have used was deleted")
		return
	}

	for _, m := range notFound {
		if errors.Is(err, m.err) {
			writeDetail(w, http.StatusNotFound, m.detail)
			return
		}
	}
	for _, m := range badRequest {
		if errors.Is(err, m.err) {
			writeDetail(w, http.StatusBadRequest, m.detail)
			return
		}
	}

	api.log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}

// pathID parses a numeric path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalid("%s must be an integer", name)
	}
	return id, nil
}

// decode reads a JSON body into dst.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalid("invalid JSON body: %v", err)
	}
	return nil
}

func required(field, value string) error {
	if value == "" {
		return invalid("%s is required", field)
	}
	return maxLength(field, &value)
}

func maxLength(field string, value *string) error {
	if value != nil && len([]rune(*value)) > maxFieldLength {
		return invalid("%s must be at most %d characters", field, maxFieldLength)
	}
	return nil
}

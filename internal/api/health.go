package api

import (
	"context"
	"net/http"
	"time"

	"github.com/MediSynth-io/updateservice/internal/database"
)

// Health reports whether the database answers.
func (api *Api) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := database.Ping(ctx, api.store.DB()); err != nil {
		api.log.Warnw("health check failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "No connection to db")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

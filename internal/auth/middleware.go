package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type contextKey string

const (
	UserContextKey contextKey = "user_id"
)

// Authenticator is satisfied by *Authority.
type Authenticator interface {
	Authenticate(ctx context.Context, encoded string) (int64, error)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// AuthMiddleware guards protected routes with bearer token authentication.
func AuthMiddleware(authn Authenticator, lg *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.Fields(r.Header.Get("Authorization"))
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeDetail(w, http.StatusForbidden, "Not authenticated")
				return
			}

			userID, err := authn.Authenticate(r.Context(), parts[1])
			switch {
			case err == nil:
			case errors.Is(err, ErrExpiredToken):
				writeDetail(w, http.StatusUnauthorized, "Token has expired")
				return
			case errors.Is(err, ErrTokenRevoked):
				writeDetail(w, http.StatusUnauthorized, "The token you have used was deleted")
				return
			case errors.Is(err, ErrInvalidToken):
				writeDetail(w, http.StatusUnauthorized, "Token is not valid")
				return
			default:
				lg.Errorw("authentication failed", "error", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user id from the context
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserContextKey).(int64)
	return id, ok
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubAuthenticator struct {
	userID int64
	err    error
	got    string
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, encoded string) (int64, error) {
	s.got = encoded
	return s.userID, s.err
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
		status int
		detail string
	}{
		{"MissingHeader", "", nil, http.StatusForbidden, "Not authenticated"},
		{"WrongScheme", "Basic abc", nil, http.StatusForbidden, "Not authenticated"},
		{"Invalid", "Bearer abc", ErrInvalidToken, http.StatusUnauthorized, "Token is not valid"},
		{"Expired", "Bearer abc", ErrExpiredToken, http.StatusUnauthorized, "Token has expired"},
		{"Revoked", "Bearer abc", ErrTokenRevoked, http.StatusUnauthorized, "The token you have used was deleted"},
		{"StoreDown", "Bearer abc", errors.New("connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authn := &stubAuthenticator{err: tt.err}
			handler := AuthMiddleware(authn, zap.NewNop().Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler must not run")
			}))

			req := httptest.NewRequest(http.MethodGet, "/v1/groups", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			var body map[string]string
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.detail, body["detail"])
		})
	}
}

func TestAuthMiddlewarePassesUserID(t *testing.T) {
	authn := &stubAuthenticator{userID: 12}
	var seen int64
	handler := AuthMiddleware(authn, zap.NewNop().Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		assert.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer the-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, int64(12), seen)
	assert.Equal(t, "the-token", authn.got)
}

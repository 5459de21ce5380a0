package store

import (
	"context"

	"github.com/MediSynth-io/updateservice/internal/models"
)

const tokenColumns = "id, user_id, token, jti, deleted, created_at, updated_at"

// InsertToken persists a freshly issued token and sets its ID.
func (s *Store) InsertToken(ctx context.Context, t *models.Token) error {
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	id, err := s.insert(ctx,
		"INSERT INTO tokens (user_id, token, jti, deleted, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		t.UserID, t.Token, t.JTI, t.Deleted, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// FindUserToken returns the row for (userID, token) regardless of its
// deleted flag.
func (s *Store) FindUserToken(ctx context.Context, userID int64, token string) (*models.Token, error) {
	t := &models.Token{}
	err := s.get(ctx, t, ErrTokenNotFound,
		"SELECT "+tokenColumns+" FROM tokens WHERE user_id = ? AND token = ? ORDER BY id LIMIT 1",
		userID, token)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// RevokeToken soft-deletes every row matching (userID, token).
func (s *Store) RevokeToken(ctx context.Context, userID int64, token string) error {
	n, err := s.update(ctx,
		"UPDATE tokens SET deleted = ?, updated_at = ? WHERE user_id = ? AND token = ?",
		true, now(), userID, token)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// ActiveToken reports whether the token identified by jti is issued to
// userID and not revoked.
func (s *Store) ActiveToken(ctx context.Context, userID int64, jti string) (bool, error) {
	return s.exists(ctx, "tokens", "user_id = ? AND jti = ? AND deleted = ?", userID, jti, false)
}

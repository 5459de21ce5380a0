package store

import (
	"context"
	"time"

	"github.com/MediSynth-io/updateservice/internal/models"
)

const userColumns = "id, email, full_name, created_at, updated_at, last_login"

func (s *Store) UserExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, "users", "id = ?", id)
}

func (s *Store) CreateUser(ctx context.Context, email, fullName string) (*models.User, error) {
	taken, err := s.exists(ctx, "users", "email = ?", email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	u := &models.User{Email: email, FullName: fullName, CreatedAt: now()}
	u.UpdatedAt = u.CreatedAt
	u.ID, err = s.insert(ctx,
		"INSERT INTO users (email, full_name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		u.Email, u.FullName, u.CreatedAt, u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u := &models.User{}
	if err := s.get(ctx, u, ErrUserNotFound, "SELECT "+userColumns+" FROM users WHERE id = ?", id); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers pages through users, optionally filtered by a case-insensitive
// substring of full_name. A search that matches nothing yields *NoMatchError.
func (s *Store) ListUsers(ctx context.Context, limit, offset int64, search string) ([]models.User, error) {
	users := []models.User{}
	if search == "" {
		err := s.list(ctx, &users,
			"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", limit, offset)
		return users, err
	}

	err := s.list(ctx, &users,
		"SELECT "+userColumns+" FROM users WHERE LOWER(full_name) LIKE LOWER(?) ORDER BY id LIMIT ? OFFSET ?",
		likePattern(search), limit, offset)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, &NoMatchError{Entity: "users", Search: search}
	}
	return users, nil
}

// TouchLastLogin records a successful authentication.
func (s *Store) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	_, err := s.update(ctx, "UPDATE users SET last_login = ? WHERE id = ?", at.UTC(), userID)
	return err
}

package store

import (
	"context"

	"github.com/MediSynth-io/updateservice/internal/models"
)

const teamColumns = "id, name, description, created_at, updated_at"

func (s *Store) TeamExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, "teams", "id = ?", id)
}

// CreateTeam inserts a team with a unique name.
func (s *Store) CreateTeam(ctx context.Context, name string, description *string) (*models.Team, error) {
	taken, err := s.exists(ctx, "teams", "name = ?", name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrTeamExists
	}

	t := &models.Team{Name: name, Description: description, CreatedAt: now()}
	t.UpdatedAt = t.CreatedAt
	t.ID, err = s.insert(ctx,
		"INSERT INTO teams (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)",
		t.Name, t.Description, t.CreatedAt, t.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrTeamExists
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) ListTeams(ctx context.Context, limit, offset int64) ([]models.Team, error) {
	teams := []models.Team{}
	err := s.list(ctx, &teams,
		"SELECT "+teamColumns+" FROM teams ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	return teams, err
}

// UpdateTeam changes the fields that are non-nil.
func (s *Store) UpdateTeam(ctx context.Context, id int64, name, description *string) (*models.Team, error) {
	t := &models.Team{}
	if err := s.get(ctx, t, ErrTeamNotFound, "SELECT "+teamColumns+" FROM teams WHERE id = ?", id); err != nil {
		return nil, err
	}

	if name != nil {
		t.Name = *name
	}
	if description != nil {
		t.Description = description
	}
	t.UpdatedAt = now()

	_, err := s.update(ctx,
		"UPDATE teams SET name = ?, description = ?, updated_at = ? WHERE id = ?",
		t.Name, t.Description, t.UpdatedAt, id,
	)
	if isUniqueViolation(err) {
		return nil, ErrTeamExists
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

package store

import (
	"context"

	"github.com/MediSynth-io/updateservice/internal/models"
)

const applicationColumns = "id, team_id, name, description, created_at, updated_at"

func (s *Store) ApplicationExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, "applications", "id = ?", id)
}

func (s *Store) requireTeam(ctx context.Context, teamID int64) error {
	ok, err := s.TeamExists(ctx, teamID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTeamNotFound
	}
	return nil
}

// CreateApplication registers an application under a team. Names are unique
// across all teams.
func (s *Store) CreateApplication(ctx context.Context, teamID int64, name string, description *string) (*models.Application, error) {
	if err := s.requireTeam(ctx, teamID); err != nil {
		return nil, err
	}

	taken, err := s.exists(ctx, "applications", "name = ?", name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrApplicationExists
	}

	a := &models.Application{TeamID: teamID, Name: name, Description: description, CreatedAt: now()}
	a.UpdatedAt = a.CreatedAt
	a.ID, err = s.insert(ctx,
		"INSERT INTO applications (team_id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		a.TeamID, a.Name, a.Description, a.CreatedAt, a.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrApplicationExists
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListApplications pages through a team's applications. A missing team
// yields *TeamNotFoundError and a search without matches *NoMatchError.
func (s *Store) ListApplications(ctx context.Context, teamID, limit, offset int64, search string) ([]models.Application, error) {
	ok, err := s.TeamExists(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &TeamNotFoundError{TeamID: teamID}
	}

	apps := []models.Application{}
	if search == "" {
		err = s.list(ctx, &apps,
			"SELECT "+applicationColumns+" FROM applications WHERE team_id = ? ORDER BY id LIMIT ? OFFSET ?",
			teamID, limit, offset)
		return apps, err
	}

	err = s.list(ctx, &apps,
		"SELECT "+applicationColumns+" FROM applications WHERE team_id = ? AND LOWER(name) LIKE LOWER(?) ORDER BY id LIMIT ? OFFSET ?",
		teamID, likePattern(search), limit, offset)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, &NoMatchError{Entity: "applications", Search: search}
	}
	return apps, nil
}

func (s *Store) teamApplication(ctx context.Context, teamID, appID int64) (*models.Application, error) {
	if err := s.requireTeam(ctx, teamID); err != nil {
		return nil, err
	}
	a := &models.Application{}
	err := s.get(ctx, a, ErrApplicationNotFound,
		"SELECT "+applicationColumns+" FROM applications WHERE id = ? AND team_id = ?", appID, teamID)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// PatchApplication updates the non-nil fields of an application owned by teamID.
func (s *Store) PatchApplication(ctx context.Context, teamID, appID int64, name, description *string) (*models.Application, error) {
	a, err := s.teamApplication(ctx, teamID, appID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		a.Name = *name
	}
	if description != nil {
		a.Description = description
	}
	a.UpdatedAt = now()

	_, err = s.update(ctx,
		"UPDATE applications SET name = ?, description = ?, updated_at = ? WHERE id = ?",
		a.Name, a.Description, a.UpdatedAt, a.ID,
	)
	if isUniqueViolation(err) {
		return nil, ErrApplicationExists
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetApplication returns an application of teamID with the ids of its groups.
func (s *Store) GetApplication(ctx context.Context, teamID, appID int64) (*models.ApplicationDetail, error) {
	a, err := s.teamApplication(ctx, teamID, appID)
	if err != nil {
		return nil, err
	}

	groups := []int64{}
	err = s.list(ctx, &groups,
		"SELECT group_id FROM application_groups WHERE application_id = ? ORDER BY group_id", a.ID)
	if err != nil {
		return nil, err
	}

	return &models.ApplicationDetail{ApplicationView: a.View(), Group: groups}, nil
}

package store

import (
	"context"

	"github.com/MediSynth-io/updateservice/internal/models"
)

func (s *Store) GroupExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, "rollout_groups", "id = ?", id)
}

func (s *Store) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	taken, err := s.exists(ctx, "rollout_groups", "name = ?", name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrGroupExists
	}

	g := &models.Group{Name: name, CreatedAt: now()}
	g.UpdatedAt = g.CreatedAt
	g.ID, err = s.insert(ctx,
		"INSERT INTO rollout_groups (name, created_at, updated_at) VALUES (?, ?, ?)",
		g.Name, g.CreatedAt, g.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrGroupExists
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGroup removes a group that has no applications assigned.
func (s *Store) DeleteGroup(ctx context.Context, id int64) error {
	ok, err := s.GroupExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGroupNotFound
	}

	inUse, err := s.exists(ctx, "application_groups", "group_id = ?", id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrGroupInUse
	}

	_, err = s.update(ctx, "DELETE FROM rollout_groups WHERE id = ?", id)
	return err
}

func (s *Store) requireApplicationAndGroup(ctx context.Context, appID, groupID int64) error {
	ok, err := s.ApplicationExists(ctx, appID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrApplicationNotFound
	}

	ok, err = s.GroupExists(ctx, groupID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGroupNotFound
	}
	return nil
}

// AssignGroup links an application to a group. Each pair may be linked once.
func (s *Store) AssignGroup(ctx context.Context, appID, groupID int64) (*models.ApplicationGroup, error) {
	if err := s.requireApplicationAndGroup(ctx, appID, groupID); err != nil {
		return nil, err
	}

	linked, err := s.exists(ctx, "application_groups", "application_id = ? AND group_id = ?", appID, groupID)
	if err != nil {
		return nil, err
	}
	if linked {
		return nil, &AlreadyAssignedError{ApplicationID: appID, GroupID: groupID}
	}

	link := &models.ApplicationGroup{ApplicationID: appID, GroupID: groupID}
	link.ID, err = s.insert(ctx,
		"INSERT INTO application_groups (application_id, group_id) VALUES (?, ?)", appID, groupID)
	if isUniqueViolation(err) {
		return nil, &AlreadyAssignedError{ApplicationID: appID, GroupID: groupID}
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (s *Store) UnassignGroup(ctx context.Context, appID, groupID int64) error {
	if err := s.requireApplicationAndGroup(ctx, appID, groupID); err != nil {
		return err
	}

	n, err := s.update(ctx,
		"DELETE FROM application_groups WHERE application_id = ? AND group_id = ?", appID, groupID)
	if err != nil {
		return err
	}
	if n == 0 {
		return &NotAssignedError{ApplicationID: appID, GroupID: groupID}
	}
	return nil
}

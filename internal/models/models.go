package models

import (
	"time"
)

// Ref is the nested {"id": n} form used to point at a parent entity.
type Ref struct {
	ID int64 `json:"id"`
}

// Team owns applications.
type Team struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// User represents a user in the system
type User struct {
	ID        int64      `json:"id" db:"id"`
	Email     string     `json:"email" db:"email"`
	FullName  string     `json:"full_name" db:"full_name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	LastLogin *time.Time `json:"last_login" db:"last_login"`
}

// Token is an issued bearer token. Rows are never removed; revocation sets
// Deleted.
type Token struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	JTI       string    `json:"-" db:"jti"`
	Deleted   bool      `json:"deleted" db:"deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Application struct {
	ID          int64     `db:"id"`
	TeamID      int64     `db:"team_id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ApplicationView is the response shape of an application.
type ApplicationView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Team        Ref     `json:"team"`
}

// ApplicationDetail adds the ids of the groups the application belongs to.
type ApplicationDetail struct {
	ApplicationView
	Group []int64 `json:"group"`
}

func (a *Application) View() ApplicationView {
	return ApplicationView{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Team:        Ref{ID: a.TeamID},
	}
}

// Group is a named rollout group of applications.
type Group struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ApplicationGroup links one application to one group.
type ApplicationGroup struct {
	ID            int64 `json:"id" db:"id"`
	ApplicationID int64 `json:"application_id" db:"application_id"`
	GroupID       int64 `json:"group_id" db:"group_id"`
}

// Backup records a package file mirrored to the offsite bucket.
type Backup struct {
	ID         int64     `json:"id" db:"id"`
	PackageID  int64     `json:"package_id" db:"package_id"`
	BackupPath string    `json:"backup_path" db:"backup_path"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

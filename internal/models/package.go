package models

import (
	"regexp"
	"time"
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidVersion reports whether v has the X.Y.Z form. Leading zeros are allowed.
func ValidVersion(v string) bool {
	return versionPattern.MatchString(v)
}

// Package is one published version of an application. File, URL, Hash and
// Size are either all nil or all set.
type Package struct {
	ID            int64     `db:"id"`
	ApplicationID int64     `db:"application_id"`
	Version       string    `db:"version"`
	Description   *string   `db:"description"`
	File          *string   `db:"file"`
	URL           *string   `db:"url"`
	Hash          *string   `db:"hash"`
	Size          *int64    `db:"size"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// HasFile reports whether an artifact has been uploaded for the package.
func (p *Package) HasFile() bool {
	return p.File != nil
}

type PackageView struct {
	ID          int64   `json:"id"`
	Version     string  `json:"version"`
	Description *string `json:"description"`
	File        *string `json:"file"`
	URL         *string `json:"url"`
	Hash        *string `json:"hash"`
	Size        *int64  `json:"size"`
	Application Ref     `json:"application"`
}

// PackageSummary is the list form, without artifact fields.
type PackageSummary struct {
	ID          int64   `json:"id"`
	Version     string  `json:"version"`
	Description *string `json:"description"`
	Application Ref     `json:"application"`
}

func (p *Package) View() PackageView {
	return PackageView{
		ID:          p.ID,
		Version:     p.Version,
		Description: p.Description,
		File:        p.File,
		URL:         p.URL,
		Hash:        p.Hash,
		Size:        p.Size,
		Application: Ref{ID: p.ApplicationID},
	}
}

func (p *Package) Summary() PackageSummary {
	return PackageSummary{
		ID:          p.ID,
		Version:     p.Version,
		Description: p.Description,
		Application: Ref{ID: p.ApplicationID},
	}
}

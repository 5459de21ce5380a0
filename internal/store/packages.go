package store

import (
	"context"

	"github.com/MediSynth-io/updateservice/internal/models"
)

const packageColumns = "id, application_id, version, description, file, url, hash, size, created_at, updated_at"

// InsertPackage stores a package without an artifact and sets its ID.
func (s *Store) InsertPackage(ctx context.Context, p *models.Package) error {
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	id, err := s.insert(ctx,
		"INSERT INTO packages (application_id, version, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		p.ApplicationID, p.Version, p.Description, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (s *Store) GetPackage(ctx context.Context, appID, pkgID int64) (*models.Package, error) {
	p := &models.Package{}
	err := s.get(ctx, p, ErrPackageNotFound,
		"SELECT "+packageColumns+" FROM packages WHERE id = ? AND application_id = ?", pkgID, appID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListPackages(ctx context.Context, appID, limit, offset int64) ([]models.Package, error) {
	pkgs := []models.Package{}
	err := s.list(ctx, &pkgs,
		"SELECT "+packageColumns+" FROM packages WHERE application_id = ? ORDER BY id LIMIT ? OFFSET ?",
		appID, limit, offset)
	return pkgs, err
}

func (s *Store) DeletePackage(ctx context.Context, appID, pkgID int64) error {
	n, err := s.update(ctx, "DELETE FROM packages WHERE id = ? AND application_id = ?", pkgID, appID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPackageNotFound
	}
	return nil
}

// SetPackageFile records an uploaded artifact. The four artifact columns are
// written by one statement.
func (s *Store) SetPackageFile(ctx context.Context, appID, pkgID int64, file, url, hash string, size int64) (*models.Package, error) {
	n, err := s.update(ctx,
		"UPDATE packages SET file = ?, url = ?, hash = ?, size = ?, updated_at = ? WHERE id = ? AND application_id = ?",
		file, url, hash, size, now(), pkgID, appID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrPackageNotFound
	}
	return s.GetPackage(ctx, appID, pkgID)
}

// PackagesWithFiles lists every package that has an uploaded artifact.
func (s *Store) PackagesWithFiles(ctx context.Context) ([]models.Package, error) {
	pkgs := []models.Package{}
	err := s.list(ctx, &pkgs,
		"SELECT "+packageColumns+" FROM packages WHERE file IS NOT NULL ORDER BY id")
	return pkgs, err
}

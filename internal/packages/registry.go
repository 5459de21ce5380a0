package packages

import (
	"context"
	"errors"
	"fmt"

	"github.com/MediSynth-io/updateservice/internal/models"
	"github.com/MediSynth-io/updateservice/internal/store"
)

var ErrInvalidVersion = errors.New("invalid version format")

// Repository is the persistence used by the Registry and the ArtifactStore.
type Repository interface {
	ApplicationExists(ctx context.Context, id int64) (bool, error)
	InsertPackage(ctx context.Context, p *models.Package) error
	GetPackage(ctx context.Context, appID, pkgID int64) (*models.Package, error)
	ListPackages(ctx context.Context, appID, limit, offset int64) ([]models.Package, error)
	DeletePackage(ctx context.Context, appID, pkgID int64) error
	SetPackageFile(ctx context.Context, appID, pkgID int64, file, url, hash string, size int64) (*models.Package, error)
}

// Registry manages package metadata scoped to an application.
type Registry struct {
	repo Repository
}

func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo}
}

func requireApplication(ctx context.Context, repo Repository, appID int64) error {
	ok, err := repo.ApplicationExists(ctx, appID)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrApplicationNotFound
	}
	return nil
}

// resolve loads a package after checking its application exists.
func resolve(ctx context.Context, repo Repository, appID, pkgID int64) (*models.Package, error) {
	if err := requireApplication(ctx, repo, appID); err != nil {
		return nil, err
	}
	return repo.GetPackage(ctx, appID, pkgID)
}

// Create registers a new version of an application without an artifact.
func (r *Registry) Create(ctx context.Context, appID int64, version string, description *string) (*models.Package, error) {
	if err := requireApplication(ctx, r.repo, appID); err != nil {
		return nil, err
	}
	if !models.ValidVersion(version) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}

	p := &models.Package{ApplicationID: appID, Version: version, Description: description}
	if err := r.repo.InsertPackage(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Registry) Get(ctx context.Context, appID, pkgID int64) (*models.Package, error) {
	return resolve(ctx, r.repo, appID, pkgID)
}

// List returns a page of an application's packages. It does not check that
// the application exists.
func (r *Registry) List(ctx context.Context, appID, limit, offset int64) ([]models.Package, error) {
	return r.repo.ListPackages(ctx, appID, limit, offset)
}

// ApplicationExists lets callers check the parent before listing.
func (r *Registry) ApplicationExists(ctx context.Context, appID int64) error {
	return requireApplication(ctx, r.repo, appID)
}

// Delete removes the package row. Any uploaded file stays on disk.
func (r *Registry) Delete(ctx context.Context, appID, pkgID int64) error {
	if _, err := resolve(ctx, r.repo, appID, pkgID); err != nil {
		return err
	}
	return r.repo.DeletePackage(ctx, appID, pkgID)
}

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/MediSynth-io/updateservice/internal/models"
	"go.uber.org/zap"
)

// ObjectStore is the remote side of a mirror pass.
type ObjectStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	UploadFile(ctx context.Context, key string, body io.Reader, size int64) error
	GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// Catalog is the local side of a mirror pass.
type Catalog interface {
	PackagesWithFiles(ctx context.Context) ([]models.Package, error)
	BackedUpPackageIDs(ctx context.Context) (map[int64]bool, error)
	InsertBackup(ctx context.Context, b *models.Backup) error
}

// Mirror copies uploaded package artifacts to an object store.
type Mirror struct {
	root    string
	objects ObjectStore
	catalog Catalog
	expiry  time.Duration
	log     *zap.SugaredLogger
}

func NewMirror(root string, objects ObjectStore, catalog Catalog, expiry time.Duration, lg *zap.SugaredLogger) *Mirror {
	return &Mirror{root: root, objects: objects, catalog: catalog, expiry: expiry, log: lg}
}

// ObjectKey is the bucket key of a package artifact.
func ObjectKey(pkgID int64, file string) string {
	return path.Join(fmt.Sprintf("Package_%d", pkgID), file)
}

// Run mirrors every package that has a file and no backup record yet.
// Packages whose local file is missing are counted as skipped.
func (m *Mirror) Run(ctx context.Context) (uploaded, skipped int, err error) {
	pkgs, err := m.catalog.PackagesWithFiles(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list packages: %w", err)
	}
	done, err := m.catalog.BackedUpPackageIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list backups: %w", err)
	}

	for i := range pkgs {
		p := &pkgs[i]
		if done[p.ID] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return uploaded, skipped, err
		}

		ok, err := m.mirror(ctx, p)
		if err != nil {
			return uploaded, skipped, fmt.Errorf("package %d: %w", p.ID, err)
		}
		if ok {
			uploaded++
		} else {
			skipped++
		}
	}
	return uploaded, skipped, nil
}

func (m *Mirror) mirror(ctx context.Context, p *models.Package) (bool, error) {
	local := filepath.Join(m.root, fmt.Sprintf("Package_%d", p.ID), *p.File)
	info, err := os.Stat(local)
	if err != nil {
		m.log.Warnw("local artifact missing, skipping", "package", p.ID, "path", local, "error", err)
		return false, nil
	}

	key := ObjectKey(p.ID, *p.File)
	present, err := m.objects.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if !present {
		f, err := os.Open(local)
		if err != nil {
			m.log.Warnw("local artifact unreadable, skipping", "package", p.ID, "path", local, "error", err)
			return false, nil
		}
		err = m.objects.UploadFile(ctx, key, f, info.Size())
		f.Close()
		if err != nil {
			return false, err
		}
		m.log.Infow("artifact mirrored", "package", p.ID, "key", key, "size", info.Size())
	}

	url, err := m.objects.GeneratePresignedURL(ctx, key, m.expiry)
	if err != nil {
		return false, err
	}
	if err := m.catalog.InsertBackup(ctx, &models.Backup{PackageID: p.ID, BackupPath: url}); err != nil {
		return false, fmt.Errorf("record backup: %w", err)
	}
	return true, nil
}

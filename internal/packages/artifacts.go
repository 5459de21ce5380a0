package packages

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/MediSynth-io/updateservice/internal/models"
	"github.com/google/uuid"
)

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFilename = errors.New("invalid filename")
)

// ArtifactStore owns the on-disk layout of uploaded package files:
// {root}/Package_{id}/{filename}.
type ArtifactStore struct {
	root string
	repo Repository
}

func NewArtifactStore(root string, repo Repository) *ArtifactStore {
	return &ArtifactStore{root: root, repo: repo}
}

// Dir returns the directory holding the artifact of a package.
func (s *ArtifactStore) Dir(pkgID int64) string {
	return filepath.Join(s.root, fmt.Sprintf("Package_%d", pkgID))
}

// FileURL is the download location recorded for an uploaded package.
func FileURL(appID, pkgID int64) string {
	return fmt.Sprintf("/v1/applications/%d/packages/%d/file", appID, pkgID)
}

func cleanFilename(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + filepath.ToSlash(name)))
	if base == "/" || base == "." || base == ".." || base == "" {
		return "", ErrInvalidFilename
	}
	return base, nil
}

// Upload streams src into the package directory under filename, hashing the
// bytes as they are written, then records file, url, hash and size in one
// update. A second upload with the same name replaces the first.
func (s *ArtifactStore) Upload(ctx context.Context, appID, pkgID int64, src io.Reader, filename string) (*models.Package, error) {
	if _, err := resolve(ctx, s.repo, appID, pkgID); err != nil {
		return nil, err
	}

	name, err := cleanFilename(filename)
	if err != nil {
		return nil, err
	}

	dir := s.Dir(pkgID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create package directory: %w", err)
	}

	hash, size, err := writeFile(filepath.Join(dir, name), src)
	if err != nil {
		return nil, err
	}

	return s.repo.SetPackageFile(ctx, appID, pkgID, name, FileURL(appID, pkgID), hash, size)
}

// writeFile writes src to a temporary sibling of path and renames it into
// place. It returns the sha-256 hex digest and byte count of what was written.
func writeFile(path string, src io.Reader) (string, int64, error) {
	tmp := filepath.Join(filepath.Dir(path), ".upload-"+uuid.NewString())
	dst, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(dst, hasher), src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("write file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("move file into place: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}

// Artifact locates a stored file for streaming.
type Artifact struct {
	Path     string
	Filename string
	Package  *models.Package
}

// Download resolves the artifact of a package. ErrFileNotFound covers both a
// package that was never uploaded and a file missing from disk.
func (s *ArtifactStore) Download(ctx context.Context, appID, pkgID int64) (*Artifact, error) {
	p, err := resolve(ctx, s.repo, appID, pkgID)
	if err != nil {
		return nil, err
	}
	if !p.HasFile() {
		return nil, ErrFileNotFound
	}

	path := filepath.Join(s.Dir(p.ID), *p.File)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, ErrFileNotFound
	}
	return &Artifact{Path: path, Filename: *p.File, Package: p}, nil
}

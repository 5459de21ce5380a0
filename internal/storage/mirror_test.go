package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MediSynth-io/updateservice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockObjectStore struct {
	mock.Mock
	uploads map[string][]byte
}

func (m *MockObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStore) UploadFile(ctx context.Context, key string, body io.Reader, size int64) error {
	data, _ := io.ReadAll(body)
	if m.uploads == nil {
		m.uploads = map[string][]byte{}
	}
	m.uploads[key] = data
	args := m.Called(ctx, key, size)
	return args.Error(0)
}

func (m *MockObjectStore) GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, key, expiration)
	return args.String(0), args.Error(1)
}

type fakeCatalog struct {
	pkgs    []models.Package
	done    map[int64]bool
	backups []models.Backup
}

func (c *fakeCatalog) PackagesWithFiles(context.Context) ([]models.Package, error) {
	return c.pkgs, nil
}

func (c *fakeCatalog) BackedUpPackageIDs(context.Context) (map[int64]bool, error) {
	return c.done, nil
}

func (c *fakeCatalog) InsertBackup(_ context.Context, b *models.Backup) error {
	c.backups = append(c.backups, *b)
	return nil
}

func strPtr(v string) *string { return &v }

func writeArtifact(t *testing.T, root string, pkgID int64, name, content string) {
	t.Helper()
	dir := filepath.Join(root, fmt.Sprintf("Package_%d", pkgID))
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestMirrorRun(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, 1, "a.bin", "alpha")
	writeArtifact(t, root, 2, "b.bin", "beta")

	catalog := &fakeCatalog{
		pkgs: []models.Package{
			{ID: 1, File: strPtr("a.bin")},
			{ID: 2, File: strPtr("b.bin")},
			{ID: 3, File: strPtr("gone.bin")},
			{ID: 4, File: strPtr("old.bin")},
		},
		done: map[int64]bool{4: true},
	}

	objects := new(MockObjectStore)
	ctx := context.Background()
	objects.On("Exists", ctx, "Package_1/a.bin").Return(false, nil)
	objects.On("Exists", ctx, "Package_2/b.bin").Return(true, nil)
	objects.On("UploadFile", ctx, "Package_1/a.bin", int64(5)).Return(nil)
	objects.On("GeneratePresignedURL", ctx, "Package_1/a.bin", time.Hour).Return("https://bucket/a", nil)
	objects.On("GeneratePresignedURL", ctx, "Package_2/b.bin", time.Hour).Return("https://bucket/b", nil)

	m := NewMirror(root, objects, catalog, time.Hour, zap.NewNop().Sugar())
	uploaded, skipped, err := m.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, uploaded)
	assert.Equal(t, 1, skipped)

	objects.AssertExpectations(t)
	objects.AssertNumberOfCalls(t, "UploadFile", 1)
	assert.Equal(t, "alpha", string(objects.uploads["Package_1/a.bin"]))

	require.Len(t, catalog.backups, 2)
	assert.Equal(t, int64(1), catalog.backups[0].PackageID)
	assert.Equal(t, "https://bucket/a", catalog.backups[0].BackupPath)
	assert.Equal(t, int64(2), catalog.backups[1].PackageID)
}

func TestMirrorRunStopsOnRemoteError(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, 7, "x.bin", "x")

	catalog := &fakeCatalog{pkgs: []models.Package{{ID: 7, File: strPtr("x.bin")}}}
	objects := new(MockObjectStore)
	objects.On("Exists", mock.Anything, "Package_7/x.bin").Return(false, errors.New("access denied"))

	m := NewMirror(root, objects, catalog, time.Hour, zap.NewNop().Sugar())
	_, _, err := m.Run(context.Background())
	assert.ErrorContains(t, err, "access denied")
	assert.Empty(t, catalog.backups)
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	assert.Equal(t, "http://localhost:9000", endpointURL("http://localhost:9000", true))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "Package_12/app.zip", ObjectKey(12, "app.zip"))
}

package store

import (
	"context"

	"github.com/MediSynth-io/updateservice/internal/models"
)

// BackedUpPackageIDs returns the ids of packages that already have a backup row.
func (s *Store) BackedUpPackageIDs(ctx context.Context) (map[int64]bool, error) {
	var ids []int64
	if err := s.list(ctx, &ids, "SELECT package_id FROM backups"); err != nil {
		return nil, err
	}

	done := make(map[int64]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}
	return done, nil
}

func (s *Store) InsertBackup(ctx context.Context, b *models.Backup) error {
	b.CreatedAt = now()
	id, err := s.insert(ctx,
		"INSERT INTO backups (package_id, backup_path, created_at) VALUES (?, ?, ?)",
		b.PackageID, b.BackupPath, b.CreatedAt,
	)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

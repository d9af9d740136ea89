package repository

import (
	"context"
	"fmt"

	"github.com/parisxmas/OxiDB/OxiStory/internal/db"
)

// NewOxiDBStores builds the OxiDB-backed stores over pool.
func NewOxiDBStores(pool *db.Pool) *Stores {
	return &Stores{
		Submissions: NewSubmissionRepo(pool),
		Photos:      NewPhotoRepo(pool),
		Blobs:       NewBlobRepo(pool),
		Admins:      NewAdminRepo(pool),
	}
}

// PrepareOxiDB creates the indexes and the photo bucket. Admin indexes come
// first so the operator seed can run right after.
func PrepareOxiDB(ctx context.Context, pool *db.Pool) error {
	if err := NewAdminRepo(pool).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("admin indexes: %w", err)
	}
	if err := NewBlobRepo(pool).EnsureBucket(ctx); err != nil {
		return fmt.Errorf("photo bucket: %w", err)
	}
	if err := NewPhotoRepo(pool).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("photo indexes: %w", err)
	}
	if err := NewSubmissionRepo(pool).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("submission indexes: %w", err)
	}
	return nil
}

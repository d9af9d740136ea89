package repository

import (
	"context"
	"sort"

	"github.com/parisxmas/OxiDB/OxiStory/internal/db"
	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
)

const PhotosCollection = "_story_submission_photos"

type PhotoRepo struct {
	pool *db.Pool
}

func NewPhotoRepo(pool *db.Pool) *PhotoRepo {
	return &PhotoRepo{pool: pool}
}

func (r *PhotoRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	if err := c.CreateIndex(ctx, PhotosCollection, "submission_id"); err != nil {
		return err
	}
	return c.CreateUniqueIndex(ctx, PhotosCollection, "file_path")
}

func (r *PhotoRepo) Create(ctx context.Context, p *models.Photo) (string, error) {
	c := r.pool.Get()
	result, err := c.Insert(ctx, PhotosCollection, map[string]any{
		"submission_id": p.SubmissionID,
		"file_path":     p.FilePath,
		"file_name":     p.FileName,
		"legenda":       p.Caption,
		"ano":           p.Year,
		"file_size":     p.FileSize,
		"mime_type":     p.MimeType,
		"created_at":    p.CreatedAt,
	})
	if err != nil {
		return "", err
	}
	return extractID(result), nil
}

func (r *PhotoRepo) ListBySubmission(ctx context.Context, submissionID string) ([]models.Photo, error) {
	c := r.pool.Get()
	docs, err := c.Find(ctx, PhotosCollection, map[string]any{"submission_id": submissionID}, nil)
	if err != nil {
		return nil, err
	}
	photos := make([]models.Photo, 0, len(docs))
	for _, d := range docs {
		photos = append(photos, docToPhoto(d))
	}
	// Same prefix, so shorter paths carry smaller positions.
	sort.Slice(photos, func(i, j int) bool {
		a, b := photos[i].FilePath, photos[j].FilePath
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return photos, nil
}

func (r *PhotoRepo) DeleteBySubmission(ctx context.Context, submissionID string) error {
	c := r.pool.Get()
	_, err := c.Delete(ctx, PhotosCollection, map[string]any{"submission_id": submissionID})
	return err
}

func docToPhoto(doc map[string]any) models.Photo {
	normalizeID(doc)
	return models.Photo{
		ID:           asString(doc["_id"]),
		SubmissionID: asString(doc["submission_id"]),
		FilePath:     asString(doc["file_path"]),
		FileName:     asString(doc["file_name"]),
		Caption:      asString(doc["legenda"]),
		Year:         asString(doc["ano"]),
		FileSize:     asInt64(doc["file_size"]),
		MimeType:     asString(doc["mime_type"]),
		CreatedAt:    asString(doc["created_at"]),
	}
}

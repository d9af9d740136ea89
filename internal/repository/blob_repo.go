package repository

import (
	"context"
	"sort"

	"github.com/parisxmas/OxiDB/OxiStory/internal/db"
	"github.com/parisxmas/OxiDB/OxiStory/internal/oxidb"
)

const PhotoBucket = "submission-photos"

type BlobRepo struct {
	pool *db.Pool
}

func NewBlobRepo(pool *db.Pool) *BlobRepo {
	return &BlobRepo{pool: pool}
}

func (r *BlobRepo) EnsureBucket(ctx context.Context) error {
	err := r.pool.Get().CreateBucket(ctx, PhotoBucket)
	if oxidb.IsAlreadyExists(err) {
		return nil
	}
	return err
}

func (r *BlobRepo) Put(ctx context.Context, path string, data []byte, contentType string) error {
	return r.pool.Get().PutObject(ctx, PhotoBucket, path, data, contentType)
}

func (r *BlobRepo) Get(ctx context.Context, path string) ([]byte, string, error) {
	data, meta, err := r.pool.Get().GetObject(ctx, PhotoBucket, path)
	if err != nil {
		if oxidb.IsNotFound(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	ct, _ := meta["content_type"].(string)
	return data, ct, nil
}

func (r *BlobRepo) Delete(ctx context.Context, path string) error {
	err := r.pool.Get().DeleteObject(ctx, PhotoBucket, path)
	if oxidb.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *BlobRepo) List(ctx context.Context, prefix string) ([]string, error) {
	objs, err := r.pool.Get().ListObjects(ctx, PhotoBucket, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(objs))
	for _, o := range objs {
		if k, ok := o["key"].(string); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

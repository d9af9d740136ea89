package repository

import (
	"context"
	"sort"

	"github.com/parisxmas/OxiDB/OxiStory/internal/db"
	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
	"github.com/parisxmas/OxiDB/OxiStory/internal/oxidb"
)

const SubmissionsCollection = "_story_submissions"

type SubmissionRepo struct {
	pool *db.Pool
}

func NewSubmissionRepo(pool *db.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func (r *SubmissionRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	if err := c.CreateIndex(ctx, SubmissionsCollection, "status"); err != nil {
		return err
	}
	return c.CreateCompositeIndex(ctx, SubmissionsCollection, []string{"status", "created_at"})
}

func (r *SubmissionRepo) Create(ctx context.Context, sub *models.Submission) (string, error) {
	c := r.pool.Get()
	result, err := c.Insert(ctx, SubmissionsCollection, sub.Columns())
	if err != nil {
		return "", err
	}
	return extractID(result), nil
}

func (r *SubmissionRepo) Get(ctx context.Context, id string) (*models.Submission, error) {
	c := r.pool.Get()
	doc, err := c.FindOne(ctx, SubmissionsCollection, map[string]any{"_id": toNumericID(id)})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return docToSubmission(doc), nil
}

func (r *SubmissionRepo) List(ctx context.Context, status models.Status) ([]*models.Submission, error) {
	c := r.pool.Get()
	docs, err := c.Find(ctx, SubmissionsCollection, statusQuery(status), &oxidb.FindOptions{
		Sort: map[string]any{"created_at": -1},
	})
	if err != nil {
		return nil, err
	}
	subs := make([]*models.Submission, 0, len(docs))
	for _, d := range docs {
		subs = append(subs, docToSubmission(d))
	}
	sort.SliceStable(subs, func(i, j int) bool { return newerFirst(subs[i], subs[j]) })
	return subs, nil
}

func (r *SubmissionRepo) Update(ctx context.Context, id string, set map[string]string) error {
	c := r.pool.Get()
	doc := make(map[string]any, len(set))
	for k, v := range set {
		doc[k] = v
	}
	res, err := c.UpdateOne(ctx, SubmissionsCollection, map[string]any{"_id": toNumericID(id)}, map[string]any{"$set": doc})
	if err != nil {
		return err
	}
	if n, ok := res["modified"].(float64); ok && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubmissionRepo) Delete(ctx context.Context, id string) error {
	c := r.pool.Get()
	_, err := c.DeleteOne(ctx, SubmissionsCollection, map[string]any{"_id": toNumericID(id)})
	return err
}

func (r *SubmissionRepo) Count(ctx context.Context, status models.Status) (int, error) {
	c := r.pool.Get()
	return c.Count(ctx, SubmissionsCollection, statusQuery(status))
}

func statusQuery(status models.Status) map[string]any {
	if status == "" || status == models.StatusAny {
		return map[string]any{}
	}
	return map[string]any{"status": string(status)}
}

func docToSubmission(doc map[string]any) *models.Submission {
	normalizeID(doc)
	id, _ := doc["_id"].(string)
	return models.SubmissionFromColumns(id, doc)
}

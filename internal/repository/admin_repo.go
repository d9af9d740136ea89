package repository

import (
	"context"

	"github.com/parisxmas/OxiDB/OxiStory/internal/db"
	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
)

const AdminsCollection = "_story_admins"

type AdminRepo struct {
	pool *db.Pool
}

func NewAdminRepo(pool *db.Pool) *AdminRepo {
	return &AdminRepo{pool: pool}
}

func (r *AdminRepo) EnsureIndexes(ctx context.Context) error {
	return r.pool.Get().CreateUniqueIndex(ctx, AdminsCollection, "email")
}

func (r *AdminRepo) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	c := r.pool.Get()
	doc, err := c.FindOne(ctx, AdminsCollection, map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	normalizeID(doc)
	return &models.Admin{
		ID:           asString(doc["_id"]),
		Email:        asString(doc["email"]),
		PasswordHash: asString(doc["password_hash"]),
		CreatedAt:    asString(doc["created_at"]),
	}, nil
}

func (r *AdminRepo) Create(ctx context.Context, a *models.Admin) (string, error) {
	c := r.pool.Get()
	result, err := c.Insert(ctx, AdminsCollection, map[string]any{
		"email":         a.Email,
		"password_hash": a.PasswordHash,
		"created_at":    a.CreatedAt,
	})
	if err != nil {
		return "", err
	}
	return extractID(result), nil
}

package repository

import (
	"context"
	"errors"

	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
)

var ErrNotFound = errors.New("not found")

// SubmissionStore persists submission records.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) (string, error)
	// Get returns ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (*models.Submission, error)
	// List returns the records with the given status ("" for all), newest
	// first.
	List(ctx context.Context, status models.Status) ([]*models.Submission, error)
	// Update sets the given columns on one record.
	Update(ctx context.Context, id string, set map[string]string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, status models.Status) (int, error)
}

// PhotoStore persists photo metadata rows.
type PhotoStore interface {
	Create(ctx context.Context, p *models.Photo) (string, error)
	// ListBySubmission returns rows in photo position order.
	ListBySubmission(ctx context.Context, submissionID string) ([]models.Photo, error)
	DeleteBySubmission(ctx context.Context, submissionID string) error
}

// BlobStore holds photo content keyed by storage path.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	// Get returns ErrNotFound for an unknown path.
	Get(ctx context.Context, path string) ([]byte, string, error)
	Delete(ctx context.Context, path string) error
	// List returns the paths under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// AdminStore persists back-office operators.
type AdminStore interface {
	// FindByEmail returns nil, nil when no operator matches.
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	Create(ctx context.Context, a *models.Admin) (string, error)
}

// Stores groups one backend's implementations.
type Stores struct {
	Submissions SubmissionStore
	Photos      PhotoStore
	Blobs       BlobStore
	Admins      AdminStore
}

package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
	"github.com/parisxmas/OxiDB/OxiStory/internal/organize"
	"github.com/parisxmas/OxiDB/OxiStory/internal/repository"
)

// Organizer turns a submission into an organized story.
type Organizer interface {
	Organize(ctx context.Context, sub *models.Submission) (*organize.Result, error)
}

// SubmissionService is the back-office view over committed submissions.
type SubmissionService struct {
	subs      repository.SubmissionStore
	photos    repository.PhotoStore
	blobs     repository.BlobStore
	organizer Organizer
	publicURL string
}

func NewSubmissionService(stores *repository.Stores, organizer Organizer, publicURL string) *SubmissionService {
	return &SubmissionService{
		subs:      stores.Submissions,
		photos:    stores.Photos,
		blobs:     stores.Blobs,
		organizer: organizer,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// PhotoURL is the public address of a stored photo.
func (s *SubmissionService) PhotoURL(path string) string {
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return s.publicURL + "/api/v1/files/" + strings.Join(segs, "/")
}

func (s *SubmissionService) withPhotos(ctx context.Context, sub *models.Submission) error {
	photos, err := s.photos.ListBySubmission(ctx, sub.ID)
	if err != nil {
		return fmt.Errorf("photos of submission %s: %w", sub.ID, err)
	}
	for i := range photos {
		photos[i].URL = s.PhotoURL(photos[i].FilePath)
	}
	sub.Photos = photos
	return nil
}

// List returns the matching submissions, newest first, with their photos.
func (s *SubmissionService) List(ctx context.Context, f models.SubmissionFilter) ([]*models.Submission, error) {
	subs, err := s.subs.List(ctx, f.Status)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Submission, 0, len(subs))
	for _, sub := range subs {
		if !f.Match(sub) {
			continue
		}
		if err := s.withPhotos(ctx, sub); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.subs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.withPhotos(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Submission, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.subs.Update(ctx, id, map[string]string{
		"status":     string(status),
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *SubmissionService) UpdateNotes(ctx context.Context, id, notes string) (*models.Submission, error) {
	if err := s.subs.Update(ctx, id, map[string]string{
		"observacoes": notes,
		"updated_at":  time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the record, its photo rows and every blob stored under its
// prefix, including blobs orphaned by a partially failed commit.
func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	if _, err := s.subs.Get(ctx, id); err != nil {
		return err
	}
	paths, err := s.blobs.List(ctx, id+"/")
	if err != nil {
		return fmt.Errorf("list blobs: %w", err)
	}
	for _, p := range paths {
		if err := s.blobs.Delete(ctx, p); err != nil {
			log.Printf("Warning: delete blob %s: %v", p, err)
		}
	}
	if err := s.photos.DeleteBySubmission(ctx, id); err != nil {
		return fmt.Errorf("delete photo rows: %w", err)
	}
	return s.subs.Delete(ctx, id)
}

// File returns a stored photo by path.
func (s *SubmissionService) File(ctx context.Context, path string) ([]byte, string, error) {
	return s.blobs.Get(ctx, path)
}

// Organize sends the submission to the AI workflow.
func (s *SubmissionService) Organize(ctx context.Context, id string) (*organize.Result, error) {
	if s.organizer == nil {
		return nil, ErrOrganizeDisabled
	}
	sub, err := s.subs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.organizer.Organize(ctx, sub)
}

// Dashboard holds the submission counters.
type Dashboard struct {
	Total      int `json:"total"`
	New        int `json:"novo"`
	InProgress int `json:"emAndamento"`
	Done       int `json:"finalizado"`
}

func (s *SubmissionService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	for _, c := range []struct {
		status models.Status
		dst    *int
	}{
		{"", &d.Total},
		{models.StatusNew, &d.New},
		{models.StatusInProgress, &d.InProgress},
		{models.StatusDone, &d.Done},
	} {
		n, err := s.subs.Count(ctx, c.status)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return &d, nil
}

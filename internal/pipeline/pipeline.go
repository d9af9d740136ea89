// Package pipeline commits a finished wizard: it creates the submission
// record, stores the photos and then notifies the automation endpoint.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/parisxmas/OxiDB/OxiStory/internal/catalog"
	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
	"github.com/parisxmas/OxiDB/OxiStory/internal/wizard"
)

// Records creates and removes submission records.
type Records interface {
	Create(ctx context.Context, sub *models.Submission) (string, error)
	Delete(ctx context.Context, id string) error
}

// Blobs stores photo content by path.
type Blobs interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
}

// PhotoRecords stores photo metadata rows.
type PhotoRecords interface {
	Create(ctx context.Context, p *models.Photo) (string, error)
	DeleteBySubmission(ctx context.Context, submissionID string) error
}

// Notifier receives the id of every committed submission.
type Notifier interface {
	Notify(ctx context.Context, submissionID string) error
}

// Success is the result of a committed run.
type Success struct {
	SubmissionID string
	Paths        []string
}

type Option func(*Pipeline)

// WithCompensation removes the blobs, metadata rows and record written by a
// run whose photo stage failed.
func WithCompensation() Option {
	return func(p *Pipeline) { p.compensate = true }
}

// WithNotifier sets the endpoint notified after a commit. Without one the
// notification stage is skipped.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithClock overrides time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

type Pipeline struct {
	records    Records
	blobs      Blobs
	photos     PhotoRecords
	notifier   Notifier
	compensate bool
	now        func() time.Time

	mu      sync.Mutex
	running map[string]struct{}
	bg      sync.WaitGroup
}

func New(records Records, blobs Blobs, photos PhotoRecords, opts ...Option) *Pipeline {
	p := &Pipeline{
		records: records,
		blobs:   blobs,
		photos:  photos,
		now:     time.Now,
		running: make(map[string]struct{}),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) acquire(instance string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.running[instance]; busy {
		return false
	}
	p.running[instance] = struct{}{}
	return true
}

func (p *Pipeline) release(instance string) {
	p.mu.Lock()
	delete(p.running, instance)
	p.mu.Unlock()
}

// InProgress reports whether a run for instance has not settled yet.
func (p *Pipeline) InProgress(instance string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, busy := p.running[instance]
	return busy
}

// Commit runs the record and photo stages for one wizard instance and
// starts the notification in the background. The snapshot is only read.
func (p *Pipeline) Commit(ctx context.Context, instance string, snap wizard.Submission) (*Success, error) {
	if !p.acquire(instance) {
		return nil, ErrAlreadyInProgress
	}
	defer p.release(instance)

	now := p.now().UTC().Format(time.RFC3339)
	sub := &models.Submission{
		Answers:   catalog.ToSchema(snap.Answers),
		Status:    models.StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := p.records.Create(ctx, sub)
	if err != nil {
		return nil, &StageError{Stage: StageRecord, Kind: ErrRecordCreationFailed, Err: err}
	}

	paths, err := p.storePhotos(ctx, id, snap.Photos, now)
	if err != nil {
		if p.compensate {
			p.rollback(id, paths)
		}
		return nil, &StageError{Stage: StagePhotos, Kind: ErrPhotoPersistenceFailed, SubmissionID: id, Err: err}
	}

	p.notify(ctx, id)
	return &Success{SubmissionID: id, Paths: paths}, nil
}

// PhotoPath is the storage key of the n-th (one-based) photo of a record.
func PhotoPath(id string, n int, fileName string) string {
	return fmt.Sprintf("%s/%s_%d.%s", id, id, n, extension(fileName))
}

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// storePhotos uploads every photo concurrently and returns the paths in
// photo order. On failure the returned slice holds only the paths whose
// upload completed.
func (p *Pipeline) storePhotos(ctx context.Context, id string, photos []wizard.PendingPhoto, now string) ([]string, error) {
	if len(photos) == 0 {
		return nil, nil
	}
	uploaded := make([]string, len(photos))
	var g errgroup.Group
	for i, ph := range photos {
		path := PhotoPath(id, i+1, ph.FileName)
		g.Go(func() error {
			if err := p.blobs.Put(ctx, path, ph.Data, ph.MimeType); err != nil {
				return fmt.Errorf("upload %s: %w", path, err)
			}
			uploaded[i] = path
			_, err := p.photos.Create(ctx, &models.Photo{
				SubmissionID: id,
				FilePath:     path,
				FileName:     ph.FileName,
				Caption:      ph.Caption,
				Year:         ph.Year,
				FileSize:     int64(len(ph.Data)),
				MimeType:     ph.MimeType,
				CreatedAt:    now,
			})
			if err != nil {
				return fmt.Errorf("photo metadata %s: %w", path, err)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		return uploaded, nil
	}
	done := uploaded[:0]
	for _, path := range uploaded {
		if path != "" {
			done = append(done, path)
		}
	}
	return done, err
}

func (p *Pipeline) rollback(id string, paths []string) {
	ctx := context.Background()
	for _, path := range paths {
		if err := p.blobs.Delete(ctx, path); err != nil {
			log.Printf("Warning: compensation could not delete blob %s: %v", path, err)
		}
	}
	if err := p.photos.DeleteBySubmission(ctx, id); err != nil {
		log.Printf("Warning: compensation could not delete photo rows of %s: %v", id, err)
	}
	if err := p.records.Delete(ctx, id); err != nil {
		log.Printf("Warning: compensation could not delete submission %s: %v", id, err)
	}
}

// notify runs detached from the caller; its outcome only reaches the log.
func (p *Pipeline) notify(ctx context.Context, id string) {
	if p.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	p.bg.Add(1)
	go func() {
		defer p.bg.Done()
		if err := p.notifier.Notify(ctx, id); err != nil {
			log.Printf("Warning: notification for submission %s failed: %v", id, err)
		}
	}()
}

// Wait blocks until every background notification has finished.
func (p *Pipeline) Wait() {
	p.bg.Wait()
}

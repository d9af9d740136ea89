package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
	"github.com/parisxmas/OxiDB/OxiStory/internal/wizard"
)

type fakeRecords struct {
	mu      sync.Mutex
	err     error
	created []*models.Submission
	deleted []string
	block   chan struct{}
}

func (f *fakeRecords) Create(ctx context.Context, sub *models.Submission) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, sub)
	return fmt.Sprint(len(f.created) + 40), nil
}

func (f *fakeRecords) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	failOn  string
	stored  map[string][]byte
	deleted []string
}

func (f *fakeBlobs) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if f.failOn != "" && strings.HasSuffix(path, f.failOn) {
		return errors.New("storage unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		f.stored = map[string][]byte{}
	}
	f.stored[path] = data
	return nil
}

func (f *fakeBlobs) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stored, path)
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeBlobs) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for p := range f.stored {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

type fakePhotoRows struct {
	mu      sync.Mutex
	rows    []models.Photo
	cleared []string
}

func (f *fakePhotoRows) Create(ctx context.Context, p *models.Photo) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *p)
	return fmt.Sprint(len(f.rows)), nil
}

func (f *fakePhotoRows) DeleteBySubmission(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, id)
	return nil
}

type fakeNotifier struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (f *fakeNotifier) Notify(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return f.err
}

func snapshot(photoNames ...string) wizard.Submission {
	snap := wizard.Submission{Answers: map[string]string{
		"nomes":            "Ana e Bia",
		"primeiroEncontro": "Cinema",
		"telefone":         "11999990000",
	}}
	for i, name := range photoNames {
		snap.Photos = append(snap.Photos, wizard.PendingPhoto{
			FileName: name,
			MimeType: "image/jpeg",
			Data:     []byte(name),
			Caption:  fmt.Sprintf("foto %d", i+1),
			Year:     "2020",
		})
	}
	return snap
}

var fixed = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

func TestCommitSuccess(t *testing.T) {
	recs, blobs, rows, n := &fakeRecords{}, &fakeBlobs{}, &fakePhotoRows{}, &fakeNotifier{}
	p := New(recs, blobs, rows, WithNotifier(n), WithClock(fixed))

	res, err := p.Commit(context.Background(), "w1", snapshot("praia.jpg", "festa.final.png"))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	p.Wait()

	want := []string{"41/41_1.jpg", "41/41_2.png"}
	if diff := cmp.Diff(want, res.Paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, blobs.paths()); diff != "" {
		t.Errorf("stored blobs mismatch (-want +got):\n%s", diff)
	}

	sub := recs.created[0]
	if sub.Status != models.StatusNew || sub.CreatedAt != "2025-03-10T12:00:00Z" {
		t.Errorf("record = %+v", sub)
	}
	if sub.Answer("primeiro_encontro") != "Cinema" || sub.Answer("telefone") != "11999990000" {
		t.Errorf("answers not mapped to columns: %v", sub.Answers)
	}

	if len(rows.rows) != 2 {
		t.Fatalf("photo rows = %d, want 2", len(rows.rows))
	}
	for _, r := range rows.rows {
		if r.SubmissionID != "41" || r.Year != "2020" || r.FileSize != int64(len(r.FileName)) {
			t.Errorf("row = %+v", r)
		}
	}
	if diff := cmp.Diff([]string{"41"}, n.ids); diff != "" {
		t.Errorf("notified ids mismatch (-want +got):\n%s", diff)
	}
}

func TestCommitWithoutPhotosSkipsPhotoStage(t *testing.T) {
	recs, blobs, rows := &fakeRecords{}, &fakeBlobs{}, &fakePhotoRows{}
	res, err := New(recs, blobs, rows).Commit(context.Background(), "w1", snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if res.SubmissionID != "41" || len(res.Paths) != 0 || len(rows.rows) != 0 {
		t.Fatalf("unexpected result %+v rows=%d", res, len(rows.rows))
	}
}

func TestRecordFailureStopsPipeline(t *testing.T) {
	recs := &fakeRecords{err: errors.New("connection refused")}
	blobs, rows, n := &fakeBlobs{}, &fakePhotoRows{}, &fakeNotifier{}
	p := New(recs, blobs, rows, WithNotifier(n))

	snap := snapshot("a.jpg")
	_, err := p.Commit(context.Background(), "w1", snap)
	p.Wait()

	if !errors.Is(err, ErrRecordCreationFailed) {
		t.Fatalf("err = %v, want ErrRecordCreationFailed", err)
	}
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageRecord {
		t.Fatalf("err = %#v, want record StageError", err)
	}
	if len(blobs.paths()) != 0 || len(rows.rows) != 0 || len(n.ids) != 0 {
		t.Fatal("later stages ran after record failure")
	}
	if len(snap.Photos) != 1 || snap.Photos[0].Caption != "foto 1" {
		t.Fatal("snapshot modified")
	}
	if p.InProgress("w1") {
		t.Fatal("guard not released after failure")
	}
}

func TestOnePhotoFailureLeavesOthersStored(t *testing.T) {
	recs, rows, n := &fakeRecords{}, &fakePhotoRows{}, &fakeNotifier{}
	blobs := &fakeBlobs{failOn: "_2.jpg"}
	p := New(recs, blobs, rows, WithNotifier(n))

	_, err := p.Commit(context.Background(), "w1", snapshot("a.jpg", "b.jpg", "c.jpg"))
	p.Wait()

	if !errors.Is(err, ErrPhotoPersistenceFailed) {
		t.Fatalf("err = %v, want ErrPhotoPersistenceFailed", err)
	}
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StagePhotos || se.SubmissionID != "41" {
		t.Fatalf("err = %#v", err)
	}
	if diff := cmp.Diff([]string{"41/41_1.jpg", "41/41_3.jpg"}, blobs.paths()); diff != "" {
		t.Errorf("remaining blobs mismatch (-want +got):\n%s", diff)
	}
	if len(rows.rows) != 2 || len(recs.deleted) != 0 {
		t.Errorf("rows=%d deleted=%v, want 2 rows and no rollback", len(rows.rows), recs.deleted)
	}
	if len(n.ids) != 0 {
		t.Error("notification sent after failed photo stage")
	}
}

func TestCompensationRemovesPartialWrites(t *testing.T) {
	recs, rows := &fakeRecords{}, &fakePhotoRows{}
	blobs := &fakeBlobs{failOn: "_2.jpg"}
	p := New(recs, blobs, rows, WithCompensation())

	_, err := p.Commit(context.Background(), "w1", snapshot("a.jpg", "b.jpg", "c.jpg"))
	if !errors.Is(err, ErrPhotoPersistenceFailed) {
		t.Fatalf("err = %v", err)
	}
	if got := blobs.paths(); len(got) != 0 {
		t.Errorf("blobs left after compensation: %v", got)
	}
	if diff := cmp.Diff([]string{"41"}, rows.cleared); diff != "" {
		t.Errorf("cleared rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"41"}, recs.deleted); diff != "" {
		t.Errorf("deleted records mismatch (-want +got):\n%s", diff)
	}
}

func TestNotificationFailureIsNotFatal(t *testing.T) {
	n := &fakeNotifier{err: errors.New("status 500")}
	p := New(&fakeRecords{}, &fakeBlobs{}, &fakePhotoRows{}, WithNotifier(n))

	res, err := p.Commit(context.Background(), "w1", snapshot("a.jpg"))
	p.Wait()
	if err != nil || res.SubmissionID != "41" {
		t.Fatalf("Commit = %+v, %v; want success", res, err)
	}
	if len(n.ids) != 1 {
		t.Fatalf("notifier called %d times", len(n.ids))
	}
}

func TestNotificationOutlivesCanceledContext(t *testing.T) {
	n := &fakeNotifier{}
	p := New(&fakeRecords{}, &fakeBlobs{}, &fakePhotoRows{}, WithNotifier(n))

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := p.Commit(ctx, "w1", snapshot()); err != nil {
		t.Fatal(err)
	}
	cancel()
	p.Wait()
	if len(n.ids) != 1 {
		t.Fatal("notification dropped")
	}
}

func TestConcurrentCommitIsRejected(t *testing.T) {
	recs := &fakeRecords{block: make(chan struct{})}
	p := New(recs, &fakeBlobs{}, &fakePhotoRows{})

	done := make(chan error, 1)
	go func() {
		_, err := p.Commit(context.Background(), "w1", snapshot())
		done <- err
	}()
	for !p.InProgress("w1") {
		time.Sleep(time.Millisecond)
	}

	if _, err := p.Commit(context.Background(), "w1", snapshot()); !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("second run err = %v, want ErrAlreadyInProgress", err)
	}
	close(recs.block)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := p.Commit(context.Background(), "w1", snapshot()); err != nil {
		t.Fatalf("run after settle: %v", err)
	}
}

func TestPhotoPath(t *testing.T) {
	cases := []struct {
		name string
		n    int
		want string
	}{
		{"praia.jpg", 1, "7/7_1.jpg"},
		{"festa.final.PNG", 3, "7/7_3.PNG"},
		{"semextensao", 2, "7/7_2.semextensao"},
	}
	for _, tc := range cases {
		if got := PhotoPath("7", tc.n, tc.name); got != tc.want {
			t.Errorf("PhotoPath(%q, %d) = %q, want %q", tc.name, tc.n, got, tc.want)
		}
	}
}

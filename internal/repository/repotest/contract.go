// Package repotest checks a repository.Stores implementation against the
// behavior the services rely on.
package repotest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
	"github.com/parisxmas/OxiDB/OxiStory/internal/repository"
)

func submission(names, created string, status models.Status) *models.Submission {
	return &models.Submission{
		Answers:   map[string]string{"nomes": names, "telefone": "11988887777", "pets": "Rex"},
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// Run exercises every store in s. The stores must start empty.
func Run(t *testing.T, s *repository.Stores) {
	t.Run("Submissions", func(t *testing.T) { submissions(t, s.Submissions) })
	t.Run("Photos", func(t *testing.T) { photos(t, s.Photos) })
	t.Run("Blobs", func(t *testing.T) { blobs(t, s.Blobs) })
	t.Run("Admins", func(t *testing.T) { admins(t, s.Admins) })
}

func submissions(t *testing.T, store repository.SubmissionStore) {
	ctx := context.Background()

	first, err := store.Create(ctx, submission("Ana e Bia", "2025-01-01T10:00:00Z", models.StatusNew))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := store.Create(ctx, submission("Caio e Davi", "2025-02-01T10:00:00Z", models.StatusDone))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first == "" || first == second {
		t.Fatalf("ids %q and %q", first, second)
	}

	got, err := store.Get(ctx, first)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := submission("Ana e Bia", "2025-01-01T10:00:00Z", models.StatusNew)
	want.ID = first
	if diff := cmp.Diff(want.Columns(), got.Columns()); diff != "" || got.ID != first {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}

	if _, err := store.Get(ctx, "999999"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Get unknown: err = %v, want ErrNotFound", err)
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, sub := range all {
		ids = append(ids, sub.ID)
	}
	if diff := cmp.Diff([]string{second, first}, ids); diff != "" {
		t.Errorf("List order mismatch (-want +got):\n%s", diff)
	}

	done, err := store.List(ctx, models.StatusDone)
	if err != nil || len(done) != 1 || done[0].ID != second {
		t.Errorf("List(done) = %v, %v", done, err)
	}

	if err := store.Update(ctx, first, map[string]string{"status": "em-andamento", "observacoes": "ligar"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = store.Get(ctx, first)
	if got.Status != models.StatusInProgress || got.Notes != "ligar" || got.Answer("pets") != "Rex" {
		t.Errorf("after Update: %+v", got)
	}
	if err := store.Update(ctx, "999999", map[string]string{"status": "novo"}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Update unknown: err = %v, want ErrNotFound", err)
	}

	n, err := store.Count(ctx, models.StatusInProgress)
	if err != nil || n != 1 {
		t.Errorf("Count(in-progress) = %d, %v", n, err)
	}
	n, _ = store.Count(ctx, "")
	if n != 2 {
		t.Errorf("Count(all) = %d, want 2", n)
	}

	if err := store.Delete(ctx, second); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, second); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Get after Delete: err = %v", err)
	}
}

func photos(t *testing.T, store repository.PhotoStore) {
	ctx := context.Background()
	for _, p := range []models.Photo{
		{SubmissionID: "7", FilePath: "7/7_2.png", FileName: "b.png", Caption: "Festa", Year: "2021", FileSize: 20, MimeType: "image/png", CreatedAt: "2025-01-01T10:00:00Z"},
		{SubmissionID: "7", FilePath: "7/7_1.jpg", FileName: "a.jpg", Caption: "Praia", Year: "2019", FileSize: 10, MimeType: "image/jpeg", CreatedAt: "2025-01-01T10:00:00Z"},
		{SubmissionID: "8", FilePath: "8/8_1.jpg", FileName: "c.jpg", FileSize: 5, MimeType: "image/jpeg", CreatedAt: "2025-01-01T10:00:00Z"},
	} {
		if _, err := store.Create(ctx, &p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := store.ListBySubmission(ctx, "7")
	if err != nil {
		t.Fatalf("ListBySubmission: %v", err)
	}
	want := []models.Photo{
		{SubmissionID: "7", FilePath: "7/7_1.jpg", FileName: "a.jpg", Caption: "Praia", Year: "2019", FileSize: 10, MimeType: "image/jpeg", CreatedAt: "2025-01-01T10:00:00Z"},
		{SubmissionID: "7", FilePath: "7/7_2.png", FileName: "b.png", Caption: "Festa", Year: "2021", FileSize: 20, MimeType: "image/png", CreatedAt: "2025-01-01T10:00:00Z"},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(models.Photo{}, "ID")); diff != "" {
		t.Errorf("ListBySubmission mismatch (-want +got):\n%s", diff)
	}

	if err := store.DeleteBySubmission(ctx, "7"); err != nil {
		t.Fatalf("DeleteBySubmission: %v", err)
	}
	if got, _ := store.ListBySubmission(ctx, "7"); len(got) != 0 {
		t.Errorf("rows left: %v", got)
	}
	if got, _ := store.ListBySubmission(ctx, "8"); len(got) != 1 {
		t.Errorf("other submission touched: %v", got)
	}
}

func blobs(t *testing.T, store repository.BlobStore) {
	ctx := context.Background()
	for path, data := range map[string]string{"3/3_1.jpg": "one", "3/3_2.jpg": "two", "30/30_1.jpg": "other"} {
		if err := store.Put(ctx, path, []byte(data), "image/jpeg"); err != nil {
			t.Fatalf("Put %s: %v", path, err)
		}
	}

	data, ct, err := store.Get(ctx, "3/3_2.jpg")
	if err != nil || string(data) != "two" || ct != "image/jpeg" {
		t.Errorf("Get = %q, %q, %v", data, ct, err)
	}
	if _, _, err := store.Get(ctx, "3/3_9.jpg"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Get missing: err = %v, want ErrNotFound", err)
	}

	paths, err := store.List(ctx, "3/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]string{"3/3_1.jpg", "3/3_2.jpg"}, paths); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	if err := store.Delete(ctx, "3/3_1.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "3/3_1.jpg"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second Delete: err = %v, want ErrNotFound", err)
	}
}

func admins(t *testing.T, store repository.AdminStore) {
	ctx := context.Background()
	a, err := store.FindByEmail(ctx, "admin@example.com")
	if err != nil || a != nil {
		t.Fatalf("FindByEmail on empty store = %v, %v", a, err)
	}
	id, err := store.Create(ctx, &models.Admin{Email: "admin@example.com", PasswordHash: "hash", CreatedAt: "2025-01-01T00:00:00Z"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	a, err = store.FindByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	want := &models.Admin{ID: id, Email: "admin@example.com", PasswordHash: "hash", CreatedAt: "2025-01-01T00:00:00Z"}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("FindByEmail mismatch (-want +got):\n%s", diff)
	}
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
	"github.com/parisxmas/OxiDB/OxiStory/internal/repository/repotest"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStores(t *testing.T) {
	repotest.Run(t, openMemory(t).Stores())
}

func TestUpdateRejectsUnknownColumn(t *testing.T) {
	s := openMemory(t).Stores().Submissions
	ctx := context.Background()
	id, err := s.Create(ctx, &models.Submission{Status: models.StatusNew, CreatedAt: "2025-01-01T00:00:00Z"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, id, map[string]string{"id = 1; --": "x"}); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "story.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	id, err := db.Stores().Submissions.Create(ctx, &models.Submission{
		Answers:   map[string]string{"nomes": "Ana e Bia"},
		Status:    models.StatusNew,
		CreatedAt: "2025-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	sub, err := db.Stores().Submissions.Get(ctx, id)
	if err != nil || sub.Answer("nomes") != "Ana e Bia" {
		t.Fatalf("Get after reopen = %+v, %v", sub, err)
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
)

func sample() []*models.Submission {
	return []*models.Submission{{
		ID:        "7",
		Answers:   map[string]string{"nomes": "Ana e Bia", "telefone": "11999990000"},
		Status:    models.StatusInProgress,
		CreatedAt: "2025-03-01T10:00:00Z",
		Photos:    []models.Photo{{FilePath: "7/7_1.jpg", FileName: "praia.jpg"}},
	}}
}

func TestFilterFlags(t *testing.T) {
	f, err := (&filterFlags{status: "novo", from: "2025-01-02"}).filter()
	if err != nil {
		t.Fatal(err)
	}
	if f.Status != models.StatusNew || !f.From.Equal(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)) || !f.To.IsZero() {
		t.Errorf("filter = %+v", f)
	}
	if _, err := (&filterFlags{status: "arquivado"}).filter(); err == nil {
		t.Error("expected unknown status error")
	}
	if _, err := (&filterFlags{status: models.StatusAny, to: "ontem"}).filter(); err == nil {
		t.Error("expected date error")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := export(&buf, "json", sample()); err != nil {
		t.Fatal(err)
	}
	var docs []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &docs); err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0]["nomes"] != "Ana e Bia" || docs[0]["status"] != "em-andamento" {
		t.Errorf("docs = %v", docs)
	}

	buf.Reset()
	export(&buf, "json", nil)
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty export = %q", buf.String())
	}
}

func TestExportYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := export(&buf, "yaml", sample()); err != nil {
		t.Fatal(err)
	}
	var docs []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &docs); err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0]["telefone"] != "11999990000" {
		t.Errorf("docs = %v", docs)
	}
	photos, _ := docs[0]["submission_photos"].([]any)
	if len(photos) != 1 {
		t.Errorf("photos = %v", docs[0]["submission_photos"])
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTable(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Ana e Bia", "em-andamento", "1 submission(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

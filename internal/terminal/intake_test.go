package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
	"github.com/parisxmas/OxiDB/OxiStory/internal/pipeline"
	"github.com/parisxmas/OxiDB/OxiStory/internal/repository"
	"github.com/parisxmas/OxiDB/OxiStory/internal/repository/sqlite"
	"github.com/parisxmas/OxiDB/OxiStory/internal/service"
)

// stubDriver replays scripted answers. Input and TextArea share one queue.
type stubDriver struct {
	texts    []string
	selects  []int
	confirms []bool
	infos    []string
}

func (s *stubDriver) text() (string, error) {
	if len(s.texts) == 0 {
		return "", errors.New("no text scripted")
	}
	v := s.texts[0]
	s.texts = s.texts[1:]
	return v, nil
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) { return s.text() }

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	return s.text()
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if len(s.confirms) == 0 {
		return false, errors.New("no confirm scripted")
	}
	v := s.confirms[0]
	s.confirms = s.confirms[1:]
	return v, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if len(s.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	v := s.selects[0]
	s.selects = s.selects[1:]
	return v, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func (s *stubDriver) saw(prefix string) bool {
	for _, m := range s.infos {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

func setup(t *testing.T) (*repository.Stores, *service.IntakeService, *pipeline.Pipeline) {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	stores := db.Stores()
	p := pipeline.New(stores.Submissions, stores.Blobs, stores.Photos)
	svc := service.NewIntakeService(p, time.Hour)
	t.Cleanup(svc.Close)
	return stores, svc, p
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWizardRun(t *testing.T) {
	stores, svc, p := setup(t)
	notes := writeFile(t, "notas.txt", "apenas texto")
	photo := writeFile(t, "praia.jpg", "jpeg-bytes")

	texts := []string{"", "Ana e Bia", BackCommand, "Ana e Bia"}
	for i := 2; i <= 18; i++ {
		texts = append(texts, fmt.Sprintf("resposta %d", i))
	}
	texts = append(texts, notes, photo, "Na praia", "2019")

	d := &stubDriver{
		texts:    texts,
		selects:  []int{optContinue, optAdd, optAdd, optContinue},
		confirms: []bool{true},
	}
	res, err := NewWizard(d, svc).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v (infos %q)", err, d.infos)
	}
	p.Wait()

	for _, want := range []string{"Campo obrigatório:", "Fotos obrigatórias:", "Formato inválido:", "Formulário enviado!"} {
		if !d.saw(want) {
			t.Errorf("missing notice %q in %q", want, d.infos)
		}
	}
	if len(res.Paths) != 1 || res.Paths[0] != res.SubmissionID+"/"+res.SubmissionID+"_1.jpg" {
		t.Errorf("paths = %v", res.Paths)
	}

	ctx := context.Background()
	sub, err := stores.Submissions.Get(ctx, res.SubmissionID)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Answer("nomes") != "Ana e Bia" || sub.Answer("telefone") != "resposta 18" || sub.Status != models.StatusNew {
		t.Errorf("stored submission = %+v", sub)
	}
	photos, err := stores.Photos.ListBySubmission(ctx, res.SubmissionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(photos) != 1 || photos[0].Caption != "Na praia" || photos[0].Year != "2019" || photos[0].MimeType != "image/jpeg" {
		t.Errorf("photos = %+v", photos)
	}
	if svc.Len() != 0 {
		t.Errorf("sessions left open: %d", svc.Len())
	}
}

func TestWizardAbortAbandonsSession(t *testing.T) {
	_, svc, _ := setup(t)
	d := &stubDriver{texts: []string{"Ana e Bia"}}
	if _, err := NewWizard(d, svc).Run(context.Background()); err == nil {
		t.Fatal("expected error once the script runs out")
	}
	if svc.Len() != 0 {
		t.Errorf("sessions left open: %d", svc.Len())
	}
}

func TestWizardUnreadableFile(t *testing.T) {
	_, svc, _ := setup(t)
	w := NewWizard(&stubDriver{texts: []string{"/nao/existe.jpg"}}, svc)
	id, _ := svc.Start()
	v, err := w.addPhoto(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Photos) != 0 || !w.driver.(*stubDriver).saw("Não foi possível ler") {
		t.Errorf("view = %+v infos = %q", v, w.driver.(*stubDriver).infos)
	}
}

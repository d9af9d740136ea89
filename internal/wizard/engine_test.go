package wizard

import (
	"errors"
	"testing"

	"github.com/parisxmas/OxiDB/OxiStory/internal/catalog"
)

func fillAnswers(t *testing.T, e *Engine) {
	t.Helper()
	for _, q := range catalog.Questions() {
		if !q.Required {
			continue
		}
		if err := e.Answers().Set(q.FieldKey, "resposta "+q.FieldKey); err != nil {
			t.Fatalf("set %s: %v", q.FieldKey, err)
		}
	}
}

func addPhoto(t *testing.T, p *Photos, caption, year string) int {
	t.Helper()
	i, err := p.Add(File{Name: "foto.jpg", MimeType: "image/jpeg", Data: []byte("jpg")})
	if err != nil {
		t.Fatalf("add photo: %v", err)
	}
	p.Update(i, AttrCaption, caption)
	p.Update(i, AttrYear, year)
	return i
}

func TestPhaseMapping(t *testing.T) {
	cases := map[int]Phase{1: PhaseAnswer, 18: PhaseAnswer, 19: PhasePhotos, 20: PhaseReview}
	for step, want := range cases {
		if got := PhaseOf(step); got != want {
			t.Errorf("PhaseOf(%d) = %s, want %s", step, got, want)
		}
	}
}

func TestCanProceedAnswerSteps(t *testing.T) {
	for step := 1; step <= catalog.Len(); step++ {
		q, _ := catalog.QuestionAt(step)
		for _, value := range []string{"", "   \n\t", "ok"} {
			e := NewEngine()
			e.step = step
			if err := e.Answers().Set(q.FieldKey, value); err != nil {
				t.Fatalf("set: %v", err)
			}
			blank := value != "ok"
			want := !(q.Required && blank)
			if got := e.CanProceed(); got != want {
				t.Errorf("step %d (%s) value %q: CanProceed = %v, want %v", step, q.FieldKey, value, got, want)
			}
		}
	}
}

func TestNextBlockedOnRequiredField(t *testing.T) {
	e := NewEngine()
	err := e.Next()

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Reason != ReasonMissingRequiredField || verr.Field != "nomes" {
		t.Fatalf("unexpected validation error %+v", verr)
	}
	if e.Step() != 1 {
		t.Fatalf("step moved to %d", e.Step())
	}
}

func TestOptionalQuestionAdvancesWhenEmpty(t *testing.T) {
	e := NewEngine()
	e.step = 17
	if err := e.Next(); err != nil {
		t.Fatalf("optional step blocked: %v", err)
	}
	if e.Step() != 18 {
		t.Fatalf("expected step 18, got %d", e.Step())
	}
}

func TestPhotoStepGate(t *testing.T) {
	e := NewEngine()
	e.step = PhotoStep

	err := e.Next()
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonIncompletePhotoMetadata {
		t.Fatalf("empty collection should block with photo reason, got %v", err)
	}

	addPhoto(t, e.Photos(), "Nosso primeiro encontro", "")
	err = e.Next()
	if !errors.As(err, &verr) || verr.Reason != ReasonIncompletePhotoMetadata {
		t.Fatalf("missing year should block, got %v", err)
	}
	if len(verr.Photos) != 1 || verr.Photos[0] != 0 {
		t.Fatalf("expected photo 0 flagged, got %v", verr.Photos)
	}
	if e.Step() != PhotoStep {
		t.Fatalf("step moved to %d", e.Step())
	}

	e.Photos().Update(0, AttrYear, "  ")
	if e.CanProceed() {
		t.Fatal("whitespace year must not satisfy the gate")
	}

	e.Photos().Update(0, AttrYear, "2019")
	if err := e.Next(); err != nil {
		t.Fatalf("complete photo blocked: %v", err)
	}
	if e.Phase() != PhaseReview {
		t.Fatalf("expected review, got %s", e.Phase())
	}
}

func TestPhotoAndAnswerMessagesDiffer(t *testing.T) {
	answer := NewEngine()
	photo := NewEngine()
	photo.step = PhotoStep
	addPhoto(t, photo.Photos(), "", "2020")

	a := answer.Check().(*ValidationError)
	p := photo.Check().(*ValidationError)
	if a.Message == p.Message {
		t.Fatalf("answer and photo phases share message %q", a.Message)
	}
}

func TestNextClampsAndPreviousFloors(t *testing.T) {
	e := NewEngine()
	e.Previous()
	if e.Step() != 1 {
		t.Fatalf("previous went below 1: %d", e.Step())
	}

	e.step = TotalSteps
	if err := e.Next(); err != nil {
		t.Fatalf("review always proceeds: %v", err)
	}
	if e.Step() != TotalSteps {
		t.Fatalf("next went past total: %d", e.Step())
	}
	e.Previous()
	if e.Step() != PhotoStep {
		t.Fatalf("expected photo step, got %d", e.Step())
	}
}

func TestFullWalkThrough(t *testing.T) {
	e := NewEngine()
	fillAnswers(t, e)
	if err := e.Answers().Set(catalog.ContactField, "+55 11 99999-0000"); err != nil {
		t.Fatal(err)
	}
	addPhoto(t, e.Photos(), "Praia", "2018")
	addPhoto(t, e.Photos(), "Casamento", "2021")

	for step := 1; step < TotalSteps; step++ {
		if !e.CanProceed() {
			t.Fatalf("step %d blocked: %v", step, e.Check())
		}
		if err := e.Next(); err != nil {
			t.Fatalf("next at %d: %v", step, err)
		}
	}
	if e.Step() != TotalSteps {
		t.Fatalf("expected review step, got %d", e.Step())
	}
	if err := e.Ready(); err != nil {
		t.Fatalf("ready: %v", err)
	}

	snap := e.Snapshot()
	if len(snap.Photos) != 2 || snap.Answers["nomes"] == "" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestReadyReportsFirstGap(t *testing.T) {
	e := NewEngine()
	fillAnswers(t, e)
	e.Answers().Set("pets", "")

	var verr *ValidationError
	if err := e.Ready(); !errors.As(err, &verr) || verr.Field != "pets" {
		t.Fatalf("expected pets gap, got %v", err)
	}
}

func TestViewCarriesQuestion(t *testing.T) {
	e := NewEngine()
	e.Answers().Set("nomes", "Ana e Bia")
	v := e.View()
	if v.Question == nil || v.Question.FieldKey != "nomes" || v.Answer != "Ana e Bia" {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.Progress != 5 {
		t.Fatalf("progress = %v, want 5", v.Progress)
	}

	e.step = PhotoStep
	if v := e.View(); v.Question != nil || v.Phase != PhasePhotos {
		t.Fatalf("photo view should not carry a question: %+v", v)
	}
}

func TestAnswersRejectUnknownField(t *testing.T) {
	a := NewAnswers()
	if err := a.Set("status", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if got := a.Get("pets"); got != "" {
		t.Fatalf("missing key should read empty, got %q", got)
	}
	a.Set("pets", "Luna, gata")
	a.Set("pets", "Luna e Sol")
	if got := a.Map()["pets"]; got != "Luna e Sol" {
		t.Fatalf("overwrite lost: %q", got)
	}
}

// Package wizard implements the gated intake flow: the answer store, the
// pending photo collection and the step engine that moves between them.
package wizard

import (
	"strings"

	"github.com/parisxmas/OxiDB/OxiStory/internal/catalog"
)

const (
	// PhotoStep is where photos are attached, right after the last question.
	PhotoStep = 19
	// TotalSteps is the review step, the last one.
	TotalSteps = 20
)

// Phase is what the current step asks the user to do.
type Phase string

const (
	PhaseAnswer Phase = "answer-question"
	PhasePhotos Phase = "manage-photos"
	PhaseReview Phase = "review"
)

// PhaseOf maps a step to its phase.
func PhaseOf(step int) Phase {
	switch {
	case step < PhotoStep:
		return PhaseAnswer
	case step == PhotoStep:
		return PhasePhotos
	default:
		return PhaseReview
	}
}

// View is what the host UI renders for the current step.
type View struct {
	Step       int               `json:"step"`
	TotalSteps int               `json:"totalSteps"`
	Progress   float64           `json:"progress"`
	Phase      Phase             `json:"phase"`
	Question   *catalog.Question `json:"question,omitempty"`
	Answer     string            `json:"answer,omitempty"`
	Photos     []PhotoView       `json:"photos,omitempty"`
	CanProceed bool              `json:"canProceed"`
}

// Submission is the snapshot the commit pipeline persists.
type Submission struct {
	Answers map[string]string
	Photos  []PendingPhoto
}

// Engine drives the current step over [1, TotalSteps]. It is not safe for
// concurrent use.
type Engine struct {
	step    int
	answers *Answers
	photos  *Photos
}

func NewEngine() *Engine {
	return &Engine{step: 1, answers: NewAnswers(), photos: NewPhotos()}
}

func (e *Engine) Answers() *Answers { return e.answers }
func (e *Engine) Photos() *Photos   { return e.photos }
func (e *Engine) Step() int         { return e.step }
func (e *Engine) Phase() Phase      { return PhaseOf(e.step) }

// Question returns the question of the current step, if it asks one.
func (e *Engine) Question() (catalog.Question, bool) {
	return catalog.QuestionAt(e.step)
}

// Check returns nil when the current step may be left, or the
// *ValidationError explaining why not.
func (e *Engine) Check() error {
	switch e.Phase() {
	case PhaseAnswer:
		q, _ := e.Question()
		if q.Required && strings.TrimSpace(e.answers.Get(q.FieldKey)) == "" {
			return &ValidationError{
				Step:    e.step,
				Reason:  ReasonMissingRequiredField,
				Field:   q.FieldKey,
				Title:   "Campo obrigatório",
				Message: "Por favor, preencha este campo antes de continuar.",
			}
		}
	case PhasePhotos:
		if e.photos.Len() == 0 {
			return &ValidationError{
				Step:    e.step,
				Reason:  ReasonIncompletePhotoMetadata,
				Title:   "Fotos obrigatórias",
				Message: "Por favor, adicione pelo menos uma foto antes de continuar.",
			}
		}
		if missing := e.photos.Incomplete(); len(missing) > 0 {
			return &ValidationError{
				Step:    e.step,
				Reason:  ReasonIncompletePhotoMetadata,
				Photos:  missing,
				Title:   "Dados das fotos obrigatórios",
				Message: "Por favor, preencha a descrição e ano de todas as fotos antes de continuar.",
			}
		}
	}
	return nil
}

// CanProceed reports whether Next would advance.
func (e *Engine) CanProceed() bool {
	return e.Check() == nil
}

// Next advances one step, clamped at TotalSteps. When the current step is
// not satisfied it returns the *ValidationError and stays put.
func (e *Engine) Next() error {
	if err := e.Check(); err != nil {
		return err
	}
	if e.step < TotalSteps {
		e.step++
	}
	return nil
}

// Previous goes back one step, floored at 1. It never validates.
func (e *Engine) Previous() {
	if e.step > 1 {
		e.step--
	}
}

// View describes the current step.
func (e *Engine) View() View {
	v := View{
		Step:       e.step,
		TotalSteps: TotalSteps,
		Progress:   float64(e.step) / float64(TotalSteps) * 100,
		Phase:      e.Phase(),
		CanProceed: e.CanProceed(),
	}
	switch v.Phase {
	case PhaseAnswer:
		q, _ := e.Question()
		v.Question = &q
		v.Answer = e.answers.Get(q.FieldKey)
	case PhasePhotos, PhaseReview:
		v.Photos = e.photos.Views()
	}
	return v
}

// Snapshot copies answers and photos for the commit pipeline.
func (e *Engine) Snapshot() Submission {
	return Submission{Answers: e.answers.Map(), Photos: e.photos.Pending()}
}

// Ready reports whether every gated step is satisfied, which is what the
// review step requires before submitting.
func (e *Engine) Ready() error {
	probe := &Engine{answers: e.answers, photos: e.photos}
	for step := 1; step <= PhotoStep; step++ {
		probe.step = step
		if err := probe.Check(); err != nil {
			return err
		}
	}
	return nil
}

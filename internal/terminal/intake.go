// Package terminal runs the intake wizard on an interactive terminal.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parisxmas/OxiDB/OxiStory/internal/catalog"
	"github.com/parisxmas/OxiDB/OxiStory/internal/pipeline"
	"github.com/parisxmas/OxiDB/OxiStory/internal/service"
	"github.com/parisxmas/OxiDB/OxiStory/internal/wizard"
)

// BackCommand typed as an answer returns to the previous question.
const BackCommand = ":voltar"

const (
	optAdd = iota
	optEdit
	optRemove
	optContinue
	optBack
)

var photoMenu = []string{
	"Adicionar foto",
	"Editar descrição e ano",
	"Remover foto",
	"Continuar",
	"Voltar",
}

// Wizard walks one intake session from the first question to the commit.
type Wizard struct {
	driver   PromptDriver
	svc      *service.IntakeService
	readFile func(string) ([]byte, error)
}

func NewWizard(driver PromptDriver, svc *service.IntakeService) *Wizard {
	return &Wizard{driver: driver, svc: svc, readFile: os.ReadFile}
}

// Run prompts until the submission is committed. An aborted or failed run
// abandons its session.
func (w *Wizard) Run(ctx context.Context) (res *pipeline.Success, err error) {
	id, first := w.svc.Start()
	defer func() {
		if err != nil {
			w.svc.Abandon(id)
		}
	}()

	v := &first
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch v.Phase {
		case wizard.PhaseAnswer:
			v, err = w.answer(ctx, id, v)
		case wizard.PhasePhotos:
			v, err = w.photos(ctx, id, v)
		default:
			res, v, err = w.review(ctx, id)
			if res != nil {
				return res, nil
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

func (w *Wizard) notice(ctx context.Context, err error) (bool, error) {
	var ve *wizard.ValidationError
	switch {
	case errors.As(err, &ve):
		return true, w.driver.Info(ctx, ve.Title+": "+ve.Message)
	case errors.Is(err, wizard.ErrCapacityExceeded):
		return true, w.driver.Info(ctx, fmt.Sprintf("Limite atingido: Você pode enviar no máximo %d fotos.", wizard.MaxPhotos))
	case errors.Is(err, wizard.ErrUnsupportedType):
		return true, w.driver.Info(ctx, "Formato inválido: Por favor, envie apenas imagens.")
	}
	return false, nil
}

// settle turns user-facing failures into a notice and a fresh view.
func (w *Wizard) settle(ctx context.Context, id string, v *wizard.View, err error) (*wizard.View, error) {
	if err == nil {
		return v, nil
	}
	shown, ierr := w.notice(ctx, err)
	if ierr != nil {
		return nil, ierr
	}
	if !shown {
		return nil, err
	}
	return w.svc.View(id)
}

func (w *Wizard) answer(ctx context.Context, id string, v *wizard.View) (*wizard.View, error) {
	q := v.Question
	msg := fmt.Sprintf("[%d/%d] %s", v.Step, v.TotalSteps, q.Prompt)
	help := strings.TrimSpace(strings.Join([]string{q.Subtitle, q.Observation, "Digite " + BackCommand + " para voltar."}, " "))

	var (
		val string
		err error
	)
	if q.Shape == catalog.ShapeMultiline {
		val, err = w.driver.TextArea(ctx, TextAreaConfig{Message: msg, Default: v.Answer, Help: help})
	} else {
		val, err = w.driver.Input(ctx, InputConfig{Message: msg, Default: v.Answer, Help: help})
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(val) == BackCommand {
		return w.svc.Previous(id)
	}
	if _, err := w.svc.Answer(id, q.FieldKey, val); err != nil {
		return nil, err
	}
	next, err := w.svc.Next(id)
	return w.settle(ctx, id, next, err)
}

func photoLabel(p wizard.PhotoView) string {
	label := fmt.Sprintf("%d. %s", p.Index+1, p.FileName)
	if p.Caption != "" || p.Year != "" {
		label += fmt.Sprintf(" (%s, %s)", p.Caption, p.Year)
	}
	return label
}

func (w *Wizard) photos(ctx context.Context, id string, v *wizard.View) (*wizard.View, error) {
	lines := []string{fmt.Sprintf("[%d/%d] Fotos (%d de %d)", v.Step, v.TotalSteps, len(v.Photos), wizard.MaxPhotos)}
	for _, p := range v.Photos {
		lines = append(lines, "  "+photoLabel(p))
	}
	if err := w.driver.Info(ctx, strings.Join(lines, "\n")); err != nil {
		return nil, err
	}

	choice, err := w.driver.Select(ctx, SelectConfig{Message: "O que deseja fazer?", Options: photoMenu})
	if err != nil {
		return nil, err
	}
	switch choice {
	case optAdd:
		return w.addPhoto(ctx, id)
	case optEdit:
		index, err := w.pickPhoto(ctx, v)
		if err != nil || index < 0 {
			return v, err
		}
		return w.describe(ctx, id, v.Photos[index])
	case optRemove:
		index, err := w.pickPhoto(ctx, v)
		if err != nil || index < 0 {
			return v, err
		}
		nv, err := w.svc.RemovePhoto(id, index)
		return w.settle(ctx, id, nv, err)
	case optContinue:
		nv, err := w.svc.Next(id)
		return w.settle(ctx, id, nv, err)
	case optBack:
		return w.svc.Previous(id)
	}
	return v, nil
}

func (w *Wizard) addPhoto(ctx context.Context, id string) (*wizard.View, error) {
	path, err := w.driver.Input(ctx, InputConfig{Message: "Caminho da foto:"})
	if err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	data, err := w.readFile(path)
	if err != nil {
		if ierr := w.driver.Info(ctx, fmt.Sprintf("Não foi possível ler %s: %v", path, err)); ierr != nil {
			return nil, ierr
		}
		return w.svc.View(id)
	}
	v, err := w.svc.AddPhoto(id, wizard.File{Name: filepath.Base(path), Data: data})
	if err != nil {
		return w.settle(ctx, id, v, err)
	}
	return w.describe(ctx, id, v.Photos[len(v.Photos)-1])
}

func (w *Wizard) pickPhoto(ctx context.Context, v *wizard.View) (int, error) {
	if len(v.Photos) == 0 {
		return -1, w.driver.Info(ctx, "Nenhuma foto adicionada.")
	}
	opts := make([]string, len(v.Photos))
	for i, p := range v.Photos {
		opts[i] = photoLabel(p)
	}
	return w.driver.Select(ctx, SelectConfig{Message: "Qual foto?", Options: opts})
}

func (w *Wizard) describe(ctx context.Context, id string, p wizard.PhotoView) (*wizard.View, error) {
	caption, err := w.driver.Input(ctx, InputConfig{Message: "Descrição da foto " + p.FileName + ":", Default: p.Caption})
	if err != nil {
		return nil, err
	}
	year, err := w.driver.Input(ctx, InputConfig{Message: "Ano da foto:", Default: p.Year})
	if err != nil {
		return nil, err
	}
	if _, err := w.svc.UpdatePhoto(id, p.Index, wizard.AttrCaption, caption); err != nil {
		return nil, err
	}
	return w.svc.UpdatePhoto(id, p.Index, wizard.AttrYear, year)
}

func (w *Wizard) review(ctx context.Context, id string) (*pipeline.Success, *wizard.View, error) {
	answers, err := w.svc.Answers(id)
	if err != nil {
		return nil, nil, err
	}
	v, err := w.svc.View(id)
	if err != nil {
		return nil, nil, err
	}

	var b strings.Builder
	b.WriteString("Revise suas respostas:\n")
	for _, q := range catalog.Questions() {
		if a := strings.TrimSpace(answers[q.FieldKey]); a != "" {
			fmt.Fprintf(&b, "\n%s\n  %s\n", q.Prompt, a)
		}
	}
	fmt.Fprintf(&b, "\nFotos: %d\n", len(v.Photos))
	for _, p := range v.Photos {
		b.WriteString("  " + photoLabel(p) + "\n")
	}
	if err := w.driver.Info(ctx, b.String()); err != nil {
		return nil, nil, err
	}

	ok, err := w.driver.Confirm(ctx, ConfirmConfig{Message: "Enviar sua história?", Default: true})
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		v, err := w.svc.Previous(id)
		return nil, v, err
	}

	res, err := w.svc.Submit(ctx, id)
	var se *pipeline.StageError
	switch {
	case err == nil:
		return res, nil, w.driver.Info(ctx, "Formulário enviado! Sua história foi salva com sucesso!")
	case errors.As(err, &se):
		if ierr := w.driver.Info(ctx, "Erro ao enviar: Houve um problema ao enviar seus dados. Tente novamente."); ierr != nil {
			return nil, nil, ierr
		}
		return nil, v, nil
	}
	v, err = w.settle(ctx, id, nil, err)
	return nil, v, err
}

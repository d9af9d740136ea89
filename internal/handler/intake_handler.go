package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/OxiDB/OxiStory/internal/pipeline"
	"github.com/parisxmas/OxiDB/OxiStory/internal/service"
	"github.com/parisxmas/OxiDB/OxiStory/internal/wizard"
)

type IntakeHandler struct {
	svc       *service.IntakeService
	maxUpload int64
}

func NewIntakeHandler(svc *service.IntakeService, maxUpload int64) *IntakeHandler {
	return &IntakeHandler{svc: svc, maxUpload: maxUpload}
}

type sessionResponse struct {
	SessionID string       `json:"sessionId"`
	View      *wizard.View `json:"view"`
}

func (h *IntakeHandler) respond(w http.ResponseWriter, r *http.Request, v *wizard.View, err error) {
	if err != nil {
		writeIntakeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: chi.URLParam(r, "sid"), View: v})
}

func writeIntakeError(w http.ResponseWriter, err error) {
	var ve *wizard.ValidationError
	var se *pipeline.StageError
	switch {
	case errors.As(err, &ve):
		writeUserError(w, http.StatusUnprocessableEntity, string(ve.Reason), ve.Title, ve.Message, ve)
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "intake session not found")
	case errors.Is(err, wizard.ErrCapacityExceeded):
		writeUserError(w, http.StatusConflict, "capacity exceeded",
			"Limite atingido", fmt.Sprintf("Você pode enviar no máximo %d fotos.", wizard.MaxPhotos), nil)
	case errors.Is(err, wizard.ErrUnsupportedType):
		writeUserError(w, http.StatusUnsupportedMediaType, "unsupported type",
			"Formato inválido", "Por favor, envie apenas imagens.", nil)
	case errors.Is(err, wizard.ErrIndexOutOfRange), errors.Is(err, wizard.ErrPreviewNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, wizard.ErrUnknownField), errors.Is(err, wizard.ErrUnknownPhotoAttr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pipeline.ErrAlreadyInProgress):
		writeError(w, http.StatusConflict, "submission already in progress")
	case errors.Is(err, service.ErrNotReady):
		writeUserError(w, http.StatusConflict, "incomplete form",
			"Formulário incompleto", "Por favor, preencha todos os campos obrigatórios.", nil)
	case errors.As(err, &se):
		log.Printf("Warning: submit failed at %s stage (submission %q): %v", se.Stage, se.SubmissionID, se.Err)
		writeUserError(w, http.StatusBadGateway, se.Kind.Error(),
			"Erro ao enviar", "Houve um problema ao enviar seus dados. Tente novamente.", nil)
	default:
		log.Printf("Warning: intake: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *IntakeHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, v := h.svc.Start()
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: id, View: &v})
}

func (h *IntakeHandler) View(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.View(chi.URLParam(r, "sid"))
	h.respond(w, r, v, err)
}

func (h *IntakeHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Abandon(chi.URLParam(r, "sid")); err != nil {
		writeIntakeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *IntakeHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.svc.Answer(chi.URLParam(r, "sid"), chi.URLParam(r, "field"), req.Value)
	h.respond(w, r, v, err)
}

func (h *IntakeHandler) Next(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Next(chi.URLParam(r, "sid"))
	h.respond(w, r, v, err)
}

func (h *IntakeHandler) Previous(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Previous(chi.URLParam(r, "sid"))
	h.respond(w, r, v, err)
}

func (h *IntakeHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	v, err := h.svc.AddPhoto(chi.URLParam(r, "sid"), wizard.File{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	})
	h.respond(w, r, v, err)
}

func photoIndex(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	return i, err == nil
}

func (h *IntakeHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	index, ok := photoIndex(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid photo index")
		return
	}
	var req struct {
		Caption *string `json:"caption"`
		Year    *string `json:"year"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sid := chi.URLParam(r, "sid")
	var (
		v   *wizard.View
		err error
	)
	if req.Caption != nil {
		v, err = h.svc.UpdatePhoto(sid, index, wizard.AttrCaption, *req.Caption)
	}
	if err == nil && req.Year != nil {
		v, err = h.svc.UpdatePhoto(sid, index, wizard.AttrYear, *req.Year)
	}
	if err == nil && v == nil {
		v, err = h.svc.View(sid)
	}
	h.respond(w, r, v, err)
}

func (h *IntakeHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	index, ok := photoIndex(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid photo index")
		return
	}
	v, err := h.svc.RemovePhoto(chi.URLParam(r, "sid"), index)
	h.respond(w, r, v, err)
}

func (h *IntakeHandler) Preview(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Preview(chi.URLParam(r, "sid"), chi.URLParam(r, "pid"))
	if err != nil {
		writeIntakeError(w, err)
		return
	}
	writeUpload(w, f.MimeType, f.Name, f.Data, "no-store")
}

func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	// A client disconnect must not abort a commit halfway.
	res, err := h.svc.Submit(context.WithoutCancel(r.Context()), chi.URLParam(r, "sid"))
	if err != nil {
		writeIntakeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"submissionId": res.SubmissionID,
		"photos":       res.Paths,
		"title":        "Formulário enviado!",
		"message":      "Sua história foi salva com sucesso!",
	})
}

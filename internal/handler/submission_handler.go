package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/OxiDB/OxiStory/internal/auth"
	"github.com/parisxmas/OxiDB/OxiStory/internal/models"
	"github.com/parisxmas/OxiDB/OxiStory/internal/repository"
	"github.com/parisxmas/OxiDB/OxiStory/internal/service"
)

type SubmissionHandler struct {
	svc *service.SubmissionService
}

func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

// ParseFilter reads q, status, from and to (YYYY-MM-DD) query parameters.
func ParseFilter(r *http.Request) (models.SubmissionFilter, error) {
	q := r.URL.Query()
	f := models.SubmissionFilter{
		Search: strings.TrimSpace(q.Get("q")),
		Status: models.Status(q.Get("status")),
	}
	if f.Status != "" && f.Status != models.StatusAny && !f.Status.Valid() {
		return f, fmt.Errorf("unknown status %q", f.Status)
	}
	for _, p := range []struct {
		key string
		dst *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		if v := q.Get(p.key); v != "" {
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				return f, fmt.Errorf("invalid %s date %q", p.key, v)
			}
			*p.dst = d
		}
	}
	return f, nil
}

// operator names the authenticated admin for audit log lines.
func operator(r *http.Request) string {
	if c := auth.GetAdmin(r.Context()); c != nil {
		return c.Email
	}
	return "unknown"
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	subs, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"total":       len(subs),
	})
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	log.Printf("Submission %s deleted by %s", id, operator(r))
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (h *SubmissionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.Status `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if errors.Is(err, service.ErrInvalidStatus) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	log.Printf("Submission %s set to %s by %s", sub.ID, sub.Status, operator(r))
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"observacoes"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.svc.UpdateNotes(r.Context(), chi.URLParam(r, "id"), req.Notes)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var buf bytes.Buffer
	if _, err := h.svc.Archive(r.Context(), id, &buf); err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="submissao_%s_fotos.zip"`, id))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func (h *SubmissionHandler) Organize(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Organize(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, service.ErrOrganizeDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "submission not found")
	case err != nil:
		log.Printf("Warning: organize: %v", err)
		writeError(w, http.StatusBadGateway, "organize request failed")
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *SubmissionHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// File serves a stored photo by its storage path.
func (h *SubmissionHandler) File(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	data, ct, err := h.svc.File(r.Context(), path)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if ct == "" {
		ct = service.DetectContentType(path, "", data)
	}
	writeUpload(w, ct, path, data, "public, max-age=86400")
}

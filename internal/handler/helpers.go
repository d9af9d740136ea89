package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/parisxmas/OxiDB/OxiStory/internal/repository"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// userError is shown to the person filling the form.
type userError struct {
	Error   string `json:"error"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeUserError(w http.ResponseWriter, status int, code, title, msg string, details any) {
	writeJSON(w, status, userError{Error: code, Title: title, Message: msg, Details: details})
}

// writeUpload serves user-uploaded bytes. The sandbox policy keeps active
// content such as SVG scripts from running on the API origin; SVG is also
// sent as an attachment.
func writeUpload(w http.ResponseWriter, contentType, name string, data []byte, cacheControl string) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("Cache-Control", cacheControl)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; sandbox")
	if strings.HasPrefix(contentType, "image/svg") {
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(name)))
	}
	w.Write(data)
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

// writeStoreError maps repository failures of back-office calls.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	log.Printf("Warning: store: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

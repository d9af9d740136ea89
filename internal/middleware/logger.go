package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"
)

const intakePrefix = "/api/v1/intake/"

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// logPath hides intake session ids: whoever holds one can read the answers.
func logPath(path string) string {
	rest, ok := strings.CutPrefix(path, intakePrefix)
	if !ok || rest == "" {
		return path
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return intakePrefix + ":sid" + rest[i:]
	}
	return intakePrefix + ":sid"
}

func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		took := time.Since(start).Round(time.Millisecond)
		path := logPath(r.URL.Path)
		if sw.status >= 500 {
			log.Printf("Warning: %s %s %d %dB %s", r.Method, path, sw.status, sw.bytes, took)
			return
		}
		log.Printf("%s %s %d %dB %s", r.Method, path, sw.status, sw.bytes, took)
	})
}

package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"example.com/bayerfix/internal/repair"
)

// NDJSONWriter streams newline-delimited JSON records over an HTTP response,
// flushing after each record so clients watching a long scan see scores as
// they are produced.
type NDJSONWriter struct {
	mu      sync.Mutex
	enc     *json.Encoder
	flusher http.Flusher
}

func NewNDJSONWriter(w http.ResponseWriter) *NDJSONWriter {
	nw := &NDJSONWriter{enc: json.NewEncoder(w)}
	if f, ok := w.(http.Flusher); ok {
		nw.flusher = f
	}
	return nw
}

// WriteScore emits one patch score record.
func (w *NDJSONWriter) WriteScore(s repair.PatchScore) error {
	return w.WriteObject(s)
}

// WriteError emits a terminal error record. A streaming response has already
// committed its 200 status, so failures travel in-band.
func (w *NDJSONWriter) WriteError(err error) error {
	return w.WriteObject(struct {
		Type  string `json:"type"`
		Error string `json:"error"`
	}{Type: "error", Error: err.Error()})
}

// WriteObject encodes v as a single NDJSON record; Encode supplies the
// trailing newline.
func (w *NDJSONWriter) WriteObject(v any) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(v); err != nil {
		return err
	}
	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}

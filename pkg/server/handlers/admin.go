package handlers

import (
	"encoding/json"
	"net/http"
)

// Health is a liveness probe
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]interface{}{"status": "ok"})
}

// DatabaseStats returns database-wide statistics
func (h *Handlers) DatabaseStats(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, h.db.Stats())
}

// Execute runs one dispatcher command; the body is the command JSON
// and the response is the dispatcher's reply verbatim
func (h *Handlers) Execute(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	reply := h.db.Execute(string(body))
	w.Header().Set("Content-Type", "application/json")
	w.Write(json.RawMessage(reply))
}

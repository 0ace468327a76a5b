package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type indexRequest struct {
	Field string `json:"field"`
}

// CreateIndex creates a scalar index on a dotted field path
func (h *Handlers) CreateIndex(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")

	var req indexRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Field == "" {
		writeError(w, &BadRequestError{Message: "field is required"})
		return
	}

	h.db.Collection(collectionName).CreateIndex(req.Field)
	writeSuccess(w, map[string]interface{}{"field": req.Field})
}

// DropIndex removes the index on a field path
func (h *Handlers) DropIndex(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")
	field := chi.URLParam(r, "field")

	if err := h.db.Collection(collectionName).DropIndex(field); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{"field": field})
}

// ListIndexes returns statistics for every index on a collection
func (h *Handlers) ListIndexes(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")

	writeSuccess(w, map[string]interface{}{
		"indexes": h.db.Collection(collectionName).ListIndexes(),
	})
}

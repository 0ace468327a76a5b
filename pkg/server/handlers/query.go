package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type queryRequest struct {
	Query  json.RawMessage `json:"query"`
	Update json.RawMessage `json:"update"`
	Limit  int             `json:"limit"`
}

type retentionRequest struct {
	OlderThan int64 `json:"olderThan"` // milliseconds since epoch
}

// FindOne returns the first document matching the filter
func (h *Handlers) FindOne(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")

	var req queryRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	q, err := queryString(req.Query)
	if err != nil {
		writeError(w, err)
		return
	}

	result := h.db.Collection(collectionName).FindOne(q)
	if result == "" {
		writeError(w, &NotFoundError{Message: "no matching document"})
		return
	}

	writeSuccess(w, json.RawMessage(result))
}

// Find returns all matching documents up to the requested limit
func (h *Handlers) Find(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")

	var req queryRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	q, err := queryString(req.Query)
	if err != nil {
		writeError(w, err)
		return
	}

	cursor, err := h.db.Collection(collectionName).Find(q, req.Limit)
	if err != nil {
		writeError(w, &BadRequestError{Message: err.Error()})
		return
	}

	results := make([]json.RawMessage, 0)
	for cursor.HasNext() {
		results = append(results, json.RawMessage(cursor.Next()))
	}

	writeSuccess(w, map[string]interface{}{
		"documents": results,
		"count":     len(results),
	})
}

// UpdateByQuery deep-merges a patch into every matching document
func (h *Handlers) UpdateByQuery(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")

	var req queryRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	q, err := queryString(req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	patch, err := queryString(req.Update)
	if err != nil {
		writeError(w, &BadRequestError{Message: "update is required"})
		return
	}

	count, err := h.db.Collection(collectionName).Update(q, patch)
	if err != nil {
		writeError(w, &BadRequestError{Message: err.Error()})
		return
	}

	writeSuccess(w, map[string]interface{}{"updated": count})
}

// DropByQuery removes matching documents up to the requested limit
func (h *Handlers) DropByQuery(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")

	var req queryRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	q, err := queryString(req.Query)
	if err != nil {
		writeError(w, err)
		return
	}

	count, err := h.db.Collection(collectionName).Drop(q, req.Limit)
	if err != nil {
		writeError(w, &BadRequestError{Message: err.Error()})
		return
	}

	writeSuccess(w, map[string]interface{}{"dropped": count})
}

// DropOlderThan erases the prefix of documents older than the cutoff
func (h *Handlers) DropOlderThan(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")

	var req retentionRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	count := h.db.Collection(collectionName).DropOlderThan(req.OlderThan)
	writeSuccess(w, map[string]interface{}{"dropped": count})
}

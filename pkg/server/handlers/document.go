package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AppendDocument appends the request body as a new document
func (h *Handlers) AppendDocument(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")

	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := h.db.Collection(collectionName).AppendJSON(string(body))
	if err != nil {
		writeError(w, &BadRequestError{Message: err.Error()})
		return
	}

	writeSuccess(w, map[string]interface{}{"id": id})
}

// GetDocument returns a document by its _id
func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	result := h.db.Collection(collectionName).FindOneByID(id)
	if result == "" {
		writeError(w, &NotFoundError{Message: "document not found: " + id})
		return
	}

	writeSuccess(w, json.RawMessage(result))
}

// UpdateDocument deep-merges the request body into a document by _id
func (h *Handlers) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.db.Collection(collectionName).UpdateByID(id, string(body)); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{"id": id})
}

// DeleteDocument removes a document by its _id
func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	if err := h.db.Collection(collectionName).DropByID(id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{"id": id})
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robheffo79/SpinoDB/pkg/impex"
)

// ListCollections returns all collection names
func (h *Handlers) ListCollections(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]interface{}{
		"collections": h.db.ListCollections(),
	})
}

// DropCollection deletes a collection and all its documents
func (h *Handlers) DropCollection(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")

	if err := h.db.DropCollection(collectionName); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{"collection": collectionName})
}

// CollectionStats returns statistics for one collection
func (h *Handlers) CollectionStats(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")

	coll, ok := h.db.GetCollection(collectionName)
	if !ok {
		writeError(w, &NotFoundError{Message: "collection not found: " + collectionName})
		return
	}

	writeSuccess(w, coll.Stats())
}

// ExportCollection streams a collection as a JSON array
func (h *Handlers) ExportCollection(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")

	coll, ok := h.db.GetCollection(collectionName)
	if !ok {
		writeError(w, &NotFoundError{Message: "collection not found: " + collectionName})
		return
	}

	pretty := r.URL.Query().Get("pretty") == "true"
	w.Header().Set("Content-Type", "application/json")
	if err := impex.ExportJSON(coll, w, pretty); err != nil {
		writeError(w, &InternalError{Message: err.Error()})
	}
}

// ImportCollection appends a JSON array of documents to a collection
func (h *Handlers) ImportCollection(w http.ResponseWriter, r *http.Request) {
	collectionName := chi.URLParam(r, "collection")

	count, err := impex.ImportJSON(h.db.Collection(collectionName), r.Body)
	if err != nil {
		writeError(w, &BadRequestError{Message: err.Error()})
		return
	}

	writeSuccess(w, map[string]interface{}{"imported": count})
}

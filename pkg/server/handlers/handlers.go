package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/robheffo79/SpinoDB/pkg/database"
	"github.com/robheffo79/SpinoDB/pkg/document"
)

// Handlers holds the database instance and provides HTTP handlers
type Handlers struct {
	db *database.Database
}

// New creates a new Handlers instance
func New(db *database.Database) *Handlers {
	return &Handlers{db: db}
}

// readBody reads the request body, enforcing non-emptiness
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, &BadRequestError{Message: "failed to read request body"}
	}
	defer r.Body.Close()

	if len(body) == 0 {
		return nil, &BadRequestError{Message: "request body is empty"}
	}
	return body, nil
}

// parseJSONBody parses a JSON request body into target
func parseJSONBody(r *http.Request, target interface{}) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return &BadRequestError{Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// queryString renders a query argument that may arrive as an embedded
// object or as a pre-serialized string
func queryString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", &BadRequestError{Message: "query is required"}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	return string(raw), nil
}

// Error types for consistent error handling

type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return e.Message
}

// writeError writes an error response with the appropriate status code
func writeError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	switch err.(type) {
	case *BadRequestError:
		statusCode = http.StatusBadRequest
	case *NotFoundError:
		statusCode = http.StatusNotFound
	}

	if errors.Is(err, database.ErrDocumentNotFound) ||
		errors.Is(err, database.ErrCollectionNotFound) ||
		errors.Is(err, database.ErrIndexNotFound) {
		statusCode = http.StatusNotFound
	}
	if errors.Is(err, document.ErrMergeTypeMismatch) {
		statusCode = http.StatusConflict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	})
}

// writeSuccess writes a success envelope around data
func writeSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/robheffo79/SpinoDB/pkg/database"
)

func testRouter(t *testing.T) (*chi.Mux, *database.Database) {
	t.Helper()
	db := database.New()
	h := New(db)

	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Post("/execute", h.Execute)
	r.Route("/collections", func(r chi.Router) {
		r.Get("/", h.ListCollections)
		r.Route("/{collection}", func(r chi.Router) {
			r.Delete("/", h.DropCollection)
			r.Get("/stats", h.CollectionStats)
			r.Post("/documents", h.AppendDocument)
			r.Get("/documents/{id}", h.GetDocument)
			r.Put("/documents/{id}", h.UpdateDocument)
			r.Delete("/documents/{id}", h.DeleteDocument)
			r.Post("/query/findone", h.FindOne)
			r.Post("/query/find", h.Find)
			r.Post("/query/update", h.UpdateByQuery)
			r.Post("/query/drop", h.DropByQuery)
			r.Post("/retention", h.DropOlderThan)
			r.Get("/indexes", h.ListIndexes)
			r.Post("/indexes", h.CreateIndex)
			r.Delete("/indexes/{field}", h.DropIndex)
		})
	})
	return r, db
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Response is not an envelope: %s", rec.Body.String())
	}
	return env
}

func TestAppendAndGetDocument(t *testing.T) {
	router, _ := testRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/collections/users/documents", `{"name":"sam","age":41}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Append returned %d: %s", rec.Code, rec.Body.String())
	}

	var appended struct {
		ID string `json:"id"`
	}
	env := decodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, &appended); err != nil || appended.ID == "" {
		t.Fatalf("Could not extract id from %s", rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/collections/users/documents/"+appended.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Get returned %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"name":"sam"`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/collections/users/documents/9999999999999999", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestAppendRejectsMalformedBody(t *testing.T) {
	router, _ := testRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/collections/users/documents", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodPost, "/collections/users/documents", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty body, got %d", rec.Code)
	}
}

func TestFindOneAndFind(t *testing.T) {
	router, _ := testRouter(t)
	doRequest(t, router, http.MethodPost, "/collections/users/documents", `{"name":"A","age":1}`)
	doRequest(t, router, http.MethodPost, "/collections/users/documents", `{"name":"B","age":2}`)
	doRequest(t, router, http.MethodPost, "/collections/users/documents", `{"name":"C","age":1}`)

	rec := doRequest(t, router, http.MethodPost, "/collections/users/query/findone", `{"query":{"age":1}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("FindOne returned %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"name":"A"`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/collections/users/query/find", `{"query":{"age":1},"limit":10}`)
	env := decodeEnvelope(t, rec)
	var found struct {
		Documents []json.RawMessage `json:"documents"`
		Count     int               `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &found); err != nil {
		t.Fatalf("Bad find payload: %s", rec.Body.String())
	}
	if found.Count != 2 || len(found.Documents) != 2 {
		t.Errorf("Expected 2 documents, got %d", found.Count)
	}

	rec = doRequest(t, router, http.MethodPost, "/collections/users/query/findone", `{"query":{"age":99}}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestUpdateAndDropByQuery(t *testing.T) {
	router, _ := testRouter(t)
	doRequest(t, router, http.MethodPost, "/collections/items/documents", `{"v":10}`)
	doRequest(t, router, http.MethodPost, "/collections/items/documents", `{"v":20}`)

	rec := doRequest(t, router, http.MethodPost, "/collections/items/query/update",
		`{"query":{"v":10},"update":{"v":15,"tag":"x"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Update returned %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"updated":1`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/collections/items/query/drop",
		`{"query":{"v":{"$gt":0}},"limit":0}`)
	if !strings.Contains(rec.Body.String(), `"dropped":2`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}

func TestUpdateDocumentMergeConflict(t *testing.T) {
	router, db := testRouter(t)
	id, _ := db.Collection("items").AppendJSON(`{"v":1}`)

	rec := doRequest(t, router, http.MethodPut, "/collections/items/documents/"+id, `{"v":"one"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for merge mismatch, got %d", rec.Code)
	}
}

func TestIndexEndpoints(t *testing.T) {
	router, _ := testRouter(t)
	doRequest(t, router, http.MethodPost, "/collections/users/documents", `{"age":30}`)

	rec := doRequest(t, router, http.MethodPost, "/collections/users/indexes", `{"field":"age"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("CreateIndex returned %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/collections/users/indexes", "")
	if !strings.Contains(rec.Body.String(), `"field":"age"`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodDelete, "/collections/users/indexes/age", "")
	if rec.Code != http.StatusOK {
		t.Errorf("DropIndex returned %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodDelete, "/collections/users/indexes/age", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for absent index, got %d", rec.Code)
	}
}

func TestCollectionEndpoints(t *testing.T) {
	router, _ := testRouter(t)
	doRequest(t, router, http.MethodPost, "/collections/a/documents", `{"x":1}`)

	rec := doRequest(t, router, http.MethodGet, "/collections/", "")
	if !strings.Contains(rec.Body.String(), `"a"`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/collections/a/stats", "")
	if !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodDelete, "/collections/a/", "")
	if rec.Code != http.StatusOK {
		t.Errorf("DropCollection returned %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodGet, "/collections/a/stats", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after drop, got %d", rec.Code)
	}
}

func TestExecuteEndpoint(t *testing.T) {
	router, _ := testRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/execute",
		`{"cmd":"append","collection":"users","document":{"name":"sam"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Execute returned %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"msg":"appended"`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	router, _ := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Health returned %d", rec.Code)
	}
}

func TestRetentionEndpoint(t *testing.T) {
	router, _ := testRouter(t)
	doRequest(t, router, http.MethodPost, "/collections/logs/documents", `{"level":"info"}`)

	// A cutoff in the far future removes everything
	rec := doRequest(t, router, http.MethodPost, "/collections/logs/retention", `{"olderThan":99999999999999}`)
	if !strings.Contains(rec.Body.String(), `"dropped":1`) {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}

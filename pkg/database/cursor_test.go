package database

import (
	"fmt"
	"testing"

	"github.com/robheffo79/SpinoDB/pkg/document"
	"github.com/robheffo79/SpinoDB/pkg/index"
	"github.com/robheffo79/SpinoDB/pkg/query"
)

func cursorDocs(t *testing.T, n int) []*document.Document {
	t.Helper()
	docs := make([]*document.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, mustDoc(t, fmt.Sprintf(`{"n":%d,"even":%v}`, i, i%2 == 0)))
	}
	return docs
}

func mustExpr(t *testing.T, text string) query.Node {
	t.Helper()
	expr, err := query.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", text, err)
	}
	return expr
}

func TestLinearCursorIteration(t *testing.T) {
	docs := cursorDocs(t, 6)
	cursor := newLinearCursor(docs, mustExpr(t, `{"even":true}`), 0)

	var results []string
	for cursor.HasNext() {
		results = append(results, cursor.Next())
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 matches, got %d", len(results))
	}
	for i, want := range []int{0, 2, 4} {
		if results[i] != docs[want].JSON() {
			t.Errorf("Match %d = %s, expected doc %d", i, results[i], want)
		}
	}
}

func TestLinearCursorLimit(t *testing.T) {
	docs := cursorDocs(t, 10)
	cursor := newLinearCursor(docs, mustExpr(t, `{}`), 4)

	count := 0
	for cursor.HasNext() {
		cursor.Next()
		count++
	}
	if count != 4 {
		t.Errorf("Expected 4 yields, got %d", count)
	}
}

func TestLinearCursorExhaustion(t *testing.T) {
	docs := cursorDocs(t, 2)
	cursor := newLinearCursor(docs, mustExpr(t, `{}`), 0)

	cursor.Next()
	cursor.Next()
	if cursor.HasNext() {
		t.Error("Expected exhaustion")
	}
	if cursor.Next() != "" {
		t.Error("Next past exhaustion must yield the empty string")
	}
	if cursor.Next() != "" {
		t.Error("Repeated Next past exhaustion must yield the empty string")
	}
}

func TestLinearCursorNoMatch(t *testing.T) {
	docs := cursorDocs(t, 3)
	cursor := newLinearCursor(docs, mustExpr(t, `{"n":99}`), 0)

	if cursor.HasNext() {
		t.Error("Expected no matches")
	}
	if cursor.Next() != "" {
		t.Error("Expected empty yield")
	}
}

func TestLinearCursorCountDoesNotPerturbIteration(t *testing.T) {
	docs := cursorDocs(t, 6)
	cursor := newLinearCursor(docs, mustExpr(t, `{"even":true}`), 0)

	first := cursor.Next()

	// Count tallies every match, including the first document, and
	// leaves the iteration state alone
	if got := cursor.Count(); got != 3 {
		t.Errorf("Count = %d, expected 3", got)
	}

	second := cursor.Next()
	if first == second || second == "" {
		t.Errorf("Iteration perturbed by Count: first=%s second=%s", first, second)
	}
	if cursor.Next() == "" {
		t.Error("Expected a third match")
	}
	if cursor.Next() != "" {
		t.Error("Expected exhaustion after three matches")
	}
}

func TestLinearCursorCountIncludesFirstDocument(t *testing.T) {
	docs := []*document.Document{mustDoc(t, `{"n":0}`)}
	cursor := newLinearCursor(docs, mustExpr(t, `{"n":0}`), 0)

	if got := cursor.Count(); got != 1 {
		t.Errorf("Count = %d, expected 1", got)
	}
}

func TestIndexCursorIteration(t *testing.T) {
	docs := []*document.Document{
		mustDoc(t, `{"age":1,"name":"A"}`),
		mustDoc(t, `{"age":2,"name":"B"}`),
		mustDoc(t, `{"age":1,"name":"C"}`),
	}
	idx := index.New("age")
	idx.Rebuild(docs)

	cursor := newIndexCursor(docs, idx.EqualRange(index.NumericKey(1)), 0)

	var results []string
	for cursor.HasNext() {
		results = append(results, cursor.Next())
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 yields, got %d", len(results))
	}
	if results[0] != docs[0].JSON() || results[1] != docs[2].JSON() {
		t.Errorf("Wrong yield order: %v", results)
	}

	if cursor.Next() != "" {
		t.Error("Next past exhaustion must yield the empty string")
	}
}

func TestIndexCursorLimitAndCount(t *testing.T) {
	docs := make([]*document.Document, 0, 8)
	for i := 0; i < 8; i++ {
		docs = append(docs, mustDoc(t, `{"k":"same"}`))
	}
	idx := index.New("k")
	idx.Rebuild(docs)

	cursor := newIndexCursor(docs, idx.EqualRange(index.StringKey("same")), 3)

	yields := 0
	for cursor.HasNext() {
		cursor.Next()
		yields++
	}
	if yields != 3 {
		t.Errorf("Expected 3 yields, got %d", yields)
	}

	// Count reports the whole range regardless of the limit
	if got := cursor.Count(); got != 8 {
		t.Errorf("Count = %d, expected 8", got)
	}
}

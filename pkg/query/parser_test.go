package query

import (
	"testing"
)

func TestParseEquality(t *testing.T) {
	n, err := Parse(`{"age":1}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cond, ok := n.(Condition)
	if !ok {
		t.Fatalf("Expected Condition, got %T", n)
	}
	if cond.Field != "age" || cond.Op != OpEqual || cond.Value != float64(1) {
		t.Errorf("Unexpected condition: %+v", cond)
	}
}

func TestParseEmptyFilterMatchesAll(t *testing.T) {
	n, err := Parse(`{}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, ok := n.(MatchAll); !ok {
		t.Fatalf("Expected MatchAll, got %T", n)
	}
}

func TestParseOperatorExpressions(t *testing.T) {
	n, err := Parse(`{"v":{"$gt":50}}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cond, ok := n.(Condition)
	if !ok {
		t.Fatalf("Expected Condition, got %T", n)
	}
	if cond.Op != OpGreaterThan || cond.Value != float64(50) {
		t.Errorf("Unexpected condition: %+v", cond)
	}
}

func TestParseMultipleFieldsBecomeAnd(t *testing.T) {
	n, err := Parse(`{"a":1,"b":2}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	and, ok := n.(And)
	if !ok {
		t.Fatalf("Expected And, got %T", n)
	}
	if len(and.Children) != 2 {
		t.Errorf("Expected 2 children, got %d", len(and.Children))
	}
}

func TestParseLogicalOperators(t *testing.T) {
	n, err := Parse(`{"$or":[{"a":1},{"b":{"$lt":5}}]}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	or, ok := n.(Or)
	if !ok {
		t.Fatalf("Expected Or, got %T", n)
	}
	if len(or.Children) != 2 {
		t.Errorf("Expected 2 children, got %d", len(or.Children))
	}

	n, err = Parse(`{"$not":{"a":1}}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, ok := n.(Not); !ok {
		t.Fatalf("Expected Not, got %T", n)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		`not json`,
		`{"$bogus":[{"a":1}]}`,
		`{"a":{"$bogus":1}}`,
		`{"$and":"not an array"}`,
		`{"$not":"not an object"}`,
	}
	for _, input := range tests {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should have failed", input)
		}
	}
}

func TestParseBasicComparison(t *testing.T) {
	tests := []struct {
		query string
		field string
		op    Operator
		value interface{}
	}{
		{`{"age":1}`, "age", OpEqual, float64(1)},
		{`{"name":"sam"}`, "name", OpEqual, "sam"},
		{`{"age":{"$eq":3}}`, "age", OpEqual, float64(3)},
		{`{"age":{"$gt":18}}`, "age", OpGreaterThan, float64(18)},
		{`{"age":{"$lte":65}}`, "age", OpLessThanOrEqual, float64(65)},
		{`{"address.city":"Berlin"}`, "address.city", OpEqual, "Berlin"},
	}

	for _, tt := range tests {
		bfc := ParseBasicComparison(tt.query)
		if bfc == nil {
			t.Errorf("ParseBasicComparison(%s) = nil", tt.query)
			continue
		}
		if bfc.FieldName != tt.field || bfc.Op != tt.op || bfc.Value != tt.value {
			t.Errorf("ParseBasicComparison(%s) = %+v", tt.query, bfc)
		}
	}
}

func TestParseBasicComparisonRejectsComplexFilters(t *testing.T) {
	tests := []string{
		`{}`,
		`{"a":1,"b":2}`,
		`{"$or":[{"a":1}]}`,
		`{"a":{"$gt":1,"$lt":5}}`,
		`{"a":{"$ne":1}}`,
		`{"a":{"$in":[1,2]}}`,
		`{"a":{"$exists":true}}`,
		`{"a":true}`,
		`{"a":null}`,
		`{"a":[1,2]}`,
		`{"a":{"$eq":[1]}}`,
		`broken`,
	}

	for _, input := range tests {
		if bfc := ParseBasicComparison(input); bfc != nil {
			t.Errorf("ParseBasicComparison(%s) = %+v, expected nil", input, bfc)
		}
	}
}

package document

import (
	"testing"
)

func TestParseRoundTripPreservesOrder(t *testing.T) {
	tests := []string{
		`{}`,
		`{"b":1,"a":2}`,
		`{"name":"Alice","age":30,"active":true,"score":null}`,
		`{"nested":{"z":1,"y":{"x":"deep"}},"arr":[1,"two",false,null]}`,
		`{"text":"line\nbreak \"quoted\""}`,
	}

	for _, input := range tests {
		doc, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%s) failed: %v", input, err)
		}
		if got := doc.JSON(); got != input {
			t.Errorf("Round trip mismatch:\n  in:  %s\n  out: %s", input, got)
		}
	}
}

func TestParseNumbersAsDoubles(t *testing.T) {
	doc, err := Parse(`{"i":42,"f":3.25,"neg":-7}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	for field, want := range map[string]float64{"i": 42, "f": 3.25, "neg": -7} {
		v, ok := doc.Get(field)
		if !ok {
			t.Fatalf("Missing field %q", field)
		}
		f, ok := v.(float64)
		if !ok {
			t.Fatalf("Field %q is %T, expected float64", field, v)
		}
		if f != want {
			t.Errorf("Field %q = %v, expected %v", field, f, want)
		}
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	tests := []string{
		``,
		`[1,2,3]`,
		`"just a string"`,
		`{"unterminated":`,
		`{"a":1} trailing`,
	}

	for _, input := range tests {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should have failed", input)
		}
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(`[{"a":1},"s",2]`)
	if err != nil {
		t.Fatalf("ParseValue failed: %v", err)
	}

	arr, ok := v.([]interface{})
	if !ok {
		t.Fatalf("Expected array, got %T", v)
	}
	if len(arr) != 3 {
		t.Fatalf("Expected 3 elements, got %d", len(arr))
	}
	if _, ok := arr[0].(*Document); !ok {
		t.Errorf("Expected first element to be a document, got %T", arr[0])
	}
}

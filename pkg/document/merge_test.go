package document

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, text string) *Document {
	t.Helper()
	doc, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", text, err)
	}
	return doc
}

func TestMergeAddsAbsentMembers(t *testing.T) {
	dst := mustParse(t, `{"a":1}`)
	src := mustParse(t, `{"b":{"deep":true}}`)

	if err := Merge(dst, src); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if dst.JSON() != `{"a":1,"b":{"deep":true}}` {
		t.Errorf("Unexpected result: %s", dst.JSON())
	}

	// The copied member must be independent of the source
	nested, _ := src.Get("b")
	nested.(*Document).Set("deep", false)
	if v, _ := dst.Lookup("b.deep"); v != true {
		t.Error("Merged member aliases the source")
	}
}

func TestMergeOverwritesScalars(t *testing.T) {
	dst := mustParse(t, `{"v":10,"name":"old"}`)
	src := mustParse(t, `{"v":15,"name":"new"}`)

	if err := Merge(dst, src); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if dst.JSON() != `{"v":15,"name":"new"}` {
		t.Errorf("Unexpected result: %s", dst.JSON())
	}
}

func TestMergeAppendsArrays(t *testing.T) {
	dst := mustParse(t, `{"tags":["a"]}`)
	src := mustParse(t, `{"tags":["b","a"]}`)

	if err := Merge(dst, src); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	// No deduplication
	if dst.JSON() != `{"tags":["a","b","a"]}` {
		t.Errorf("Unexpected result: %s", dst.JSON())
	}
}

func TestMergeRecursesObjects(t *testing.T) {
	dst := mustParse(t, `{"address":{"city":"Berlin","zip":"10115"}}`)
	src := mustParse(t, `{"address":{"city":"Hamburg"}}`)

	if err := Merge(dst, src); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if dst.JSON() != `{"address":{"city":"Hamburg","zip":"10115"}}` {
		t.Errorf("Unexpected result: %s", dst.JSON())
	}
}

func TestMergeTypeMismatchAborts(t *testing.T) {
	dst := mustParse(t, `{"v":10}`)
	src := mustParse(t, `{"v":"ten"}`)

	err := Merge(dst, src)
	if !errors.Is(err, ErrMergeTypeMismatch) {
		t.Fatalf("Expected ErrMergeTypeMismatch, got %v", err)
	}
}

func TestMergeScalarIdempotence(t *testing.T) {
	dst := mustParse(t, `{"v":10,"name":"x"}`)
	patch := mustParse(t, `{"v":15,"tag":"y"}`)

	if err := Merge(dst, patch); err != nil {
		t.Fatalf("First merge failed: %v", err)
	}
	once := dst.JSON()

	if err := Merge(dst, patch); err != nil {
		t.Fatalf("Second merge failed: %v", err)
	}
	if dst.JSON() != once {
		t.Errorf("Scalar-only merge not idempotent:\n  once:  %s\n  twice: %s", once, dst.JSON())
	}
}

package impex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/robheffo79/SpinoDB/pkg/database"
	"github.com/robheffo79/SpinoDB/pkg/document"
)

// ExportJSON writes every document of a collection to the writer as a
// JSON array, in insertion order.
func ExportJSON(coll *database.Collection, w io.Writer, pretty bool) error {
	cursor, err := coll.Find("{}", 0)
	if err != nil {
		return fmt.Errorf("failed to scan collection: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	first := true
	for cursor.HasNext() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(cursor.Next())
	}
	buf.WriteByte(']')

	out := buf.Bytes()
	if pretty {
		var indented bytes.Buffer
		if err := json.Indent(&indented, out, "", "  "); err != nil {
			return fmt.Errorf("failed to format export: %w", err)
		}
		out = indented.Bytes()
	}

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ImportJSON appends every object of a JSON array to the collection.
// Imported documents are restamped with fresh IDs. Returns the number
// of documents appended.
func ImportJSON(coll *database.Collection, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read import: %w", err)
	}

	value, err := document.ParseValue(string(data))
	if err != nil {
		return 0, err
	}
	arr, ok := value.([]interface{})
	if !ok {
		return 0, fmt.Errorf("import must be a JSON array")
	}

	count := 0
	for i, item := range arr {
		doc, ok := item.(*document.Document)
		if !ok {
			return count, fmt.Errorf("element %d is not an object", i)
		}
		coll.Append(doc)
		count++
	}
	return count, nil
}

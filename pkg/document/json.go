package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Parse parses JSON text into a document. The top-level value must be
// an object. Member order is preserved.
func Parse(text string) (*Document, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("document must be a JSON object")
	}

	doc, err := parseObject(dec)
	if err != nil {
		return nil, err
	}

	if dec.More() {
		return nil, fmt.Errorf("unexpected trailing data after document")
	}
	return doc, nil
}

// ParseValue parses JSON text into a document value of any type.
func ParseValue(text string) (interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse value: %w", err)
	}
	return v, nil
}

// parseObject consumes members until the closing brace. The opening
// brace has already been read.
func parseObject(dec *json.Decoder) (*Document, error) {
	doc := NewDocument()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse object key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string")
		}

		value, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		doc.Set(key, value)
	}

	// Consume the closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("unterminated object: %w", err)
	}
	return doc, nil
}

// parseArray consumes elements until the closing bracket.
func parseArray(dec *json.Decoder) ([]interface{}, error) {
	arr := make([]interface{}, 0)
	for dec.More() {
		value, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("unterminated array: %w", err)
	}
	return arr, nil
}

func parseValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("unexpected end of input")
		}
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", v.String())
	case json.Number:
		// Numbers are stored as IEEE-754 doubles
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", v.String(), err)
		}
		return f, nil
	default:
		// string, bool or nil
		return v, nil
	}
}

// JSON serializes the document to compact JSON text with members in
// insertion order.
func (d *Document) JSON() string {
	var buf bytes.Buffer
	writeDocument(&buf, d)
	return buf.String()
}

// MarshalJSON implements json.Marshaler
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	writeDocument(&buf, d)
	return buf.Bytes(), nil
}

func writeDocument(buf *bytes.Buffer, d *Document) {
	buf.WriteByte('{')
	for i, key := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, key)
		buf.WriteByte(':')
		writeValue(buf, d.fields[key])
	}
	buf.WriteByte('}')
}

func writeValue(buf *bytes.Buffer, v interface{}) {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case float64:
		b, _ := json.Marshal(val)
		buf.Write(b)
	case string:
		writeString(buf, val)
	case []interface{}:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeValue(buf, item)
		}
		buf.WriteByte(']')
	case *Document:
		writeDocument(buf, val)
	default:
		b, _ := json.Marshal(val)
		buf.Write(b)
	}
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

package document

import (
	"errors"
	"fmt"
)

// ErrMergeTypeMismatch is returned when a source member and the
// matching destination member hold values of different JSON types.
var ErrMergeTypeMismatch = errors.New("merge type mismatch")

// Merge deep-merges src into dst:
//   - members absent from dst are deep-copied in
//   - arrays are concatenated (src elements appended to dst)
//   - objects are merged recursively
//   - matching scalars are overwritten with a copy of the src value
//
// A type mismatch aborts the merge; dst may have absorbed earlier
// members by then.
func Merge(dst, src *Document) error {
	for _, key := range src.Keys() {
		srcVal, _ := src.Get(key)

		dstVal, exists := dst.Get(key)
		if !exists {
			dst.Set(key, CloneValue(srcVal))
			continue
		}

		if kindOf(dstVal) != kindOf(srcVal) {
			return fmt.Errorf("field %q: %w", key, ErrMergeTypeMismatch)
		}

		switch sv := srcVal.(type) {
		case []interface{}:
			arr := dstVal.([]interface{})
			for _, item := range sv {
				arr = append(arr, CloneValue(item))
			}
			dst.Set(key, arr)
		case *Document:
			if err := Merge(dstVal.(*Document), sv); err != nil {
				return err
			}
		default:
			dst.Set(key, CloneValue(srcVal))
		}
	}
	return nil
}

// kindOf maps a document value to a comparable type tag
func kindOf(v interface{}) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	case []interface{}:
		return 4
	case *Document:
		return 5
	default:
		return -1
	}
}

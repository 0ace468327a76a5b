package index

import (
	"sort"
	"strings"

	"github.com/robheffo79/SpinoDB/pkg/document"
)

// Entry maps a scalar key to a document slot in the collection array.
// Slots are volatile: deletes renumber them.
type Entry struct {
	Key  Key
	Slot int
}

// Index is an ordered multimap from scalar keys to document slots,
// built over a single dotted field path. Entries with equal keys keep
// insertion order, so an equal-range walk yields documents in the
// order they were indexed.
type Index struct {
	fieldName string
	segments  []string
	entries   []Entry
}

// New compiles a dotted field path (e.g. "address.city") into an
// empty index.
func New(fieldPath string) *Index {
	return &Index{
		fieldName: fieldPath,
		segments:  strings.Split(fieldPath, "."),
		entries:   make([]Entry, 0),
	}
}

// FieldName returns the dotted path the index was created with
func (idx *Index) FieldName() string {
	return idx.fieldName
}

// Len returns the number of entries
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Resolve looks up the indexed field on a document
func (idx *Index) Resolve(doc *document.Document) (interface{}, bool) {
	return doc.LookupSegments(idx.segments)
}

// Add resolves the indexed field on the document at the given slot and
// inserts an entry if the value is a string or a number. Other value
// types are skipped.
func (idx *Index) Add(doc *document.Document, slot int) {
	v, ok := idx.Resolve(doc)
	if !ok {
		return
	}
	key, ok := KeyFromValue(v)
	if !ok {
		return
	}
	idx.Insert(key, slot)
}

// Insert places an entry at the upper bound of its key, keeping equal
// keys in insertion order.
func (idx *Index) Insert(key Key, slot int) {
	pos := sort.Search(len(idx.entries), func(i int) bool {
		return Compare(idx.entries[i].Key, key) > 0
	})
	idx.entries = append(idx.entries, Entry{})
	copy(idx.entries[pos+1:], idx.entries[pos:])
	idx.entries[pos] = Entry{Key: key, Slot: slot}
}

// lowerBound returns the first position whose key is >= key
func (idx *Index) lowerBound(key Key) int {
	return sort.Search(len(idx.entries), func(i int) bool {
		return Compare(idx.entries[i].Key, key) >= 0
	})
}

// First returns the slot of the first entry equal to key
func (idx *Index) First(key Key) (int, bool) {
	pos := idx.lowerBound(key)
	if pos < len(idx.entries) && Compare(idx.entries[pos].Key, key) == 0 {
		return idx.entries[pos].Slot, true
	}
	return 0, false
}

// EqualRange returns all entries whose key equals key, in insertion
// order. The returned slice aliases the index and is only valid until
// the next mutation.
func (idx *Index) EqualRange(key Key) []Entry {
	lo := idx.lowerBound(key)
	hi := lo
	for hi < len(idx.entries) && Compare(idx.entries[hi].Key, key) == 0 {
		hi++
	}
	return idx.entries[lo:hi]
}

// RemoveSlot deletes every entry pointing at the given slot and shifts
// entries above it down by one. Key order is untouched, so the entry
// slice stays sorted.
func (idx *Index) RemoveSlot(slot int) {
	out := idx.entries[:0]
	for _, e := range idx.entries {
		if e.Slot == slot {
			continue
		}
		if e.Slot > slot {
			e.Slot--
		}
		out = append(out, e)
	}
	idx.entries = out
}

// Rebuild discards all entries and re-indexes the given document array
func (idx *Index) Rebuild(docs []*document.Document) {
	idx.entries = idx.entries[:0]
	for slot, doc := range docs {
		idx.Add(doc, slot)
	}
}

// Stats returns index statistics
func (idx *Index) Stats() map[string]interface{} {
	return map[string]interface{}{
		"field": idx.fieldName,
		"type":  "scalar",
		"count": len(idx.entries),
	}
}

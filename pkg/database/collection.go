package database

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/robheffo79/SpinoDB/pkg/cache"
	"github.com/robheffo79/SpinoDB/pkg/document"
	"github.com/robheffo79/SpinoDB/pkg/index"
	"github.com/robheffo79/SpinoDB/pkg/query"
)

// Collection binds an ordered array of documents to its secondary
// indexes and query result cache. Documents keep insertion order and
// are only ever removed, never reordered, which is what makes the
// binary search by _id valid.
type Collection struct {
	name    string
	docs    []*document.Document
	indexes []*index.Index
	cache   *cache.ResultCache
	idgen   *document.IDGenerator
	corrupt bool
	notify  func(ChangeEvent)
	mu      sync.RWMutex
}

// NewCollection creates an empty collection
func NewCollection(name string) *Collection {
	return &Collection{
		name:    name,
		docs:    make([]*document.Document, 0),
		indexes: make([]*index.Index, 0),
		cache:   cache.NewResultCache(),
		idgen:   document.NewIDGenerator(),
	}
}

// restore installs a loaded document array. A nil array marks the
// collection corrupt: it is reported once and the collection carries
// on empty.
func (c *Collection) restore(docs []*document.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if docs == nil {
		log.Printf("WARNING: collection %s is not an array, the database is corrupt", c.name)
		c.corrupt = true
		c.docs = make([]*document.Document, 0)
		return
	}

	c.docs = docs
	for _, doc := range docs {
		if id, ok := docID(doc); ok {
			c.idgen.Observe(id)
		}
	}
	for _, idx := range c.indexes {
		idx.Rebuild(c.docs)
	}
	c.cache.Clear()
}

// Name returns the collection name
func (c *Collection) Name() string {
	return c.name
}

// Size returns the number of documents in the collection
func (c *Collection) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Append stamps the document with a generated _id and inserts it at
// the end of the array, updating every index. Append never changes an
// existing document, so the result cache is left alone: a cached
// findOne hit is always an earlier insertion-order match than anything
// appended after it.
func (c *Collection) Append(doc *document.Document) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.idgen.Next()
	doc.Set("_id", id)

	c.docs = append(c.docs, doc)
	slot := len(c.docs) - 1
	for _, idx := range c.indexes {
		idx.Add(doc, slot)
	}

	c.publish(ChangeEvent{Collection: c.name, Op: OpAppend, ID: id})
	return id
}

// AppendJSON parses jsonText as an object and appends it. The
// collection is unchanged on parse failure.
func (c *Collection) AppendJSON(jsonText string) (string, error) {
	doc, err := document.Parse(jsonText)
	if err != nil {
		return "", err
	}
	return c.Append(doc), nil
}

// UpdateByID deep-merges the patch into the document with the given
// _id. Returns ErrDocumentNotFound if no document matches.
func (c *Collection) UpdateByID(id, patchText string) error {
	patch, err := document.Parse(patchText)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.slotFromID(id)
	if !ok {
		return ErrDocumentNotFound
	}

	mergeErr := document.Merge(c.docs[slot], patch)
	c.cache.Clear()
	c.rebuildIndexes()

	c.publish(ChangeEvent{Collection: c.name, Op: OpUpdate, ID: id})
	return mergeErr
}

// Update deep-merges the patch into every document the filter
// matches, in insertion order, and returns how many documents were
// merged. A document whose merge hits a type mismatch is not counted
// and the batch carries on; members merged into it before the
// mismatch stay in place.
func (c *Collection) Update(queryText, patchText string) (int, error) {
	expr, err := query.Parse(queryText)
	if err != nil {
		return 0, err
	}
	patch, err := document.Parse(patchText)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, doc := range c.docs {
		if !query.Match(expr, doc) {
			continue
		}
		if err := document.Merge(doc, patch); err != nil {
			continue
		}
		count++
	}

	c.cache.Clear()
	if count > 0 {
		c.rebuildIndexes()
		c.publish(ChangeEvent{Collection: c.name, Op: OpUpdate})
	}
	return count, nil
}

// FindOneByID returns the document with the given _id serialized to
// JSON, or the empty string if there is none.
func (c *Collection) FindOneByID(id string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	slot, ok := c.slotFromID(id)
	if !ok {
		return ""
	}
	return c.docs[slot].JSON()
}

// FindOne returns the first matching document serialized to JSON, or
// the empty string. Results are served from the query cache when
// possible; cache misses try an index point lookup before falling back
// to a linear scan.
func (c *Collection) FindOne(queryText string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if result, ok := c.cache.Get(queryText); ok {
		return result
	}

	var result string

	// Index fast path: a single equality comparison on an indexed field
	if bfc := query.ParseBasicComparison(queryText); bfc != nil && bfc.Op == query.OpEqual {
		for _, idx := range c.indexes {
			if idx.FieldName() != bfc.FieldName {
				continue
			}
			if key, ok := index.KeyFromValue(bfc.Value); ok {
				if slot, found := idx.First(key); found {
					result = c.docs[slot].JSON()
				}
			}
			break
		}
	}

	if result == "" {
		expr, err := query.Parse(queryText)
		if err != nil {
			return ""
		}
		result = newLinearCursor(c.docs, expr, 1).Next()
	}

	if result != "" {
		c.cache.Put(queryText, result)
	}
	return result
}

// Find returns a cursor over the documents matching the filter,
// yielding at most limit documents. A non-positive limit means no
// limit. An index cursor is used when the filter is a single equality
// comparison on an indexed field; the cache is never consulted.
func (c *Collection) Find(queryText string, limit int) (Cursor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if bfc := query.ParseBasicComparison(queryText); bfc != nil && bfc.Op == query.OpEqual {
		for _, idx := range c.indexes {
			if idx.FieldName() != bfc.FieldName {
				continue
			}
			if key, ok := index.KeyFromValue(bfc.Value); ok {
				return newIndexCursor(c.docs, idx.EqualRange(key), limit), nil
			}
			break
		}
	}

	expr, err := query.Parse(queryText)
	if err != nil {
		return nil, err
	}
	return newLinearCursor(c.docs, expr, limit), nil
}

// DropByID removes the document with the given _id, renumbering index
// slots above it.
func (c *Collection) DropByID(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.slotFromID(id)
	if !ok {
		return ErrDocumentNotFound
	}

	for _, idx := range c.indexes {
		idx.RemoveSlot(slot)
	}
	c.docs = append(c.docs[:slot], c.docs[slot+1:]...)
	c.cache.Clear()

	c.publish(ChangeEvent{Collection: c.name, Op: OpDrop, ID: id})
	return nil
}

// DropOne removes the first document matching the filter
func (c *Collection) DropOne(queryText string) (int, error) {
	return c.Drop(queryText, 1)
}

// Drop removes matching documents in insertion order, up to limit, and
// returns the count removed. Indexes are rebuilt from scratch when
// anything was removed. A non-positive limit means no limit.
func (c *Collection) Drop(queryText string, limit int) (int, error) {
	expr, err := query.Parse(queryText)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if limit <= 0 {
		limit = len(c.docs) + 1
	}

	count := 0
	kept := c.docs[:0]
	for _, doc := range c.docs {
		if count < limit && query.Match(expr, doc) {
			count++
			continue
		}
		kept = append(kept, doc)
	}
	c.docs = kept

	if count > 0 {
		c.cache.Clear()
		c.rebuildIndexes()
		c.publish(ChangeEvent{Collection: c.name, Op: OpDrop})
	}
	return count, nil
}

// DropOlderThan removes the contiguous prefix of documents whose _id
// timestamp predates the cutoff, given in milliseconds since epoch.
// Returns the number of documents removed.
func (c *Collection) DropOlderThan(milliseconds int64) int {
	cutoff := milliseconds / 1000

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.docs) == 0 {
		return 0
	}

	// IDs are append-monotonic, so the victims are a prefix: binary
	// search for the first document stamped at or after the cutoff
	n := sort.Search(len(c.docs), func(i int) bool {
		id, ok := docID(c.docs[i])
		if !ok {
			return true
		}
		return document.TimestampByID(id) >= cutoff
	})

	if n == 0 {
		return 0
	}

	c.docs = append(c.docs[:0], c.docs[n:]...)
	c.cache.Clear()
	c.rebuildIndexes()

	c.publish(ChangeEvent{Collection: c.name, Op: OpDrop})
	return n
}

// CreateIndex compiles the dotted field path, scans the collection
// once and appends the new index. Duplicate field paths are not
// detected; the first index for a field wins at query time.
func (c *Collection) CreateIndex(fieldPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := index.New(fieldPath)
	idx.Rebuild(c.docs)
	c.indexes = append(c.indexes, idx)
}

// DropIndex removes the first index whose field path equals fieldPath
func (c *Collection) DropIndex(fieldPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, idx := range c.indexes {
		if idx.FieldName() == fieldPath {
			c.indexes = append(c.indexes[:i], c.indexes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrIndexNotFound, fieldPath)
}

// ListIndexes returns statistics for every index
func (c *Collection) ListIndexes() []map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make([]map[string]interface{}, 0, len(c.indexes))
	for _, idx := range c.indexes {
		stats = append(stats, idx.Stats())
	}
	return stats
}

// Stats returns collection statistics
func (c *Collection) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"name":          c.name,
		"count":         len(c.docs),
		"indexes":       len(c.indexes),
		"cached":        c.cache.Len(),
		"corrupt":       c.corrupt,
		"index_details": c.indexStatsLocked(),
	}
}

func (c *Collection) indexStatsLocked() []map[string]interface{} {
	stats := make([]map[string]interface{}, 0, len(c.indexes))
	for _, idx := range c.indexes {
		stats = append(stats, idx.Stats())
	}
	return stats
}

// slotFromID binary-searches the document array for an _id. IDs are
// compared as a (timestamp, counter) integer pair, which matches their
// lexicographic order; the search is valid because appends are
// monotonic and slots are only compacted, never reordered.
func (c *Collection) slotFromID(id string) (int, bool) {
	if len(id) != document.IDLength {
		return 0, false
	}
	wantTS, wantCnt, err := document.DecodeID(id)
	if err != nil {
		return 0, false
	}

	lo, hi := 0, len(c.docs)-1
	for lo <= hi {
		mid := (lo + hi) / 2

		probe, ok := docID(c.docs[mid])
		if !ok {
			return 0, false
		}
		ts, cnt, err := document.DecodeID(probe)
		if err != nil {
			return 0, false
		}

		switch {
		case ts < wantTS:
			lo = mid + 1
		case ts > wantTS:
			hi = mid - 1
		case cnt < wantCnt:
			lo = mid + 1
		case cnt > wantCnt:
			hi = mid - 1
		default:
			return mid, true
		}
	}
	return 0, false
}

// rebuildIndexes re-derives every index from the document array.
// Callers must hold the write lock.
func (c *Collection) rebuildIndexes() {
	for _, idx := range c.indexes {
		idx.Rebuild(c.docs)
	}
}

func (c *Collection) publish(ev ChangeEvent) {
	if c.notify != nil {
		c.notify(ev)
	}
}

// docID extracts the _id member of a document
func docID(doc *document.Document) (string, bool) {
	v, ok := doc.Get("_id")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

package database

import (
	"github.com/robheffo79/SpinoDB/pkg/document"
	"github.com/robheffo79/SpinoDB/pkg/index"
	"github.com/robheffo79/SpinoDB/pkg/query"
)

// Cursor is a single-use, forward-only lazy sequence of serialized
// matching documents, bounded by an inclusive maximum yield count.
// Calling Next past exhaustion yields the empty string. Cursors borrow
// the collection's document array: no mutating operation may run while
// a cursor is outstanding.
type Cursor interface {
	// HasNext reports whether Next will yield a document
	HasNext() bool
	// Next returns the next serialized match, or "" when exhausted
	Next() string
	// Count tallies every match in a separate full pass without
	// consuming the cursor
	Count() int
}

// LinearCursor scans the document array, applying the filter to each
// document. It keeps a one-element look-ahead: the empty string means
// the cursor is exhausted.
type LinearCursor struct {
	docs    []*document.Document
	expr    query.Node
	limit   int
	pos     int
	matched int
	nextdoc string
}

func newLinearCursor(docs []*document.Document, expr query.Node, limit int) *LinearCursor {
	if limit <= 0 {
		limit = len(docs) + 1
	}
	c := &LinearCursor{docs: docs, expr: expr, limit: limit}
	c.fetch()
	return c
}

// HasNext reports whether the look-ahead holds a document
func (c *LinearCursor) HasNext() bool {
	return c.nextdoc != ""
}

// Next returns the current look-ahead and advances to the next match
func (c *LinearCursor) Next() string {
	ret := c.nextdoc
	if ret == "" {
		return ""
	}
	c.fetch()
	return ret
}

// fetch advances the scan position to the next match and refills the
// look-ahead, respecting the limit
func (c *LinearCursor) fetch() {
	c.nextdoc = ""
	if c.matched >= c.limit {
		return
	}
	for c.pos < len(c.docs) {
		doc := c.docs[c.pos]
		c.pos++
		if query.Match(c.expr, doc) {
			c.matched++
			c.nextdoc = doc.JSON()
			return
		}
	}
}

// Count tallies all matches over the whole array. Iteration state is
// untouched and the limit does not apply.
func (c *LinearCursor) Count() int {
	count := 0
	for _, doc := range c.docs {
		if query.Match(c.expr, doc) {
			count++
		}
	}
	return count
}

// IndexCursor walks a precomputed equal-range of one index, yielding
// the document at each entry's slot in range order.
type IndexCursor struct {
	docs    []*document.Document
	entries []index.Entry
	limit   int
	pos     int
	yielded int
	nextdoc string
}

func newIndexCursor(docs []*document.Document, entries []index.Entry, limit int) *IndexCursor {
	if limit <= 0 {
		limit = len(entries) + 1
	}
	c := &IndexCursor{docs: docs, entries: entries, limit: limit}
	c.fetch()
	return c
}

// HasNext reports whether the look-ahead holds a document
func (c *IndexCursor) HasNext() bool {
	return c.nextdoc != ""
}

// Next returns the current look-ahead and advances along the range
func (c *IndexCursor) Next() string {
	ret := c.nextdoc
	if ret == "" {
		return ""
	}
	c.fetch()
	return ret
}

func (c *IndexCursor) fetch() {
	c.nextdoc = ""
	if c.yielded >= c.limit || c.pos >= len(c.entries) {
		return
	}
	slot := c.entries[c.pos].Slot
	c.pos++
	c.yielded++
	c.nextdoc = c.docs[slot].JSON()
}

// Count returns the size of the key range regardless of the limit
func (c *IndexCursor) Count() int {
	return len(c.entries)
}

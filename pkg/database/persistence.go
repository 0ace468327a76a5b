package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/robheffo79/SpinoDB/pkg/compression"
	"github.com/robheffo79/SpinoDB/pkg/document"
)

// Save serializes the whole database as one JSON object mapping each
// collection name to its document array. The file is written through a
// temp-and-rename so a crash mid-write leaves the previous snapshot
// intact. Paths ending in .gz or .zst are compressed transparently.
func (db *Database) Save(path string) error {
	db.mu.RLock()
	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	colls := make(map[string]*Collection, len(db.collections))
	for name, coll := range db.collections {
		colls[name] = coll
	}
	db.mu.RUnlock()

	sort.Strings(names)

	root := document.NewDocument()
	for _, name := range names {
		coll := colls[name]
		coll.mu.RLock()
		arr := make([]interface{}, len(coll.docs))
		for i, doc := range coll.docs {
			arr[i] = doc
		}
		coll.mu.RUnlock()
		root.Set(name, arr)
	}

	data, err := compression.Compress([]byte(root.JSON()), compression.ForPath(path))
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".spino-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Load restores the database from a snapshot file, replacing any
// collections of the same name. Each collection's ID generator is
// advanced past the loaded IDs so future appends stay monotonic. A
// member whose value is not an array marks that collection corrupt; it
// is reported and loaded empty.
func (db *Database) Load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	data, err := compression.Decompress(raw, compression.ForPath(path))
	if err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	root, err := document.Parse(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	for _, name := range root.Keys() {
		value, _ := root.Get(name)
		coll := db.collectionLocked(name)

		arr, ok := value.([]interface{})
		if !ok {
			coll.restore(nil)
			continue
		}

		docs := make([]*document.Document, 0, len(arr))
		for _, item := range arr {
			doc, ok := item.(*document.Document)
			if !ok {
				docs = nil
				break
			}
			docs = append(docs, doc)
		}
		coll.restore(docs)
	}
	return nil
}

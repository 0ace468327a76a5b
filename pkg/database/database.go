package database

import (
	"fmt"
	"sort"
	"sync"
)

// Database owns a set of named collections and the change hub. All
// calls into a collection are serialized by the collection's own lock;
// the database lock only guards the registry.
type Database struct {
	collections map[string]*Collection
	hub         *changeHub
	mu          sync.RWMutex
}

// New creates an empty database
func New() *Database {
	return &Database{
		collections: make(map[string]*Collection),
		hub:         newChangeHub(),
	}
}

// Collection returns the named collection, creating it if needed
func (db *Database) Collection(name string) *Collection {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.collectionLocked(name)
}

func (db *Database) collectionLocked(name string) *Collection {
	if coll, exists := db.collections[name]; exists {
		return coll
	}

	coll := NewCollection(name)
	coll.notify = db.hub.publish
	db.collections[name] = coll
	return coll
}

// GetCollection returns the named collection without creating it
func (db *Database) GetCollection(name string) (*Collection, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	coll, exists := db.collections[name]
	return coll, exists
}

// DropCollection removes a collection and everything it owns
func (db *Database) DropCollection(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.collections[name]; !exists {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	delete(db.collections, name)
	return nil
}

// ListCollections returns all collection names, sorted
func (db *Database) ListCollections() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Watch subscribes to mutation events on one collection, or on every
// collection when name is empty. The returned cancel func must be
// called to release the watcher.
func (db *Database) Watch(name string) (<-chan ChangeEvent, func()) {
	return db.hub.subscribe(name)
}

// Stats returns database statistics
func (db *Database) Stats() map[string]interface{} {
	db.mu.RLock()
	defer db.mu.RUnlock()

	collectionStats := make(map[string]interface{}, len(db.collections))
	for name, coll := range db.collections {
		collectionStats[name] = coll.Stats()
	}

	return map[string]interface{}{
		"collections":      len(db.collections),
		"collection_stats": collectionStats,
	}
}

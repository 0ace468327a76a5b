package database

import "errors"

var (
	// ErrDocumentNotFound is returned when no document carries the requested _id
	ErrDocumentNotFound = errors.New("document not found")
	// ErrIndexNotFound is returned when dropping an index that does not exist
	ErrIndexNotFound = errors.New("index not found")
	// ErrCollectionNotFound is returned when a named collection does not exist
	ErrCollectionNotFound = errors.New("collection not found")
)

// Package docstore provides whole-document key-value storage for aggregate
// roots. Documents are opaque JSON blobs keyed by a single string key; Put
// always overwrites the entire document, so concurrent writers to the same
// key are last-write-wins and there are no cross-document transactions.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned by Load when no document exists under the key.
var ErrNotFound = errors.New("docstore: document not found")

// Schema describes where a collection of documents lives: the table that
// holds it and the column used as primary key. Constructors validate both
// names up front since they are interpolated into SQL.
type Schema struct {
	Table     string
	KeyColumn string
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func (s Schema) validate() error {
	if !identPattern.MatchString(s.Table) {
		return fmt.Errorf("docstore: invalid table name %q", s.Table)
	}
	if !identPattern.MatchString(s.KeyColumn) {
		return fmt.Errorf("docstore: invalid key column %q", s.KeyColumn)
	}
	return nil
}

// Store is the access layer contract shared by the Postgres and in-memory
// implementations.
type Store interface {
	// Load returns the document stored under key, ErrNotFound if absent.
	Load(ctx context.Context, key string) ([]byte, error)
	// Scan returns every document in the collection, ordered by key.
	Scan(ctx context.Context) ([][]byte, error)
	// Put stores doc under key, overwriting any previous document.
	Put(ctx context.Context, key string, doc []byte) error
	// Delete removes the document under key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
}

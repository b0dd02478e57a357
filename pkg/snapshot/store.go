// Package snapshot provides the static bank snapshot: an immutable, keyed
// collection of bank records loaded once at startup.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Sternrassler/bankbridge/pkg/bank"
)

var (
	// ErrNotFound indicates no record exists for the requested identifier.
	ErrNotFound = errors.New("bank not found")

	// ErrInvalidDocument indicates the dataset document could not be decoded.
	ErrInvalidDocument = errors.New("invalid snapshot document")
)

// Document is the on-disk dataset format.
type Document struct {
	Banks []bank.Record `json:"banks"`
}

// Store is an immutable snapshot of bank records. Enumeration follows the
// dataset's insertion order. A Store is never mutated after construction, so
// any number of goroutines may read it without synchronization.
type Store struct {
	records []bank.Record
	index   map[string]int
}

// NewStore builds a store from records. A later record with an identifier
// already present replaces the earlier one in its original position.
func NewStore(records []bank.Record) (*Store, error) {
	s := &Store{
		records: make([]bank.Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}

	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		r.Products = append([]string(nil), r.Products...)
		if pos, ok := s.index[r.ID]; ok {
			s.records[pos] = r
			continue
		}
		s.index[r.ID] = len(s.records)
		s.records = append(s.records, r)
	}

	SnapshotRecords.Set(float64(len(s.records)))
	return s, nil
}

// Parse decodes a dataset document into a store.
func Parse(data []byte) (*Store, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return NewStore(doc.Banks)
}

// All returns every record in insertion order. The returned slice is a copy.
func (s *Store) All() []bank.Record {
	out := make([]bank.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record with the given identifier.
func (s *Store) Get(id string) (bank.Record, error) {
	pos, ok := s.index[id]
	if !ok {
		return bank.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.records[pos], nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Document returns the store contents in dataset format.
func (s *Store) Document() Document {
	return Document{Banks: s.All()}
}

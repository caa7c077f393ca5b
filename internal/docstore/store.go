// Package docstore is a small collection-scoped document store: documents
// are JSON objects addressed by (collection, id), queried by field
// equality and ordered by a single field.
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no document matches the collection and id.
var ErrNotFound = errors.New("document not found")

// Direction orders query results.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Document is a stored id with its data map.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter matches documents whose field equals Value.
type Filter struct {
	Field string
	Value string
}

// Query selects documents from one collection.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Direction  Direction
}

// Where appends an equality filter.
func (q Query) Where(field, value string) Query {
	q.Filters = append(append([]Filter{}, q.Filters...), Filter{Field: field, Value: value})
	return q
}

// Order sets the ordering field.
func (q Query) Order(field string, dir Direction) Query {
	q.OrderBy = field
	q.Direction = dir
	return q
}

// Store is the document store contract.
type Store interface {
	// Add stores data under a new id and returns it.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, q Query) ([]Document, error)
	// ArrayAppend atomically appends value to the array stored at field.
	ArrayAppend(ctx context.Context, collection, id, field string, value any) error
}

// timeLayout is fixed width so that string order equals time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime encodes t for storage inside a document.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTime decodes a stored timestamp. RFC 3339 values are accepted too.
func ParseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, true
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

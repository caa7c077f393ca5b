package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used for local runs and tests.
// Documents round-trip through JSON so values come back with the same
// types the Postgres store produces.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	order []string
	docs  map[string]map[string]any
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) Add(_ context.Context, collection string, data map[string]any) (string, error) {
	doc, err := normalize(data)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(collection)
	c.order = append(c.order, id)
	c.docs[id] = doc
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Data: clone(data)}, nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields map[string]any) error {
	patch, err := normalize(fields)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.lookup(collection, id)
	if err != nil {
		return err
	}
	for k, v := range patch {
		data[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(collection, id); err != nil {
		return err
	}
	c := s.collections[collection]
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) ArrayAppend(_ context.Context, collection, id, field string, value any) error {
	wrapped, err := normalize(map[string]any{"v": value})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.lookup(collection, id)
	if err != nil {
		return err
	}
	existing, _ := data[field].([]any)
	data[field] = append(existing, wrapped["v"])
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[q.Collection]
	if !ok {
		return nil, nil
	}

	var result []Document
	for _, id := range c.order {
		data := c.docs[id]
		if !matches(data, q.Filters) {
			continue
		}
		result = append(result, Document{ID: id, Data: clone(data)})
	}
	if q.OrderBy != "" {
		sort.SliceStable(result, func(i, j int) bool {
			a := fieldString(result[i].Data, q.OrderBy)
			b := fieldString(result[j].Data, q.OrderBy)
			if q.Direction == Descending {
				return a > b
			}
			return a < b
		})
	}
	return result, nil
}

func (s *MemoryStore) collection(name string) *memoryCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string]map[string]any)}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) lookup(collection, id string) (map[string]any, error) {
	c, ok := s.collections[collection]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func matches(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if _, ok := data[f.Field]; !ok || fieldString(data, f.Field) != f.Value {
			return false
		}
	}
	return true
}

// fieldString mirrors Postgres' ->> operator for scalar values.
func fieldString(data map[string]any, field string) string {
	switch v := data[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool, float64:
		return fmt.Sprint(v)
	default:
		raw, _ := json.Marshal(v)
		return string(raw)
	}
}

func normalize(data map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

func clone(data map[string]any) map[string]any {
	out, err := normalize(data)
	if err != nil {
		return map[string]any{}
	}
	return out
}

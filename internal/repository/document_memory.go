package repository

import (
	"context"
	"sync"

	"toolforge-rest-api/internal/model"
	"toolforge-rest-api/pkg/uid"
)

// MemoryDocumentStore keeps collections in-process. Used by tests and as a
// dev fallback when no database is configured.
type MemoryDocumentStore struct {
	mu    sync.RWMutex
	docs  map[string]map[string]model.Document // collection -> id -> document
	order map[string][]string                  // collection -> ids in insertion order
}

// NewMemoryDocumentStore initializes an empty in-memory store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		docs:  make(map[string]map[string]model.Document),
		order: make(map[string][]string),
	}
}

// List returns matching documents newest-first by insertion.
func (m *MemoryDocumentStore) List(ctx context.Context, collection string, filter model.Filter) ([]model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.order[collection]
	docs := make([]model.Document, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		doc, ok := m.docs[collection][ids[i]]
		if !ok {
			continue
		}
		if matchesFilter(doc, filter) {
			docs = append(docs, copyDocument(doc))
		}
	}
	return docs, nil
}

// Get returns the document with the given id.
func (m *MemoryDocumentStore) Get(ctx context.Context, collection, id string) (model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

// Insert stores a new document under a generated id.
func (m *MemoryDocumentStore) Insert(ctx context.Context, collection string, doc model.Document) (InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uid.New()
	m.insertLocked(collection, id, doc)
	return InsertResult{ID: id}, nil
}

func (m *MemoryDocumentStore) insertLocked(collection, id string, doc model.Document) {
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]model.Document)
	}
	stored := copyDocument(doc)
	stored["id"] = id
	m.docs[collection][id] = stored
	m.order[collection] = append(m.order[collection], id)
}

// UpdateByID merges fields into the document with the given id.
func (m *MemoryDocumentStore) UpdateByID(ctx context.Context, collection, id string, fields model.Partial) (UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateLocked(collection, id, fields), nil
}

func (m *MemoryDocumentStore) updateLocked(collection, id string, fields model.Partial) UpdateResult {
	doc, ok := m.docs[collection][id]
	if !ok {
		return UpdateResult{}
	}

	result := UpdateResult{Matched: 1}
	for key, value := range fields {
		if existing, ok := doc[key]; ok && looseEqual(existing, value) {
			continue
		}
		doc[key] = value
		result.Modified = 1
	}
	return result
}

// UpdateByFilter merges fields into the newest matching document, inserting
// filter+fields when upsert is set and nothing matches.
func (m *MemoryDocumentStore) UpdateByFilter(ctx context.Context, collection string, filter model.Filter, fields model.Partial, upsert bool) (UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.order[collection]
	for i := len(ids) - 1; i >= 0; i-- {
		doc, ok := m.docs[collection][ids[i]]
		if !ok || !matchesFilter(doc, filter) {
			continue
		}
		return m.updateLocked(collection, ids[i], fields), nil
	}

	if !upsert {
		return UpdateResult{}, nil
	}

	doc := make(model.Document, len(filter)+len(fields))
	for key, value := range filter {
		doc[key] = value
	}
	for key, value := range fields {
		doc[key] = value
	}
	id := uid.New()
	m.insertLocked(collection, id, doc)
	return UpdateResult{UpsertedID: id}, nil
}

// DeleteByID removes the document with the given id.
func (m *MemoryDocumentStore) DeleteByID(ctx context.Context, collection, id string) (DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[collection][id]; !ok {
		return DeleteResult{}, nil
	}
	delete(m.docs[collection], id)

	ids := m.order[collection]
	filtered := ids[:0]
	for _, existing := range ids {
		if existing != id {
			filtered = append(filtered, existing)
		}
	}
	m.order[collection] = filtered
	return DeleteResult{Deleted: 1}, nil
}

// DecrementField subtracts amount from an integer field under the write
// lock, failing instead of letting the value go negative.
func (m *MemoryDocumentStore) DecrementField(ctx context.Context, collection, id, field string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[collection][id]
	if !ok {
		return ErrNotFound
	}
	current, ok := model.Int64(doc[field])
	if !ok || current < amount {
		return ErrInsufficientStock
	}
	doc[field] = current - amount
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryDocumentStore) Close() error {
	return nil
}

func copyDocument(doc model.Document) model.Document {
	out := make(model.Document, len(doc))
	for key, value := range doc {
		out[key] = value
	}
	return out
}

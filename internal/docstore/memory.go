package docstore

import (
	"context"
	"sync"

	"mahotsav/backend/internal/xid"
)

// Memory is an in-process Gateway used by tests and by local development
// without a database. Documents are deep-copied on the way in and out.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	order       map[string][]string
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]map[string]any),
		order:       make(map[string][]string),
	}
}

func (m *Memory) Insert(ctx context.Context, collection string, doc any) (string, error) {
	fields, err := encodeDoc(doc)
	if err != nil {
		return "", err
	}
	id := xid.New(collection)
	fields["id"] = id

	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, fields)
	return id, nil
}

func (m *Memory) Get(ctx context.Context, collection, id string, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, ok := m.collections[collection]
	if !ok {
		return ErrNotFound
	}
	fields, ok := docs[id]
	if !ok {
		return ErrNotFound
	}
	return decodeDoc(fields, out)
}

func (m *Memory) List(ctx context.Context, collection string, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return decodeDocs(m.snapshot(collection, "", ""), out)
}

func (m *Memory) Query(ctx context.Context, collection, field string, value any, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return decodeDocs(m.snapshot(collection, field, normalize(value)), out)
}

func (m *Memory) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	merged, err := encodeDoc(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[collection]
	if !ok {
		return ErrNotFound
	}
	existing, ok := docs[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range merged {
		existing[k] = v
	}
	existing["id"] = id
	return nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, doc any) error {
	fields, err := encodeDoc(doc)
	if err != nil {
		return err
	}
	fields["id"] = id

	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, fields)
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[collection]
	if !ok {
		return ErrNotFound
	}
	if _, ok := docs[id]; !ok {
		return ErrNotFound
	}
	delete(docs, id)
	ids := m.order[collection]
	for i, existing := range ids {
		if existing == id {
			m.order[collection] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// put assumes the write lock is held.
func (m *Memory) put(collection, id string, fields map[string]any) {
	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]map[string]any)
		m.collections[collection] = docs
	}
	if _, exists := docs[id]; !exists {
		m.order[collection] = append(m.order[collection], id)
	}
	docs[id] = fields
}

// snapshot returns matching documents in insertion order. An empty field
// matches everything. Assumes at least the read lock is held.
func (m *Memory) snapshot(collection, field, want string) []map[string]any {
	docs := m.collections[collection]
	ids := m.order[collection]
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		fields, ok := docs[id]
		if !ok {
			continue
		}
		if field != "" && normalize(fields[field]) != want {
			continue
		}
		out = append(out, fields)
	}
	return out
}

// Package docstore is the document persistence boundary. Entities are stored
// as plain JSON documents in named collections; a Gateway implementation
// decides where those documents live (MongoDB, a Postgres JSONB table, or an
// in-process map for tests).
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names. The document layout under each matches the JSON encoding
// of the corresponding internal/domain entity.
const (
	CollectionExhibitions   = "exhibitions"
	CollectionRegistrations = "registrations"
	CollectionDailySales    = "dailySales"
	CollectionProducts      = "products"
	CollectionEvents        = "events"
	CollectionFoods         = "foods"
	CollectionFeedback      = "feedback"
	CollectionSettings      = "settings"
)

var ErrNotFound = errors.New("docstore: document not found")

// Gateway is the minimal document-store surface the repository layer needs:
// insert with assigned id, point reads, full-collection lists, single-field
// equality queries, partial updates, fixed-id upserts, and deletes.
type Gateway interface {
	Insert(ctx context.Context, collection string, doc any) (string, error)
	Get(ctx context.Context, collection, id string, out any) error
	List(ctx context.Context, collection string, out any) error
	Query(ctx context.Context, collection, field string, value any, out any) error
	UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error
	Set(ctx context.Context, collection, id string, doc any) error
	Delete(ctx context.Context, collection, id string) error
}

// encodeDoc flattens an entity into a field map through its JSON encoding, so
// every gateway persists the exact shape the HTTP layer serves.
func encodeDoc(doc any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode document: %w", err)
	}
	m := make(map[string]any)
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("docstore: encode document: %w", err)
	}
	return m, nil
}

func decodeDoc(m map[string]any, out any) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("docstore: decode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("docstore: decode document: %w", err)
	}
	return nil
}

func decodeDocs(ms []map[string]any, out any) error {
	raw, err := json.Marshal(ms)
	if err != nil {
		return fmt.Errorf("docstore: decode documents: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("docstore: decode documents: %w", err)
	}
	return nil
}

// normalize canonicalizes a query value through JSON so the memory gateway
// compares the same way the json-encoded stores do.
func normalize(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(raw)
}

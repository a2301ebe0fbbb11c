package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"mahotsav/backend/internal/xid"
)

// Postgres keeps every collection in one JSONB table keyed by
// (collection, id). The seq column preserves insertion order for lists.
type Postgres struct {
	db *sql.DB
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	seq        bigserial,
	collection text        NOT NULL,
	id         text        NOT NULL,
	doc        jsonb       NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_seq_idx ON documents (collection, seq);
`

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Postgres{db: db}, nil
}

func (g *Postgres) Close() error {
	return g.db.Close()
}

func (g *Postgres) Insert(ctx context.Context, collection string, doc any) (string, error) {
	fields, err := encodeDoc(doc)
	if err != nil {
		return "", err
	}
	id := xid.New(collection)
	fields["id"] = id

	raw, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, doc)
		VALUES ($1, $2, $3)
	`, collection, id, raw)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (g *Postgres) Get(ctx context.Context, collection, id string, out any) error {
	var raw []byte
	err := g.db.QueryRowContext(ctx, `
		SELECT doc
		FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(raw, out)
}

func (g *Postgres) List(ctx context.Context, collection string, out any) error {
	rows, err := g.db.QueryContext(ctx, `
		SELECT doc
		FROM documents
		WHERE collection = $1
		ORDER BY seq
	`, collection)
	if err != nil {
		return err
	}
	return scanDocs(rows, out)
}

func (g *Postgres) Query(ctx context.Context, collection, field string, value any, out any) error {
	want, err := json.Marshal(value)
	if err != nil {
		return err
	}
	rows, err := g.db.QueryContext(ctx, `
		SELECT doc
		FROM documents
		WHERE collection = $1 AND doc->$2 = $3::jsonb
		ORDER BY seq
	`, collection, field, want)
	if err != nil {
		return err
	}
	return scanDocs(rows, out)
}

func (g *Postgres) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	merged, err := encodeDoc(fields)
	if err != nil {
		return err
	}
	delete(merged, "id")
	raw, err := json.Marshal(merged)
	if err != nil {
		return err
	}

	res, err := g.db.ExecContext(ctx, `
		UPDATE documents
		SET doc = doc || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
	`, collection, id, raw)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Postgres) Set(ctx context.Context, collection, id string, doc any) error {
	fields, err := encodeDoc(doc)
	if err != nil {
		return err
	}
	fields["id"] = id
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	_, err = g.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, collection, id, raw)
	return err
}

func (g *Postgres) Delete(ctx context.Context, collection, id string) error {
	res, err := g.db.ExecContext(ctx, `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDocs(rows *sql.Rows, out any) error {
	defer rows.Close()

	docs := make([]json.RawMessage, 0, 32)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return err
		}
		docs = append(docs, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	combined, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return json.Unmarshal(combined, out)
}

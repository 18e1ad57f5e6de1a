package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"reflect"

	"toolforge-rest-api/internal/model"
	"toolforge-rest-api/pkg/uid"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLDocumentStore implements DocumentStore on a relational database,
// storing each document as a JSON row. Supports the "sqlite" and "mysql"
// drivers; filter matching is a collection scan, mirroring the unindexed
// query semantics of the document backend.
type SQLDocumentStore struct {
	db     *sql.DB
	driver string
}

// NewSQLDocumentStore opens the database and creates the documents table.
// driver is "sqlite" or "mysql"; dsn is driver-specific.
func NewSQLDocumentStore(driver, dsn string) (*SQLDocumentStore, error) {
	if driver == "sqlite" {
		// WAL mode for concurrent reads alongside the single writer.
		dsn = fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		db.SetMaxOpenConns(1) // SQLite only supports 1 writer
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}

	if err := createDocumentsTable(db, driver); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLDocumentStore] Initialized with driver: %s", driver)
	return &SQLDocumentStore{db: db, driver: driver}, nil
}

func createDocumentsTable(db *sql.DB, driver string) error {
	if driver == "mysql" {
		// The functional key keeps concurrent login upserts from creating
		// duplicate profiles; non-user rows index as NULL.
		_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			seq BIGINT PRIMARY KEY AUTO_INCREMENT,
			collection VARCHAR(32) NOT NULL,
			id VARCHAR(64) NOT NULL,
			doc JSON NOT NULL,
			UNIQUE KEY uniq_collection_id (collection, id),
			UNIQUE KEY uniq_users_email ((CASE WHEN collection = 'users'
				THEN CAST(doc->>'$.email' AS CHAR(191)) END))
		)`)
		return err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			doc TEXT NOT NULL,
			UNIQUE (collection, id)
		)`); err != nil {
		return err
	}
	_, err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_users_email
		ON documents (json_extract(doc, '$.email'))
		WHERE collection = 'users'`)
	return err
}

// List returns matching documents newest-first by insertion sequence.
func (s *SQLDocumentStore) List(ctx context.Context, collection string, filter model.Filter) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc FROM documents WHERE collection = ? ORDER BY seq DESC`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", collection, err)
		}
		doc, err := decodeRow(id, raw)
		if err != nil {
			return nil, err
		}
		if matchesFilter(doc, filter) {
			docs = append(docs, doc)
		}
	}
	return docs, rows.Err()
}

// Get returns the document with the given id.
func (s *SQLDocumentStore) Get(ctx context.Context, collection, id string) (model.Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return decodeRow(id, raw)
}

// Insert stores a new document under a generated id.
func (s *SQLDocumentStore) Insert(ctx context.Context, collection string, doc model.Document) (InsertResult, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return InsertResult{}, fmt.Errorf("failed to encode %s document: %w", collection, err)
	}

	id := uid.New()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?)`, collection, id, raw)
	if err != nil {
		return InsertResult{}, fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return InsertResult{ID: id}, nil
}

// UpdateByID merges fields into the document with the given id.
func (s *SQLDocumentStore) UpdateByID(ctx context.Context, collection, id string, fields model.Partial) (UpdateResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UpdateResult{}, err
	}
	defer tx.Rollback()

	var raw []byte
	err = tx.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return UpdateResult{}, nil
	}
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to read %s/%s: %w", collection, id, err)
	}

	merged, changed, err := mergeFields(raw, fields)
	if err != nil {
		return UpdateResult{}, err
	}
	result := UpdateResult{Matched: 1}
	if !changed {
		return result, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET doc = ? WHERE collection = ? AND id = ?`, merged, collection, id); err != nil {
		return UpdateResult{}, fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	result.Modified = 1
	return result, tx.Commit()
}

// UpdateByFilter merges fields into the newest matching document, inserting
// filter+fields as a new document when upsert is set and nothing matches.
func (s *SQLDocumentStore) UpdateByFilter(ctx context.Context, collection string, filter model.Filter, fields model.Partial, upsert bool) (UpdateResult, error) {
	docs, err := s.List(ctx, collection, filter)
	if err != nil {
		return UpdateResult{}, err
	}

	if len(docs) == 0 {
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
		inserted, insertErr := s.Insert(ctx, collection, doc)
		if insertErr == nil {
			return UpdateResult{UpsertedID: inserted.ID}, nil
		}

		// A concurrent upsert may have won the unique email index; update
		// the row that beat us instead of surfacing the violation.
		docs, err = s.List(ctx, collection, filter)
		if err != nil {
			return UpdateResult{}, err
		}
		if len(docs) == 0 {
			return UpdateResult{}, insertErr
		}
	}

	id := model.String(docs[0]["id"])
	return s.UpdateByID(ctx, collection, id, fields)
}

// DeleteByID removes the document with the given id.
func (s *SQLDocumentStore) DeleteByID(ctx context.Context, collection, id string) (DeleteResult, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{Deleted: deleted}, nil
}

// DecrementField subtracts amount from an integer JSON field in a single
// conditional UPDATE. Both drivers ship the JSON functions used here.
func (s *SQLDocumentStore) DecrementField(ctx context.Context, collection, id, field string, amount int64) error {
	path := "$." + field
	result, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET doc = JSON_SET(doc, ?, CAST(JSON_EXTRACT(doc, ?) AS SIGNED INTEGER) - ?)
		WHERE collection = ? AND id = ?
		  AND CAST(JSON_EXTRACT(doc, ?) AS SIGNED INTEGER) >= ?`,
		path, path, amount, collection, id, path, amount)
	if err != nil {
		return fmt.Errorf("failed to decrement %s/%s.%s: %w", collection, id, field, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var count int64
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check %s/%s: %w", collection, id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrInsufficientStock
}

// Close closes the database connection.
func (s *SQLDocumentStore) Close() error {
	return s.db.Close()
}

// decodeRow unmarshals a JSON row and attaches the public id field.
func decodeRow(id string, raw []byte) (model.Document, error) {
	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	doc["id"] = id
	return doc, nil
}

// mergeFields merges a partial update into a stored JSON document and
// reports whether anything actually changed.
func mergeFields(raw []byte, fields model.Partial) ([]byte, bool, error) {
	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to decode document: %w", err)
	}
	for key, value := range fields {
		doc[key] = value
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode document: %w", err)
	}

	// json.Marshal writes map keys in sorted order, so byte equality is a
	// reliable no-change check once both sides have round-tripped.
	var before model.Document
	if err := json.Unmarshal(raw, &before); err != nil {
		return nil, false, err
	}
	normalized, err := json.Marshal(before)
	if err != nil {
		return nil, false, err
	}
	return merged, !bytes.Equal(merged, normalized), nil
}

// matchesFilter applies equality semantics with loose numeric comparison,
// since JSON round-trips turn stored integers into float64.
func matchesFilter(doc model.Document, filter model.Filter) bool {
	for key, want := range filter {
		got, ok := doc[key]
		if !ok {
			return false
		}
		if !looseEqual(got, want) {
			return false
		}
	}
	return true
}

func looseEqual(a, b interface{}) bool {
	if na, ok := model.Float64(a); ok {
		if nb, ok := model.Float64(b); ok {
			return na == nb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

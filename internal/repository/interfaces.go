package repository

import (
	"context"
	"errors"

	"toolforge-rest-api/internal/model"
)

// Collection names used by the storefront.
const (
	ToolsCollection     = "tools"
	UsersCollection     = "users"
	PurchasedCollection = "purchased"
	ReviewsCollection   = "reviews"
)

var (
	// ErrNotFound is returned by Get/DecrementField when no document has
	// the given id.
	ErrNotFound = errors.New("document not found")

	// ErrInsufficientStock is returned by DecrementField when the stored
	// value is smaller than the requested amount.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsertResult carries the id generated for an inserted document.
type InsertResult struct {
	ID string `json:"insertedId"`
}

// UpdateResult distinguishes "no match" (Matched == 0) from "matched but
// nothing changed" (Matched > 0, Modified == 0).
type UpdateResult struct {
	Matched    int64  `json:"matchedCount"`
	Modified   int64  `json:"modifiedCount"`
	UpsertedID string `json:"upsertedId,omitempty"`
}

// DeleteResult carries the number of documents removed.
type DeleteResult struct {
	Deleted int64 `json:"deletedCount"`
}

// DocumentStore defines whole-document access to the storefront collections.
// Filters and partial updates are pre-validated field mappings; the store
// applies them verbatim with equality/merge semantics. No operation spans
// more than one collection.
type DocumentStore interface {
	// List returns every document matching the filter, newest-first by
	// insertion. A nil filter matches the whole collection.
	List(ctx context.Context, collection string, filter model.Filter) ([]model.Document, error)

	// Get returns the document with the given id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (model.Document, error)

	// Insert stores a new document and returns its generated id.
	Insert(ctx context.Context, collection string, doc model.Document) (InsertResult, error)

	// UpdateByID merges fields into the document with the given id.
	UpdateByID(ctx context.Context, collection, id string, fields model.Partial) (UpdateResult, error)

	// UpdateByFilter merges fields into the first document matching the
	// filter, inserting filter+fields as a new document when upsert is set
	// and nothing matches.
	UpdateByFilter(ctx context.Context, collection string, filter model.Filter, fields model.Partial, upsert bool) (UpdateResult, error)

	// DeleteByID removes the document with the given id.
	DeleteByID(ctx context.Context, collection, id string) (DeleteResult, error)

	// DecrementField atomically subtracts amount from an integer field,
	// failing with ErrInsufficientStock when the stored value is smaller
	// than amount. The store owns this consistency check; callers must not
	// read-modify-write quantities.
	DecrementField(ctx context.Context, collection, id, field string, amount int64) error

	// Close closes the store connection.
	Close() error
}

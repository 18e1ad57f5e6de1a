package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"toolforge-rest-api/internal/model"
)

func newSQLiteStore(t *testing.T) *SQLDocumentStore {
	t.Helper()
	store, err := NewSQLDocumentStore("sqlite", filepath.Join(t.TempDir(), "storefront.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteInsertGetUpdateDelete(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	inserted, err := store.Insert(ctx, ToolsCollection, model.Document{
		"name": "drill", "price": 99.5, "quantity": 10,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	doc, err := store.Get(ctx, ToolsCollection, inserted.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc["name"] != "drill" {
		t.Fatalf("expected name drill, got %v", doc["name"])
	}

	result, err := store.UpdateByID(ctx, ToolsCollection, inserted.ID, model.Partial{"price": 80})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if result.Matched != 1 || result.Modified != 1 {
		t.Fatalf("expected matched=1 modified=1, got %+v", result)
	}

	result, err = store.UpdateByID(ctx, ToolsCollection, inserted.ID, model.Partial{"price": 80})
	if err != nil {
		t.Fatalf("repeat update: %v", err)
	}
	if result.Matched != 1 || result.Modified != 0 {
		t.Fatalf("expected matched=1 modified=0 on no-op patch, got %+v", result)
	}

	doc, err = store.Get(ctx, ToolsCollection, inserted.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if price, _ := model.Float64(doc["price"]); price != 80 {
		t.Fatalf("expected price 80, got %v", doc["price"])
	}
	if doc["name"] != "drill" {
		t.Fatalf("expected untouched name, got %v", doc["name"])
	}

	deleted, err := store.DeleteByID(ctx, ToolsCollection, inserted.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.Deleted != 1 {
		t.Fatalf("expected deleted=1, got %+v", deleted)
	}
	if _, err := store.Get(ctx, ToolsCollection, inserted.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteListNewestFirst(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	for _, content := range []string{"R1", "R2", "R3"} {
		if _, err := store.Insert(ctx, ReviewsCollection, model.Document{"content": content}); err != nil {
			t.Fatalf("insert %s: %v", content, err)
		}
	}

	docs, err := store.List(ctx, ReviewsCollection, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(docs))
	}
	for i, want := range []string{"R3", "R2", "R1"} {
		if docs[i]["content"] != want {
			t.Fatalf("position %d: expected %s, got %v", i, want, docs[i]["content"])
		}
	}
}

func TestSQLiteUpsertByEmail(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	filter := model.Filter{"email": "a@x.com"}

	result, err := store.UpdateByFilter(ctx, UsersCollection, filter, model.Partial{"role": "admin"}, true)
	if err != nil {
		t.Fatalf("upsert insert: %v", err)
	}
	if result.UpsertedID == "" {
		t.Fatalf("expected upserted id, got %+v", result)
	}

	result, err = store.UpdateByFilter(ctx, UsersCollection, filter, model.Partial{"name": "Ada"}, true)
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if result.Matched != 1 || result.UpsertedID != "" {
		t.Fatalf("expected in-place update, got %+v", result)
	}

	docs, err := store.List(ctx, UsersCollection, filter)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 || docs[0]["role"] != "admin" || docs[0]["name"] != "Ada" {
		t.Fatalf("unexpected profiles: %v", docs)
	}
}

func TestSQLiteUniqueEmailPerProfile(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	if _, err := store.Insert(ctx, UsersCollection, model.Document{"email": "a@x.com"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.Insert(ctx, UsersCollection, model.Document{"email": "a@x.com"}); err == nil {
		t.Fatalf("expected second profile with the same email to be rejected")
	}

	// The constraint binds profiles only; repeating emails elsewhere is fine.
	for i := 0; i < 2; i++ {
		if _, err := store.Insert(ctx, ReviewsCollection, model.Document{"email": "a@x.com"}); err != nil {
			t.Fatalf("insert review %d: %v", i, err)
		}
	}
}

func TestSQLiteConcurrentUpsertsSingleProfile(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	filter := model.Filter{"email": "a@x.com"}

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.UpdateByFilter(ctx, UsersCollection, filter,
				model.Partial{"role": "user"}, true)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	docs, err := store.List(ctx, UsersCollection, filter)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected a single profile after concurrent upserts, got %d", len(docs))
	}
}

func TestSQLiteConditionalDecrement(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	inserted, err := store.Insert(ctx, ToolsCollection, model.Document{"quantity": 5})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := store.DecrementField(ctx, ToolsCollection, inserted.ID, "quantity", 3); err != nil {
		t.Fatalf("decrement: %v", err)
	}

	doc, err := store.Get(ctx, ToolsCollection, inserted.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if quantity, _ := model.Int64(doc["quantity"]); quantity != 2 {
		t.Fatalf("expected quantity 2, got %v", doc["quantity"])
	}

	err = store.DecrementField(ctx, ToolsCollection, inserted.ID, "quantity", 3)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	err = store.DecrementField(ctx, ToolsCollection, "missing", "quantity", 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

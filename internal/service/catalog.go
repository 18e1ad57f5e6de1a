package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"toolforge-rest-api/internal/cache"
	"toolforge-rest-api/internal/model"
	"toolforge-rest-api/internal/repository"

	"toolforge-rest-api/pkg/apierror"
)

// catalogCacheKey holds the serialized full-catalog listing, the only read
// hot enough to cache.
const catalogCacheKey = "tools:all"

// CatalogService handles catalog reads and admin mutations. Every mutation
// invalidates the listing cache, including the checkout decrement.
type CatalogService struct {
	store    repository.DocumentStore
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewCatalogService creates a catalog service. cache may be nil to disable
// listing caching.
func NewCatalogService(store repository.DocumentStore, c cache.Cache, cacheTTL time.Duration) *CatalogService {
	if store == nil {
		return nil
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &CatalogService{
		store:    store,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// List returns the whole catalog, newest-first.
func (s *CatalogService) List(ctx context.Context) ([]model.Document, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, catalogCacheKey); err == nil {
			var docs []model.Document
			if err := json.Unmarshal(raw, &docs); err == nil {
				return docs, nil
			}
		}
	}

	docs, err := s.store.List(ctx, repository.ToolsCollection, nil)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(docs); err == nil {
			if err := s.cache.Set(ctx, catalogCacheKey, raw, s.cacheTTL); err != nil {
				log.Printf("[CatalogService] Warning: cache set failed: %v", err)
			}
		}
	}
	return docs, nil
}

// Get returns a single catalog item.
func (s *CatalogService) Get(ctx context.Context, id string) (model.Document, error) {
	return s.store.Get(ctx, repository.ToolsCollection, id)
}

// Add inserts a new catalog item.
func (s *CatalogService) Add(ctx context.Context, item model.CatalogItem) (repository.InsertResult, error) {
	item.CreatedAt = time.Now().UTC()
	result, err := s.store.Insert(ctx, repository.ToolsCollection, item.Document())
	if err != nil {
		return repository.InsertResult{}, err
	}
	s.invalidate(ctx)
	return result, nil
}

// Update patches an item with whitelisted fields.
func (s *CatalogService) Update(ctx context.Context, id string, fields model.Partial) (repository.UpdateResult, error) {
	if err := checkFields(fields, model.CatalogItemFields); err != nil {
		return repository.UpdateResult{}, err
	}
	if len(fields) == 0 {
		return repository.UpdateResult{}, apierror.BadRequest("no fields to update")
	}
	result, err := s.store.UpdateByID(ctx, repository.ToolsCollection, id, fields)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	s.invalidate(ctx)
	return result, nil
}

// Delete removes an item.
func (s *CatalogService) Delete(ctx context.Context, id string) (repository.DeleteResult, error) {
	result, err := s.store.DeleteByID(ctx, repository.ToolsCollection, id)
	if err != nil {
		return repository.DeleteResult{}, err
	}
	s.invalidate(ctx)
	return result, nil
}

// Invalidate drops the cached listing. Exposed for the purchase flow, whose
// quantity decrement changes listing contents.
func (s *CatalogService) Invalidate(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, catalogCacheKey); err != nil {
		log.Printf("[CatalogService] Warning: cache invalidation failed: %v", err)
	}
}

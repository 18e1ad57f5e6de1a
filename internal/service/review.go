package service

import (
	"context"
	"time"

	"toolforge-rest-api/internal/model"
	"toolforge-rest-api/internal/repository"

	"toolforge-rest-api/pkg/apierror"
)

// ReviewService handles review creation and the newest-first read path.
// Reviews are immutable after creation.
type ReviewService struct {
	store repository.DocumentStore
}

// NewReviewService creates a new review service.
func NewReviewService(store repository.DocumentStore) *ReviewService {
	if store == nil {
		return nil
	}
	return &ReviewService{store: store}
}

// Add inserts a review with a server-assigned creation time.
func (s *ReviewService) Add(ctx context.Context, review model.Review) (repository.InsertResult, error) {
	if review.Content == "" {
		return repository.InsertResult{}, apierror.BadRequest("content is required")
	}
	review.CreatedAt = time.Now().UTC()
	return s.store.Insert(ctx, repository.ReviewsCollection, review.Document())
}

// List returns all reviews, newest-first.
func (s *ReviewService) List(ctx context.Context) ([]model.Document, error) {
	return s.store.List(ctx, repository.ReviewsCollection, nil)
}

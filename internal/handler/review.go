package handler

import (
	"encoding/json"
	"net/http"

	"toolforge-rest-api/internal/model"
	"toolforge-rest-api/internal/service"
	"toolforge-rest-api/pkg/apierror"
	"toolforge-rest-api/pkg/response"
)

// ReviewHandler handles review HTTP requests.
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// AddReviewRequest represents the request body for posting a review.
type AddReviewRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Rating  int64  `json:"rating"`
}

// AddReview handles POST /review
func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req AddReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	result, err := h.reviews.Add(r.Context(), model.Review{
		Email:   subject(r),
		Name:    req.Name,
		Content: req.Content,
		Rating:  req.Rating,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, result)
}

// ListReviews handles GET /review
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	docs, err := h.reviews.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, docs)
}

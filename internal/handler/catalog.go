package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"toolforge-rest-api/internal/model"
	"toolforge-rest-api/internal/repository"
	"toolforge-rest-api/internal/service"
	"toolforge-rest-api/pkg/apierror"
	"toolforge-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CatalogHandler handles catalog HTTP requests.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GetTools handles GET /getTools and GET /adminGetTools
func (h *CatalogHandler) GetTools(w http.ResponseWriter, r *http.Request) {
	docs, err := h.catalog.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, docs)
}

// GetTool handles GET /getTool/{id}
func (h *CatalogHandler) GetTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.catalog.Get(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		response.Error(w, apierror.NotFound("tool not found"))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, doc)
}

// AddToolRequest represents the request body for adding a catalog item.
type AddToolRequest struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Image            string  `json:"image"`
	Price            float64 `json:"price"`
	Quantity         int64   `json:"quantity"`
	MinOrderQuantity int64   `json:"minOrderQuantity"`
}

// AddTool handles POST /addTool
func (h *CatalogHandler) AddTool(w http.ResponseWriter, r *http.Request) {
	var req AddToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Name == "" {
		response.Error(w, apierror.BadRequest("name is required"))
		return
	}
	if req.Price < 0 || req.Quantity < 0 || req.MinOrderQuantity < 0 {
		response.Error(w, apierror.BadRequest("price and quantities must be non-negative"))
		return
	}

	result, err := h.catalog.Add(r.Context(), model.CatalogItem{
		Name:             req.Name,
		Description:      req.Description,
		Image:            req.Image,
		Price:            req.Price,
		Quantity:         req.Quantity,
		MinOrderQuantity: req.MinOrderQuantity,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, result)
}

// UpdateTool handles PATCH /updateTool/{id}
func (h *CatalogHandler) UpdateTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields model.Partial
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	result, err := h.catalog.Update(r.Context(), id, fields)
	if err != nil {
		response.Error(w, err)
		return
	}
	if result.Matched == 0 {
		response.Error(w, apierror.NotFound("tool not found"))
		return
	}
	response.OK(w, result)
}

// DeleteTool handles DELETE /deleteTool/{id}
func (h *CatalogHandler) DeleteTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.catalog.Delete(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	if result.Deleted == 0 {
		response.Error(w, apierror.NotFound("tool not found"))
		return
	}
	response.OK(w, result)
}

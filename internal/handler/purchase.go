package handler

import (
	"encoding/json"
	"net/http"

	"toolforge-rest-api/internal/model"
	"toolforge-rest-api/internal/repository"
	"toolforge-rest-api/internal/service"
	"toolforge-rest-api/pkg/apierror"
	"toolforge-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// PurchaseHandler handles purchase-order HTTP requests.
type PurchaseHandler struct {
	purchases *service.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(purchases *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// CheckoutRequest represents the request body for a checkout.
type CheckoutRequest struct {
	ToolID    string  `json:"toolId"`
	ToolName  string  `json:"toolName"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Email     string  `json:"email"`
}

// CheckoutResponse carries the insert result and the recorded order.
type CheckoutResponse struct {
	Result repository.InsertResult `json:"result"`
	Order  model.PurchaseOrder     `json:"order"`
}

// Checkout handles POST /purchased
func (h *PurchaseHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	// The buyer is the token subject; a body email naming someone else is
	// rejected rather than silently trusted.
	buyer := subject(r)
	if req.Email == "" {
		req.Email = buyer
	} else if req.Email != buyer {
		response.Error(w, apierror.Forbidden("cannot purchase on behalf of another user"))
		return
	}

	result, order, err := h.purchases.Checkout(r.Context(), model.PurchaseOrder{
		ToolID:    req.ToolID,
		ToolName:  req.ToolName,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Email:     req.Email,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, CheckoutResponse{Result: result, Order: order})
}

// ListOwn handles GET /purchased
func (h *PurchaseHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	// Scope the listing to the token subject's own orders.
	buyer := subject(r)
	if email, ok := filter["email"]; ok && model.String(email) != buyer {
		response.Error(w, apierror.Forbidden("cannot list another user's orders"))
		return
	}
	filter["email"] = buyer

	docs, err := h.purchases.List(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, docs)
}

// AdminList handles GET /adminPurchased
func (h *PurchaseHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.purchases.List(r.Context(), filterFromQuery(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, docs)
}

// PaymentPatchRequest represents the client-reported payment completion.
type PaymentPatchRequest struct {
	TransactionID string `json:"transactionId"`
	Delivery      string `json:"delivery"`
}

// RecordPayment handles PATCH /purchasedSingle/{id}
func (h *PurchaseHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PaymentPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	result, err := h.purchases.RecordPayment(r.Context(), id, req.TransactionID, req.Delivery)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, result)
}

// DeliveryPatchRequest represents a delivery-status-only patch.
type DeliveryPatchRequest struct {
	Delivery string `json:"delivery"`
}

// ConfirmDelivery handles PATCH /deliverConfirm/{id}
func (h *PurchaseHandler) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DeliveryPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	result, err := h.purchases.SetDelivery(r.Context(), id, req.Delivery)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, result)
}

// Delete handles DELETE /purchasedSingle/{id}
func (h *PurchaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.purchases.Delete(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	if result.Deleted == 0 {
		response.Error(w, apierror.NotFound("order not found"))
		return
	}
	response.OK(w, result)
}

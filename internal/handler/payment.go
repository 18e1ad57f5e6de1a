package handler

import (
	"encoding/json"
	"log"
	"math"
	"net/http"

	"toolforge-rest-api/internal/payment"
	"toolforge-rest-api/pkg/apierror"
	"toolforge-rest-api/pkg/response"
)

// PaymentHandler handles payment-intent HTTP requests.
type PaymentHandler struct {
	intents payment.IntentCreator
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(intents payment.IntentCreator) *PaymentHandler {
	return &PaymentHandler{intents: intents}
}

// PaymentIntentRequest represents the request body for a payment intent.
type PaymentIntentRequest struct {
	Price float64 `json:"price"`
}

// PaymentIntentResponse carries the client secret used to complete payment
// out-of-band.
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CreatePaymentIntent handles POST /create-payment-intent
func (h *PaymentHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req PaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Price <= 0 || math.IsNaN(req.Price) || math.IsInf(req.Price, 0) {
		response.Error(w, apierror.BadRequest("price must be a positive number"))
		return
	}

	clientSecret, err := h.intents.CreateIntent(r.Context(), req.Price)
	if err != nil {
		log.Printf("[PaymentHandler] create intent failed: %v", err)
		response.Error(w, apierror.UpstreamPayment(""))
		return
	}

	response.OK(w, PaymentIntentResponse{ClientSecret: clientSecret})
}

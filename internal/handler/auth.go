package handler

import (
	"encoding/json"
	"net/http"

	"toolforge-rest-api/internal/service"
	"toolforge-rest-api/pkg/apierror"
	"toolforge-rest-api/pkg/response"
)

// AuthHandler handles token issuance.
type AuthHandler struct {
	tokens *service.TokenService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// TokenRequest represents the request body for token issuance.
type TokenRequest struct {
	Email string `json:"email"`
}

// TokenResponse represents the response for token issuance.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// GetToken handles POST /getToken
func (h *AuthHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Email == "" {
		response.Error(w, apierror.BadRequest("email is required"))
		return
	}

	token, err := h.tokens.Issue(req.Email)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to issue token"))
		return
	}

	response.OK(w, TokenResponse{AccessToken: token})
}

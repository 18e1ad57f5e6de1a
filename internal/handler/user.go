package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"toolforge-rest-api/internal/middleware"
	"toolforge-rest-api/internal/model"
	"toolforge-rest-api/internal/repository"
	"toolforge-rest-api/internal/service"
	"toolforge-rest-api/pkg/apierror"
	"toolforge-rest-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// UserHandler handles profile and role-lookup HTTP requests.
type UserHandler struct {
	users  *service.UserService
	tokens *service.TokenService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *service.UserService, tokens *service.TokenService) *UserHandler {
	return &UserHandler{
		users:  users,
		tokens: tokens,
	}
}

// UpsertResponse carries the upsert result alongside a fresh token, so
// login and signup are a single round trip.
type UpsertResponse struct {
	Result repository.UpdateResult `json:"result"`
	Token  string                  `json:"token"`
}

// UpsertUser handles PATCH /user/{email}
func (h *UserHandler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		response.Error(w, apierror.BadRequest("email is required"))
		return
	}

	var fields model.Partial
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	result, err := h.users.UpsertProfile(r.Context(), email, fields)
	if err != nil {
		response.Error(w, err)
		return
	}

	token, err := h.tokens.Issue(email)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to issue token"))
		return
	}

	response.OK(w, UpsertResponse{Result: result, Token: token})
}

// GetUser handles GET /user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	if len(filter) == 0 {
		response.Error(w, apierror.BadRequest("query filter is required"))
		return
	}

	doc, err := h.users.FindOne(r.Context(), filter)
	if errors.Is(err, repository.ErrNotFound) {
		response.Error(w, apierror.NotFound("user not found"))
		return
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, doc)
}

// UpdateProfile handles PATCH /profile/{id}
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields model.Partial
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	result, err := h.users.UpdateProfile(r.Context(), id, fields)
	if err != nil {
		response.Error(w, err)
		return
	}
	if result.Matched == 0 {
		response.Error(w, apierror.NotFound("profile not found"))
		return
	}

	response.OK(w, result)
}

// AdminStatus is the response body of the role lookup.
type AdminStatus struct {
	Admin bool `json:"admin"`
}

// IsAdmin handles GET /admin/{email}
func (h *UserHandler) IsAdmin(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		response.Error(w, apierror.BadRequest("email is required"))
		return
	}

	profile, found, err := h.users.Role(r.Context(), email)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, AdminStatus{Admin: found && profile.IsAdmin()})
}

// ListUsers handles GET /allUsers
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	docs, err := h.users.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, docs)
}

// filterFromQuery turns query parameters into an equality filter, taking
// the first value of each key.
func filterFromQuery(r *http.Request) model.Filter {
	filter := model.Filter{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			filter[key] = values[0]
		}
	}
	return filter
}

// subject returns the verified token subject for the request.
func subject(r *http.Request) string {
	return middleware.SubjectFromContext(r.Context())
}

package service

import (
	"context"
	"fmt"

	"toolforge-rest-api/internal/model"
	"toolforge-rest-api/internal/repository"

	"toolforge-rest-api/pkg/apierror"
)

// UserService handles profile upserts, lookups, and role resolution.
type UserService struct {
	store repository.DocumentStore
}

// NewUserService creates a new user service.
func NewUserService(store repository.DocumentStore) *UserService {
	if store == nil {
		return nil
	}
	return &UserService{store: store}
}

// UpsertProfile creates or replaces the profile keyed by email. This is the
// single upsert in the system (login/signup).
func (s *UserService) UpsertProfile(ctx context.Context, email string, fields model.Partial) (repository.UpdateResult, error) {
	if email == "" {
		return repository.UpdateResult{}, apierror.BadRequest("email is required")
	}
	if err := checkFields(fields, model.UserProfileFields); err != nil {
		return repository.UpdateResult{}, err
	}

	// Email is the natural key; never let the body overwrite it.
	delete(fields, "email")
	if len(fields) == 0 {
		// MongoDB rejects an empty $set; restating the key is a no-op merge.
		fields = model.Partial{"email": email}
	}

	return s.store.UpdateByFilter(ctx, repository.UsersCollection,
		model.Filter{"email": email}, fields, true)
}

// UpdateProfile patches an existing profile by id.
func (s *UserService) UpdateProfile(ctx context.Context, id string, fields model.Partial) (repository.UpdateResult, error) {
	if err := checkFields(fields, model.UserProfileFields); err != nil {
		return repository.UpdateResult{}, err
	}
	delete(fields, "email")
	delete(fields, "role")
	if len(fields) == 0 {
		return repository.UpdateResult{}, apierror.BadRequest("no fields to update")
	}
	return s.store.UpdateByID(ctx, repository.UsersCollection, id, fields)
}

// FindOne returns the first profile matching the filter.
func (s *UserService) FindOne(ctx context.Context, filter model.Filter) (model.Document, error) {
	if err := checkFields(filter, model.UserProfileFields); err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, repository.UsersCollection, filter)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, repository.ErrNotFound
	}
	return docs[0], nil
}

// Role looks up the profile for an email. The boolean distinguishes an
// absent profile from one with a non-privileged role, so the authorization
// gate can fail closed instead of dereferencing a missing record.
func (s *UserService) Role(ctx context.Context, email string) (model.UserProfile, bool, error) {
	docs, err := s.store.List(ctx, repository.UsersCollection, model.Filter{"email": email})
	if err != nil {
		return model.UserProfile{}, false, err
	}
	if len(docs) == 0 {
		return model.UserProfile{}, false, nil
	}
	return model.ProfileFromDocument(docs[0]), true, nil
}

// List returns every profile, newest-first.
func (s *UserService) List(ctx context.Context) ([]model.Document, error) {
	return s.store.List(ctx, repository.UsersCollection, nil)
}

// checkFields rejects field names outside the entity schema.
func checkFields(fields model.Partial, allowed map[string]bool) error {
	unknown := model.UnknownFields(fields, allowed)
	if len(unknown) == 0 {
		return nil
	}
	details := make([]apierror.FieldError, 0, len(unknown))
	for _, name := range unknown {
		details = append(details, apierror.FieldError{
			Field:   name,
			Message: fmt.Sprintf("field %q is not part of the schema", name),
		})
	}
	return apierror.ValidationError("unknown fields").WithDetails(details...)
}

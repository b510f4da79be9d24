package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
)

// UserRepository wraps the /users endpoints.
type UserRepository struct {
	api *APIClient
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(api *APIClient) *UserRepository {
	return &UserRepository{api: api}
}

// Me returns the authenticated user.
func (r *UserRepository) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := r.api.Get(ctx, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.api.Get(ctx, fmt.Sprintf("/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe applies a profile update to the authenticated user.
func (r *UserRepository) UpdateMe(ctx context.Context, update dto.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := r.api.Put(ctx, "/users/me", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

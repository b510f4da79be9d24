package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
)

// AuthRepository wraps the /auth endpoints.
type AuthRepository struct {
	api *APIClient
}

// NewAuthRepository constructs an auth repository.
func NewAuthRepository(api *APIClient) *AuthRepository {
	return &AuthRepository{api: api}
}

// Login exchanges credentials for an access token.
func (r *AuthRepository) Login(ctx context.Context, req dto.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := r.api.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. The backend answers either with a full auth
// response or with the bare user; in the latter case AccessToken is empty and
// the caller has to log in.
func (r *AuthRepository) Register(ctx context.Context, req dto.RegisterRequest) (*models.AuthResponse, error) {
	var raw json.RawMessage
	if err := r.api.Post(ctx, "/auth/register", req, &raw); err != nil {
		return nil, err
	}

	var resp models.AuthResponse
	if err := json.Unmarshal(raw, &resp); err == nil && resp.AccessToken != "" {
		return &resp, nil
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode register response: %w", err)
	}
	return &models.AuthResponse{User: user}, nil
}

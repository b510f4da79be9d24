package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/circleed-client/internal/models"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

// Keys persisted in the token store.
const (
	KeyAccessToken = "access_token"
	KeyUser        = "user"
)

// KeyValueStore persists string values by key. Get returns
// errors.ErrStoreMiss for absent keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// TokenRepository persists the access token and the logged-in user snapshot.
type TokenRepository struct {
	store KeyValueStore
}

// NewTokenRepository wraps store.
func NewTokenRepository(store KeyValueStore) *TokenRepository {
	return &TokenRepository{store: store}
}

// AccessToken returns the stored bearer token.
func (r *TokenRepository) AccessToken(ctx context.Context) (string, error) {
	token, err := r.store.Get(ctx, KeyAccessToken)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", appErrors.ErrStoreMiss
	}
	return token, nil
}

// SaveSession stores the token and user returned by login or register.
func (r *TokenRepository) SaveSession(ctx context.Context, auth models.AuthResponse) error {
	if err := r.store.Set(ctx, KeyAccessToken, auth.AccessToken); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	return r.SaveUser(ctx, auth.User)
}

// SaveUser replaces the cached user snapshot.
func (r *TokenRepository) SaveUser(ctx context.Context, user models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := r.store.Set(ctx, KeyUser, string(payload)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// CachedUser returns the user snapshot saved at login. A missing or
// unreadable snapshot yields errors.ErrNotAuthenticated.
func (r *TokenRepository) CachedUser(ctx context.Context) (*models.User, error) {
	raw, err := r.store.Get(ctx, KeyUser)
	if err != nil {
		if errors.Is(err, appErrors.ErrStoreMiss) {
			return nil, appErrors.ErrNotAuthenticated
		}
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == 0 {
		return nil, appErrors.ErrNotAuthenticated
	}
	return &user, nil
}

// Clear forgets the token and user.
func (r *TokenRepository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, KeyAccessToken, KeyUser)
}

// Close releases the underlying store.
func (r *TokenRepository) Close() error {
	return r.store.Close()
}

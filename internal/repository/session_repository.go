package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
)

// SessionRepository wraps the /sessions endpoints.
type SessionRepository struct {
	api *APIClient
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(api *APIClient) *SessionRepository {
	return &SessionRepository{api: api}
}

// List returns every session where the current user is student or teacher.
func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := r.api.Get(ctx, "/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Upcoming returns the backend's upcoming sessions for the current user.
func (r *SessionRepository) Upcoming(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := r.api.Get(ctx, "/sessions/upcoming", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Book requests a new session; the backend debits the student's tokens.
func (r *SessionRepository) Book(ctx context.Context, req dto.BookSessionRequest) (*models.Session, error) {
	var session models.Session
	if err := r.api.Post(ctx, "/sessions", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Transition posts a lifecycle action (confirm, decline, cancel, complete).
func (r *SessionRepository) Transition(ctx context.Context, id int64, action models.SessionAction) (*models.Session, error) {
	var session models.Session
	if err := r.api.Post(ctx, fmt.Sprintf("/sessions/%d/%s", id, action), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
)

// ChatRepository wraps the /chats endpoints.
type ChatRepository struct {
	api *APIClient
}

// NewChatRepository constructs a chat repository.
func NewChatRepository(api *APIClient) *ChatRepository {
	return &ChatRepository{api: api}
}

// List returns the current user's conversations.
func (r *ChatRepository) List(ctx context.Context) ([]models.Chat, error) {
	var chats []models.Chat
	if err := r.api.Get(ctx, "/chats", nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// Messages returns the messages of a conversation.
func (r *ChatRepository) Messages(ctx context.Context, chatID int64) ([]models.Message, error) {
	var messages []models.Message
	if err := r.api.Get(ctx, fmt.Sprintf("/chats/%d/messages", chatID), nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Send posts a message to a conversation.
func (r *ChatRepository) Send(ctx context.Context, chatID int64, content string) (*models.Message, error) {
	var message models.Message
	if err := r.api.Post(ctx, fmt.Sprintf("/chats/%d/messages", chatID), dto.SendMessageRequest{Content: content}, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// GetOrCreate returns the conversation with userID, creating it if needed.
func (r *ChatRepository) GetOrCreate(ctx context.Context, userID int64) (*models.Chat, error) {
	var chat models.Chat
	if err := r.api.Post(ctx, "/chats", dto.GetOrCreateChatRequest{UserID: userID}, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

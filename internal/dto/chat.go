package dto

import (
	"time"

	"github.com/noah-isme/circleed-client/internal/models"
)

// ChatView is a conversation row for the chat sidebar.
type ChatView struct {
	ID                  int64     `json:"id"`
	ParticipantID       int64     `json:"participant_id,omitempty"`
	ParticipantName     string    `json:"participant_name"`
	ParticipantAvatar   string    `json:"participant_avatar,omitempty"`
	ParticipantIsActive bool      `json:"participant_is_active"`
	LastMessage         string    `json:"last_message"`
	LastMessageTime     time.Time `json:"last_message_time"`
	UnreadCount         int       `json:"unread_count"`
}

// ChatsState is the chat sidebar plus the selected conversation.
type ChatsState struct {
	Chats    []ChatView `json:"chats"`
	Selected int64      `json:"selected"`
}

// SendMessageRequest is the body of POST /chats/{id}/messages.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// GetOrCreateChatRequest is the body of POST /chats.
type GetOrCreateChatRequest struct {
	UserID int64 `json:"user_id" validate:"required"`
}

// MessagesState holds one conversation's messages.
type MessagesState struct {
	ChatID   int64            `json:"chat_id"`
	Messages []models.Message `json:"messages"`
}

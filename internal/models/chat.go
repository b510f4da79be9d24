package models

// Chat is a one-to-one conversation.
type Chat struct {
	ID                  int64     `json:"id"`
	User1ID             int64     `json:"user1_id"`
	User2ID             int64     `json:"user2_id"`
	LastMessage         string    `json:"last_message,omitempty"`
	LastMessageTime     Timestamp `json:"last_message_time"`
	UnreadCount         int       `json:"unread_count"`
	ParticipantID       int64     `json:"participant_id,omitempty"`
	ParticipantName     string    `json:"participant_name,omitempty"`
	ParticipantAvatar   string    `json:"participant_avatar,omitempty"`
	ParticipantIsActive bool      `json:"participant_is_active"`
}

// Counterpart returns the id of the participant that is not userID.
func (c Chat) Counterpart(userID int64) int64 {
	if c.ParticipantID != 0 {
		return c.ParticipantID
	}
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// Message is a chat message. Pending marks an optimistic local insert that
// the backend has not confirmed yet.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
	IsRead    bool      `json:"is_read"`
	Pending   bool      `json:"pending,omitempty"`
}

package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/events"
	"github.com/noah-isme/circleed-client/internal/models"
	"github.com/noah-isme/circleed-client/internal/state"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

type chatRepository interface {
	List(ctx context.Context) ([]models.Chat, error)
	Messages(ctx context.Context, chatID int64) ([]models.Message, error)
	Send(ctx context.Context, chatID int64, content string) (*models.Message, error)
	GetOrCreate(ctx context.Context, userID int64) (*models.Chat, error)
}

// ChatService lists conversations and sends messages with optimistic inserts.
type ChatService struct {
	chats  chatRepository
	viewer viewerSource
	bus    *events.Bus
	store  *state.Store
	logger *zap.Logger
	now    func() time.Time

	tempID  atomic.Int64
	mu      sync.Mutex
	sending map[int64]struct{}
}

// NewChatService wires a ChatService.
func NewChatService(chats chatRepository, viewer viewerSource, bus *events.Bus, store *state.Store, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		chats:   chats,
		viewer:  viewer,
		bus:     bus,
		store:   store,
		logger:  logger,
		now:     time.Now,
		sending: make(map[int64]struct{}),
	}
}

// Chats loads the conversation list and selects requested, or the first
// conversation when requested is 0.
func (s *ChatService) Chats(ctx context.Context, requested int64) (*dto.ChatsState, error) {
	seq := s.store.Begin(state.KeyChats)
	chats, err := s.chats.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.ChatsState{Chats: make([]dto.ChatView, 0, len(chats)), Selected: requested}
	for _, chat := range chats {
		result.Chats = append(result.Chats, chatView(chat))
	}
	if result.Selected == 0 && len(result.Chats) > 0 {
		result.Selected = result.Chats[0].ID
	}
	s.store.Commit(state.KeyChats, seq, result)
	return result, nil
}

func chatView(chat models.Chat) dto.ChatView {
	name := chat.ParticipantName
	if name == "" {
		name = chatPlaceholder(chat.ID)
	}
	return dto.ChatView{
		ID:                  chat.ID,
		ParticipantID:       chat.ParticipantID,
		ParticipantName:     name,
		ParticipantAvatar:   chat.ParticipantAvatar,
		ParticipantIsActive: chat.ParticipantIsActive,
		LastMessage:         chat.LastMessage,
		LastMessageTime:     chat.LastMessageTime.Time,
		UnreadCount:         chat.UnreadCount,
	}
}

// Messages loads one conversation.
func (s *ChatService) Messages(ctx context.Context, chatID int64) ([]models.Message, error) {
	key := state.MessagesKey(chatID)
	seq := s.store.Begin(key)
	messages, err := s.chats.Messages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	if !s.store.Commit(key, seq, &dto.MessagesState{ChatID: chatID, Messages: messages}) {
		if latest, err := state.Get[*dto.MessagesState](s.store, key); err == nil {
			return latest.Messages, nil
		}
	}
	return messages, nil
}

// Send posts content to chatID. The message shows up locally at once with a
// negative temporary id; the list is re-fetched once the backend accepts it
// and the temporary entry is removed again if it does not.
func (s *ChatService) Send(ctx context.Context, chatID int64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if chatID == 0 || content == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message is empty")
	}
	viewer, err := s.viewer.CachedUser(ctx)
	if err != nil {
		return nil, err
	}
	if !s.beginSend(chatID) {
		return nil, appErrors.Clone(appErrors.ErrActionInFlight, "a message is already being sent")
	}
	defer s.endSend(chatID)

	key := state.MessagesKey(chatID)
	optimistic := models.Message{
		ID:        s.tempID.Add(-1),
		ChatID:    chatID,
		SenderID:  viewer.ID,
		Content:   content,
		CreatedAt: models.NewTimestamp(s.now().UTC()),
		Pending:   true,
	}
	s.store.Update(key, func(v interface{}) interface{} {
		return withMessages(v, chatID, func(msgs []models.Message) []models.Message {
			return append(msgs, optimistic)
		})
	})

	sent, err := s.chats.Send(ctx, chatID, content)
	if err != nil {
		s.store.Update(key, func(v interface{}) interface{} {
			return withMessages(v, chatID, func(msgs []models.Message) []models.Message {
				return removeMessage(msgs, optimistic.ID)
			})
		})
		s.logger.Warn("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
		s.bus.Toast(ctx, events.Toast{Level: events.ToastError, Title: "Send failed", Message: err.Error()})
		return nil, err
	}

	if _, err := s.Messages(ctx, chatID); err != nil {
		s.logger.Warn("reload messages after send", zap.Int64("chat_id", chatID), zap.Error(err))
		s.store.Update(key, func(v interface{}) interface{} {
			return withMessages(v, chatID, func(msgs []models.Message) []models.Message {
				return replaceMessage(msgs, optimistic.ID, *sent)
			})
		})
	}
	s.bus.Toast(ctx, events.Toast{Level: events.ToastSuccess, Title: "Message sent"})
	return sent, nil
}

// GetOrCreate opens the conversation with userID.
func (s *ChatService) GetOrCreate(ctx context.Context, userID int64) (*models.Chat, error) {
	return s.chats.GetOrCreate(ctx, userID)
}

// StoredMessages returns the messages currently held for chatID, including
// unconfirmed ones.
func (s *ChatService) StoredMessages(chatID int64) ([]models.Message, error) {
	st, err := state.Get[*dto.MessagesState](s.store, state.MessagesKey(chatID))
	if err != nil {
		return nil, err
	}
	return st.Messages, nil
}

func (s *ChatService) beginSend(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.sending[chatID]; busy {
		return false
	}
	s.sending[chatID] = struct{}{}
	return true
}

func (s *ChatService) endSend(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sending, chatID)
}

func withMessages(v interface{}, chatID int64, fn func([]models.Message) []models.Message) interface{} {
	var current []models.Message
	if st, ok := v.(*dto.MessagesState); ok && st != nil {
		current = st.Messages
	}
	next := make([]models.Message, len(current), len(current)+1)
	copy(next, current)
	return &dto.MessagesState{ChatID: chatID, Messages: fn(next)}
}

func removeMessage(msgs []models.Message, id int64) []models.Message {
	out := msgs[:0]
	for _, m := range msgs {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

func replaceMessage(msgs []models.Message, id int64, with models.Message) []models.Message {
	for i := range msgs {
		if msgs[i].ID == id {
			msgs[i] = with
		}
	}
	return msgs
}

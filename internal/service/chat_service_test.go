package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/circleed-client/internal/events"
	"github.com/noah-isme/circleed-client/internal/models"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

func newChatFixture() (*ChatService, *fakeChats, *busRecorder) {
	chats := &fakeChats{
		chats: []models.Chat{
			{ID: 4, User1ID: 1, User2ID: 2, ParticipantName: "Ana"},
			{ID: 5, User1ID: 1, User2ID: 3},
		},
		messages: map[int64][]models.Message{4: {{ID: 1, ChatID: 4, SenderID: 2, Content: "hi"}}},
	}
	bus := events.NewBus(nil, nil)
	svc := NewChatService(chats, fakeViewer{user: &models.User{ID: 1}}, bus, newTestStore(), nil)
	return svc, chats, recordBus(bus)
}

func TestChatServiceSelectsFirstChat(t *testing.T) {
	svc, _, _ := newChatFixture()

	st, err := svc.Chats(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.Selected)
	assert.Equal(t, "Ana", st.Chats[0].ParticipantName)
	assert.Equal(t, "Chat #5", st.Chats[1].ParticipantName)

	st, err = svc.Chats(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), st.Selected)
}

func TestChatServiceSendShowsMessageBeforeServerAnswers(t *testing.T) {
	svc, chats, rec := newChatFixture()
	ctx := context.Background()
	_, err := svc.Messages(ctx, 4)
	require.NoError(t, err)

	var during []models.Message
	chats.onSend = func() {
		during, _ = svc.StoredMessages(4)
	}

	sent, err := svc.Send(ctx, 4, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", sent.Content)

	require.Len(t, during, 2)
	assert.True(t, during[1].Pending)
	assert.Less(t, during[1].ID, int64(0))
	assert.Equal(t, "hello", during[1].Content)

	after, err := svc.StoredMessages(4)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.False(t, after[1].Pending)
	assert.Greater(t, after[1].ID, int64(0))
	assert.Equal(t, "Message sent", rec.lastToast().Title)
}

func TestChatServiceSendRollsBackOnFailure(t *testing.T) {
	svc, chats, rec := newChatFixture()
	ctx := context.Background()
	_, err := svc.Messages(ctx, 4)
	require.NoError(t, err)
	chats.sendErr = errors.New("offline")

	_, err = svc.Send(ctx, 4, "hello")
	require.Error(t, err)

	msgs, err := svc.StoredMessages(4)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, events.ToastError, rec.lastToast().Level)
}

func TestChatServiceSendPatchesServerMessageWhenReloadFails(t *testing.T) {
	svc, chats, _ := newChatFixture()
	ctx := context.Background()
	_, err := svc.Messages(ctx, 4)
	require.NoError(t, err)
	chats.onSend = func() { chats.messagesErr = errors.New("reload failed") }

	sent, err := svc.Send(ctx, 4, "hello")
	require.NoError(t, err)

	msgs, err := svc.StoredMessages(4)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, sent.ID, msgs[1].ID)
	assert.False(t, msgs[1].Pending)
}

func TestChatServiceRejectsEmptyMessage(t *testing.T) {
	svc, chats, _ := newChatFixture()

	_, err := svc.Send(context.Background(), 4, "   ")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Len(t, chats.messages[4], 1)
}

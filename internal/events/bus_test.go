package events

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	names []string
}

func (o *countingObserver) ObserveSignal(name string) {
	o.names = append(o.names, name)
}

func TestBusDeliversOnlyToMatchingSignal(t *testing.T) {
	obs := &countingObserver{}
	bus := NewBus(obs, nil)
	ctx := context.Background()

	var tokens, reviews atomic.Int32
	bus.OnSignal(TokensUpdated, func(context.Context, Signal) { tokens.Add(1) })
	bus.OnSignal(ReviewSubmitted, func(context.Context, Signal) { reviews.Add(1) })

	bus.Emit(ctx, TokensUpdated)
	bus.Emit(ctx, TokensUpdated)
	bus.Emit(ctx, ReviewSubmitted)

	assert.Equal(t, int32(2), tokens.Load())
	assert.Equal(t, int32(1), reviews.Load())
	assert.Equal(t, []string{"tokens_updated", "tokens_updated", "review_submitted"}, obs.names)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(nil, nil)
	ctx := context.Background()

	var calls atomic.Int32
	unsubscribe := bus.OnSignal(TokensUpdated, func(context.Context, Signal) { calls.Add(1) })
	bus.OnSignal(TokensUpdated, func(context.Context, Signal) {})

	bus.Emit(ctx, TokensUpdated)
	unsubscribe()
	unsubscribe()
	bus.Emit(ctx, TokensUpdated)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, bus.signals[TokensUpdated].Len())
}

func TestBusUnknownSignalIsIgnored(t *testing.T) {
	bus := NewBus(nil, nil)
	unsubscribe := bus.OnSignal(Signal(99), func(context.Context, Signal) {
		t.Fatal("unexpected delivery")
	})
	unsubscribe()
	bus.Emit(context.Background(), Signal(99))
	assert.Equal(t, "unknown", Signal(99).String())
}

func TestTopicPreservesOrderAndAllowsSelfUnsubscribe(t *testing.T) {
	var topic Topic[int]
	var order []string

	var unsubscribeFirst func()
	unsubscribeFirst = topic.Subscribe(func(_ context.Context, v int) {
		order = append(order, "first")
		unsubscribeFirst()
	})
	topic.Subscribe(func(_ context.Context, v int) { order = append(order, "second") })

	topic.Publish(context.Background(), 1)
	topic.Publish(context.Background(), 2)

	assert.Equal(t, []string{"first", "second", "second"}, order)
}

func TestNotificationsAndToasts(t *testing.T) {
	bus := NewBus(nil, nil)
	ctx := context.Background()

	var got []Notification
	bus.OnNotification(func(_ context.Context, n Notification) { got = append(got, n) })
	var toasts []Toast
	bus.OnToast(func(_ context.Context, t Toast) { toasts = append(toasts, t) })

	bus.Notify(ctx, SessionAcceptedNotification("Go Basics", "Ada", 4))
	bus.Notify(ctx, TokensEarnedNotification(20, "Go Basics", 4))
	bus.Toast(ctx, Toast{Level: ToastSuccess, Title: "Booking confirmed"})

	require.Len(t, got, 2)
	assert.Equal(t, SessionAccepted, got[0].Kind)
	assert.Equal(t, `Your session for "Go Basics" has been accepted by Ada.`, got[0].Message)
	assert.Equal(t, 20, got[1].Data.Tokens)
	require.Len(t, toasts, 1)
	assert.Equal(t, ToastSuccess, toasts[0].Level)
}

func TestSessionAcceptedWithoutTeacher(t *testing.T) {
	n := SessionAcceptedNotification("Spanish", "", 1)
	assert.Equal(t, `Your session for "Spanish" has been accepted.`, n.Message)
}

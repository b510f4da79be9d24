package events

import (
	"context"

	"go.uber.org/zap"
)

// Signal announces that backend-owned shared state changed and dependent
// views should re-fetch.
type Signal int

const (
	// TokensUpdated fires after a transition that moves tokens.
	TokensUpdated Signal = iota + 1
	// ReviewSubmitted fires after a review is stored and skill ratings moved.
	ReviewSubmitted
)

func (s Signal) String() string {
	switch s {
	case TokensUpdated:
		return "tokens_updated"
	case ReviewSubmitted:
		return "review_submitted"
	default:
		return "unknown"
	}
}

// SignalObserver records published signals.
type SignalObserver interface {
	ObserveSignal(name string)
}

// Bus carries signals, notifications and toasts between views.
type Bus struct {
	signals       map[Signal]*Topic[Signal]
	notifications Topic[Notification]
	toasts        Topic[Toast]
	observer      SignalObserver
	logger        *zap.Logger
}

// NewBus constructs an empty bus. observer may be nil.
func NewBus(observer SignalObserver, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		signals: map[Signal]*Topic[Signal]{
			TokensUpdated:   {},
			ReviewSubmitted: {},
		},
		observer: observer,
		logger:   logger,
	}
}

// OnSignal subscribes fn to s and returns the unsubscribe function.
func (b *Bus) OnSignal(s Signal, fn func(context.Context, Signal)) func() {
	topic, ok := b.signals[s]
	if !ok {
		return func() {}
	}
	return topic.Subscribe(fn)
}

// Emit publishes s to its subscribers.
func (b *Bus) Emit(ctx context.Context, s Signal) {
	topic, ok := b.signals[s]
	if !ok {
		b.logger.Warn("unknown signal", zap.Int("signal", int(s)))
		return
	}
	b.logger.Debug("signal", zap.Stringer("signal", s), zap.Int("subscribers", topic.Len()))
	if b.observer != nil {
		b.observer.ObserveSignal(s.String())
	}
	topic.Publish(ctx, s)
}

// OnNotification subscribes to notifications.
func (b *Bus) OnNotification(fn func(context.Context, Notification)) func() {
	return b.notifications.Subscribe(fn)
}

// Notify publishes a notification.
func (b *Bus) Notify(ctx context.Context, n Notification) {
	b.notifications.Publish(ctx, n)
}

// OnToast subscribes to toasts.
func (b *Bus) OnToast(fn func(context.Context, Toast)) func() {
	return b.toasts.Subscribe(fn)
}

// Toast publishes a transient toast.
func (b *Bus) Toast(ctx context.Context, t Toast) {
	b.toasts.Publish(ctx, t)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/circleed-client/internal/state"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

type stubAuth bool

func (s stubAuth) Authenticated(context.Context) bool { return bool(s) }

type stubClock time.Time

func (s stubClock) LastPoll() time.Time { return time.Time(s) }

func TestStatusServiceReadiness(t *testing.T) {
	store := newTestStore()
	polled := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	report := NewStatusService(store, stubAuth(false), nil, nil).Readiness(context.Background())
	assert.False(t, report.Ready)
	assert.Equal(t, "not logged in", report.Reason)

	svc := NewStatusService(store, stubAuth(true), stubClock(polled), nil)
	report = svc.Readiness(context.Background())
	assert.False(t, report.Ready)
	assert.Equal(t, "no view loaded yet", report.Reason)

	store.Commit(state.KeyWallet, store.Begin(state.KeyWallet), "wallet")
	store.Commit(state.MessagesKey(4), store.Begin(state.MessagesKey(4)), "hidden")
	report = svc.Readiness(context.Background())
	assert.True(t, report.Ready)
	assert.Equal(t, []string{state.KeyWallet}, report.Views)
	assert.Equal(t, polled, report.LastPoll)
}

func TestStatusServiceView(t *testing.T) {
	store := newTestStore()
	store.Commit(state.KeyDashboard, store.Begin(state.KeyDashboard), "dash")
	svc := NewStatusService(store, stubAuth(true), nil, nil)

	snap, err := svc.View(state.KeyDashboard)
	require.NoError(t, err)
	assert.Equal(t, "dash", snap.Value)

	_, err = svc.View(state.KeyWallet)
	assert.True(t, errors.Is(err, appErrors.ErrStoreMiss))

	_, err = svc.View(state.MessagesKey(4))
	assert.True(t, errors.Is(err, appErrors.ErrUnknownView))
}

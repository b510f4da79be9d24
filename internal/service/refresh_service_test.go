package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/circleed-client/internal/events"
	"github.com/noah-isme/circleed-client/internal/state"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
	"github.com/noah-isme/circleed-client/pkg/jobs"
)

type viewCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *viewCounter) fn(view string) RefreshFunc {
	return func(context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.counts[view]++
		return nil
	}
}

func (c *viewCounter) get(view string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[view]
}

func newCountedRefresh() (*RefreshService, *viewCounter) {
	counter := &viewCounter{counts: map[string]int{}}
	svc := NewRefreshService(NewMetricsService(), nil)
	for _, view := range []string{state.KeyWallet, state.KeyDashboard, state.KeyMarketplace, state.KeyBookings} {
		svc.Register(view, counter.fn(view))
	}
	return svc, counter
}

func TestRefreshServiceBindRoutesSignals(t *testing.T) {
	svc, counter := newCountedRefresh()
	bus := events.NewBus(nil, nil)
	unbind := svc.Bind(bus)

	bus.Emit(context.Background(), events.TokensUpdated)
	assert.Equal(t, 1, counter.get(state.KeyWallet))
	assert.Equal(t, 1, counter.get(state.KeyDashboard))
	assert.Zero(t, counter.get(state.KeyMarketplace))

	bus.Emit(context.Background(), events.ReviewSubmitted)
	assert.Equal(t, 2, counter.get(state.KeyDashboard))
	assert.Equal(t, 1, counter.get(state.KeyMarketplace))
	assert.Zero(t, counter.get(state.KeyBookings))

	unbind()
	bus.Emit(context.Background(), events.TokensUpdated)
	assert.Equal(t, 1, counter.get(state.KeyWallet))
}

func TestRefreshServiceSharesInFlightRefresh(t *testing.T) {
	svc := NewRefreshService(nil, nil)
	release := make(chan struct{})
	var calls atomic.Int32
	svc.Register(state.KeyWallet, func(context.Context) error {
		calls.Add(1)
		<-release
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Refresh(context.Background(), state.KeyWallet))
		}()
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestRefreshServiceUnknownView(t *testing.T) {
	svc, _ := newCountedRefresh()

	err := svc.Refresh(context.Background(), "grades")
	assert.True(t, errors.Is(err, appErrors.ErrUnknownView))
	assert.Equal(t, []string{state.KeyBookings, state.KeyDashboard, state.KeyMarketplace, state.KeyWallet}, svc.Views())
}

func TestRefreshServiceRunsRequestsOnQueue(t *testing.T) {
	svc, counter := newCountedRefresh()
	queue := svc.NewQueue(jobs.QueueConfig{Workers: 1})
	queue.Start(context.Background())
	defer queue.Stop()
	svc.UseQueue(queue)

	svc.Request(context.Background(), state.KeyBookings)
	require.Eventually(t, func() bool { return counter.get(state.KeyBookings) == 1 }, time.Second, 5*time.Millisecond)
}

func TestRefreshServiceRefreshAllReportsFirstError(t *testing.T) {
	svc, counter := newCountedRefresh()
	svc.Register("chats", func(context.Context) error { return errors.New("chats down") })

	err := svc.RefreshAll(context.Background())
	require.EqualError(t, err, "chats down")
	assert.Equal(t, 1, counter.get(state.KeyWallet))
}

func TestPollServiceRequestsEveryView(t *testing.T) {
	refresh, counter := newCountedRefresh()
	poll := NewPollService(refresh, 0, nil)
	assert.Equal(t, time.Second, poll.Interval())
	assert.True(t, poll.LastPoll().IsZero())

	poll.Poll()

	assert.False(t, poll.LastPoll().IsZero())
	for _, view := range refresh.Views() {
		assert.Equal(t, 1, counter.get(view), view)
	}
}

func TestPollServiceStartStop(t *testing.T) {
	refresh, counter := newCountedRefresh()
	poll := NewPollService(refresh, time.Second, nil)

	require.NoError(t, poll.Start(context.Background()))
	require.Eventually(t, func() bool { return counter.get(state.KeyWallet) >= 1 }, 3*time.Second, 20*time.Millisecond)
	poll.Stop()
}

package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/circleed-client/internal/events"
	"github.com/noah-isme/circleed-client/internal/state"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
	"github.com/noah-isme/circleed-client/pkg/jobs"
)

// SignalBindings lists the views re-fetched when a signal fires.
var SignalBindings = map[events.Signal][]string{
	events.TokensUpdated:   {state.KeyWallet, state.KeyDashboard},
	events.ReviewSubmitted: {state.KeyDashboard, state.KeyMarketplace},
}

// RefreshFunc reloads one view.
type RefreshFunc func(ctx context.Context) error

type refreshQueue interface {
	TryEnqueue(job jobs.Job) (bool, error)
}

// RefreshService reloads views on demand. Overlapping refreshes of one view
// share a single backend round trip. With a queue attached, requests run on
// its workers; without one they run on the caller's goroutine.
type RefreshService struct {
	metrics *MetricsService
	logger  *zap.Logger

	mu       sync.RWMutex
	views    map[string]RefreshFunc
	queue    refreshQueue
	inflight singleflight.Group
}

// NewRefreshService constructs an empty RefreshService.
func NewRefreshService(metrics *MetricsService, logger *zap.Logger) *RefreshService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshService{metrics: metrics, logger: logger, views: make(map[string]RefreshFunc)}
}

// Register makes view refreshable.
func (s *RefreshService) Register(view string, fn RefreshFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[view] = fn
}

// Views lists registered views in name order.
func (s *RefreshService) Views() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]string, 0, len(s.views))
	for view := range s.views {
		views = append(views, view)
	}
	sort.Strings(views)
	return views
}

// UseQueue routes future requests through queue.
func (s *RefreshService) UseQueue(queue refreshQueue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = queue
}

// NewQueue builds a worker queue whose jobs refresh the view named by their
// type.
func (s *RefreshService) NewQueue(cfg jobs.QueueConfig) *jobs.Queue {
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	return jobs.NewQueue("refresh", s.HandleJob, cfg)
}

// HandleJob is the jobs.Handler for refresh jobs.
func (s *RefreshService) HandleJob(ctx context.Context, job jobs.Job) error {
	return s.Refresh(ctx, job.Type)
}

// Bind subscribes to bus so every signal requests its bound views. It
// returns a function removing the subscriptions.
func (s *RefreshService) Bind(bus *events.Bus) func() {
	var unsubscribe []func()
	for signal, views := range SignalBindings {
		views := views
		unsubscribe = append(unsubscribe, bus.OnSignal(signal, func(ctx context.Context, sig events.Signal) {
			for _, view := range views {
				s.Request(ctx, view)
			}
		}))
	}
	return func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}
}

// Request asks for view to be reloaded. Queued requests that do not fit the
// buffer are dropped; the next signal or poll catches up.
func (s *RefreshService) Request(ctx context.Context, view string) {
	s.mu.RLock()
	queue := s.queue
	_, known := s.views[view]
	s.mu.RUnlock()

	if !known {
		s.logger.Debug("refresh requested for unregistered view", zap.String("view", view))
		return
	}
	if queue == nil {
		if err := s.Refresh(ctx, view); err != nil {
			s.logger.Warn("refresh failed", zap.String("view", view), zap.Error(err))
		}
		return
	}

	accepted, err := queue.TryEnqueue(jobs.Job{ID: uuid.NewString(), Type: view, Key: view})
	switch {
	case err != nil:
		s.logger.Warn("enqueue refresh", zap.String("view", view), zap.Error(err))
	case !accepted:
		s.logger.Debug("refresh queue full, request dropped", zap.String("view", view))
	}
}

// Refresh reloads view now, joining a refresh of the same view already in
// progress.
func (s *RefreshService) Refresh(ctx context.Context, view string) error {
	s.mu.RLock()
	fn, ok := s.views[view]
	s.mu.RUnlock()
	if !ok {
		return appErrors.Clone(appErrors.ErrUnknownView, fmt.Sprintf("unknown view %q", view))
	}

	_, err, shared := s.inflight.Do(view, func() (interface{}, error) {
		start := time.Now()
		err := fn(ctx)
		s.metrics.ObserveRefresh(view, time.Since(start), err)
		return nil, err
	})
	if shared {
		s.logger.Debug("refresh joined in-flight call", zap.String("view", view))
	}
	return err
}

// RefreshAll reloads every registered view and returns the first error.
func (s *RefreshService) RefreshAll(ctx context.Context) error {
	var first error
	for _, view := range s.Views() {
		if err := s.Refresh(ctx, view); err != nil && first == nil {
			first = err
		}
	}
	return first
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PollService requests a refresh of every registered view on a fixed
// interval.
type PollService struct {
	refresh  *RefreshService
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger

	mu       sync.RWMutex
	ctx      context.Context
	lastPoll time.Time
}

// NewPollService constructs a poller. Intervals under one second are raised
// to one second.
func NewPollService(refresh *RefreshService, interval time.Duration, logger *zap.Logger) *PollService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval < time.Second {
		interval = time.Second
	}
	return &PollService{
		refresh:  refresh,
		interval: interval,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger,
	}
}

// Start schedules polling; requests made by the poller use ctx.
func (s *PollService) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.Poll); err != nil {
		return fmt.Errorf("schedule poll: %w", err)
	}
	s.cron.Start()
	s.logger.Info("polling started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts scheduling and waits for a running poll to finish.
func (s *PollService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("polling stopped")
}

// Poll requests a refresh of every registered view.
func (s *PollService) Poll() {
	s.mu.Lock()
	ctx := s.ctx
	s.lastPoll = time.Now().UTC()
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	for _, view := range s.refresh.Views() {
		s.refresh.Request(ctx, view)
	}
}

// LastPoll returns when the last poll ran.
func (s *PollService) LastPoll() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPoll
}

// Interval returns the polling interval.
func (s *PollService) Interval() time.Duration {
	return s.interval
}

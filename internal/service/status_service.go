package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/state"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

// PublicViews are the store keys exposed by the status API.
var PublicViews = []string{state.KeyDashboard, state.KeyWallet, state.KeyBookings, state.KeyMarketplace, state.KeyChats}

type authChecker interface {
	Authenticated(ctx context.Context) bool
}

type pollClock interface {
	LastPoll() time.Time
}

// StatusService answers the watcher's status API.
type StatusService struct {
	store   *state.Store
	auth    authChecker
	poll    pollClock
	metrics *MetricsService
}

// NewStatusService constructs a StatusService. poll may be nil.
func NewStatusService(store *state.Store, auth authChecker, poll pollClock, metrics *MetricsService) *StatusService {
	return &StatusService{store: store, auth: auth, poll: poll, metrics: metrics}
}

// Readiness reports ready once logged in and at least one view is loaded.
func (s *StatusService) Readiness(ctx context.Context) dto.ReadinessReport {
	report := dto.ReadinessReport{Authenticated: s.auth.Authenticated(ctx), Views: s.loadedViews()}
	if s.poll != nil {
		report.LastPoll = s.poll.LastPoll()
	}
	switch {
	case !report.Authenticated:
		report.Reason = "not logged in"
	case len(report.Views) == 0:
		report.Reason = "no view loaded yet"
	default:
		report.Ready = true
	}
	return report
}

func (s *StatusService) loadedViews() []string {
	public := make(map[string]struct{}, len(PublicViews))
	for _, v := range PublicViews {
		public[v] = struct{}{}
	}
	views := []string{}
	for _, key := range s.store.Keys() {
		if _, ok := public[key]; ok {
			views = append(views, key)
		}
	}
	sort.Strings(views)
	return views
}

// View returns the latest snapshot of a public view.
func (s *StatusService) View(name string) (state.Snapshot, error) {
	for _, v := range PublicViews {
		if v == name {
			return s.store.Snapshot(name)
		}
	}
	return state.Snapshot{}, appErrors.Clone(appErrors.ErrUnknownView, fmt.Sprintf("unknown view %q", name))
}

// Metrics returns the runtime metrics snapshot.
func (s *StatusService) Metrics() dto.RuntimeMetrics {
	return s.metrics.Snapshot()
}

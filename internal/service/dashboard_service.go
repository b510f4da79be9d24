package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
	"github.com/noah-isme/circleed-client/internal/state"
)

type sessionLister interface {
	List(ctx context.Context) ([]models.Session, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	UpcomingLimit int
}

// DashboardService orchestrates composition of the dashboard summary.
type DashboardService struct {
	users    meLoader
	sessions sessionLister
	skills   skillLookup
	store    *state.Store
	logger   *zap.Logger
	cfg      DashboardServiceConfig
	now      func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(users meLoader, sessions sessionLister, skills skillLookup, store *state.Store, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = 5
	}
	return &DashboardService{
		users:    users,
		sessions: sessions,
		skills:   skills,
		store:    store,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Load builds the dashboard summary.
func (s *DashboardService) Load(ctx context.Context) (*dto.DashboardSummary, error) {
	seq := s.store.Begin(state.KeyDashboard)

	var (
		user     *models.User
		sessions []models.Session
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.users.Me(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = s.sessions.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	upcoming := make([]models.Session, 0)
	learned := make(map[int64]struct{})
	for _, session := range sessions {
		if session.Upcoming() && session.ScheduledAt.After(now) {
			upcoming = append(upcoming, session)
		}
		if session.Status == models.SessionCompleted && session.StudentID == user.ID {
			learned[session.SkillID] = struct{}{}
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledAt.Before(upcoming[j].ScheduledAt.Time)
	})
	count := len(upcoming)
	if len(upcoming) > s.cfg.UpcomingLimit {
		upcoming = upcoming[:s.cfg.UpcomingLimit]
	}

	name := user.FullName
	if name == "" {
		name = "User"
	}
	summary := &dto.DashboardSummary{
		UserName:      name,
		TokenBalance:  user.TokenBalance,
		Streak:        user.Streak,
		Upcoming:      s.enrich(ctx, upcoming),
		UpcomingCount: count,
		SkillsLearned: len(learned),
		GeneratedAt:   now.UTC(),
	}
	if !s.store.Commit(state.KeyDashboard, seq, summary) {
		if latest, err := state.Get[*dto.DashboardSummary](s.store, state.KeyDashboard); err == nil {
			return latest, nil
		}
	}
	return summary, nil
}

func (s *DashboardService) enrich(ctx context.Context, sessions []models.Session) []dto.DashboardUpcoming {
	out := make([]dto.DashboardUpcoming, len(sessions))
	var wg sync.WaitGroup
	for i, session := range sessions {
		out[i] = dto.DashboardUpcoming{
			SessionID:       session.ID,
			SkillID:         session.SkillID,
			SkillTitle:      skillPlaceholder(session.SkillID),
			Status:          session.Status,
			ScheduledAt:     session.ScheduledAt.Time,
			DurationMinutes: session.DurationMinutes,
		}
		wg.Add(1)
		go func(i int, skillID int64) {
			defer wg.Done()
			skill, err := s.skills.FindByID(ctx, skillID)
			if err != nil {
				s.logger.Debug("dashboard skill lookup failed", zap.Int64("skill_id", skillID), zap.Error(err))
				return
			}
			out[i].SkillTitle = skill.Title
			out[i].TokensPerSession = skill.TokensPerSession
		}(i, session.SkillID)
	}
	wg.Wait()
	return out
}

package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
	"github.com/noah-isme/circleed-client/internal/state"
)

type skillLister interface {
	List(ctx context.Context, filter dto.SkillFilter) ([]models.Skill, error)
	FindByID(ctx context.Context, id int64) (*models.Skill, error)
}

// MarketplaceOptions are the fixed filter catalogues.
type MarketplaceOptions struct {
	Categories []string `json:"categories"`
	Levels     []string `json:"levels"`
	Languages  []string `json:"languages"`
}

// MarketplaceService searches skills offered by other users.
type MarketplaceService struct {
	skills    skillLister
	viewer    viewerSource
	store     *state.Store
	debouncer *Debouncer
	logger    *zap.Logger

	mu     sync.Mutex
	filter dto.SkillFilter
}

// NewMarketplaceService wires a MarketplaceService. Filter changes made with
// SetFilter are debounced by debouncer.
func NewMarketplaceService(skills skillLister, viewer viewerSource, store *state.Store, debouncer *Debouncer, logger *zap.Logger) *MarketplaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketplaceService{
		skills:    skills,
		viewer:    viewer,
		store:     store,
		debouncer: debouncer,
		logger:    logger,
	}
}

// Options returns the category, level and language catalogues.
func (s *MarketplaceService) Options() MarketplaceOptions {
	return MarketplaceOptions{
		Categories: append([]string{dto.AllOption}, dto.SkillCategories...),
		Levels:     append([]string{dto.AllOption}, dto.SkillLevels...),
		Languages:  append([]string{dto.AllOption}, dto.SkillLanguages...),
	}
}

// Filter returns the current filter.
func (s *MarketplaceService) Filter() dto.SkillFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// HasActiveFilters reports whether the current filter narrows results.
func (s *MarketplaceService) HasActiveFilters() bool {
	return s.Filter().Active()
}

// SetFilter records filter and schedules a search once input settles. Errors
// from the debounced search are logged.
func (s *MarketplaceService) SetFilter(ctx context.Context, filter dto.SkillFilter) {
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()

	s.debouncer.Trigger(func() {
		if _, err := s.Search(ctx, filter); err != nil {
			s.logger.Warn("marketplace search failed", zap.Error(err))
		}
	})
}

// Reset clears every filter and schedules a search.
func (s *MarketplaceService) Reset(ctx context.Context) {
	s.SetFilter(ctx, dto.SkillFilter{})
}

// Refresh re-runs the current filter immediately.
func (s *MarketplaceService) Refresh(ctx context.Context) ([]models.Skill, error) {
	return s.Search(ctx, s.Filter())
}

// Search queries the backend with filter and drops the viewer's own skills.
// The result is committed to the store unless a newer search already was.
func (s *MarketplaceService) Search(ctx context.Context, filter dto.SkillFilter) ([]models.Skill, error) {
	viewer, err := s.viewer.CachedUser(ctx)
	if err != nil {
		return nil, err
	}

	filter = filter.Normalize()
	seq := s.store.Begin(state.KeyMarketplace)
	skills, err := s.skills.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Skill, 0, len(skills))
	for _, skill := range skills {
		if skill.TeacherID == viewer.ID {
			continue
		}
		visible = append(visible, skill)
	}

	s.store.Commit(state.KeyMarketplace, seq, &dto.MarketplaceState{Filter: filter, Skills: visible})
	return visible, nil
}

// Results returns the latest committed search.
func (s *MarketplaceService) Results() (*dto.MarketplaceState, error) {
	return state.Get[*dto.MarketplaceState](s.store, state.KeyMarketplace)
}

// Skill returns one skill's detail.
func (s *MarketplaceService) Skill(ctx context.Context, id int64) (*models.Skill, error) {
	return s.skills.FindByID(ctx, id)
}

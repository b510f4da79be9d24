package service

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/events"
	"github.com/noah-isme/circleed-client/internal/models"
	"github.com/noah-isme/circleed-client/internal/state"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

type reviewRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Skill, error)
	Reviews(ctx context.Context, skillID int64) ([]models.Review, error)
	AddReview(ctx context.Context, skillID int64, req dto.ReviewRequest) (*models.Review, error)
}

// ReviewService submits reviews for completed sessions in the bookings view.
type ReviewService struct {
	skills    reviewRepository
	bus       *events.Bus
	store     *state.Store
	validator *validator.Validate
	logger    *zap.Logger

	mu         sync.Mutex
	target     int64
	submitting map[int64]struct{}
}

// NewReviewService wires a ReviewService.
func NewReviewService(skills reviewRepository, bus *events.Bus, store *state.Store, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReviewService{
		skills:     skills,
		bus:        bus,
		store:      store,
		validator:  validate,
		logger:     logger,
		submitting: make(map[int64]struct{}),
	}
}

// Open selects the session to review.
func (s *ReviewService) Open(sessionID int64) {
	s.mu.Lock()
	s.target = sessionID
	s.mu.Unlock()
}

// Close clears the selection.
func (s *ReviewService) Close() {
	s.Open(0)
}

// Target returns the selected session id, 0 when none.
func (s *ReviewService) Target() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// Submit reviews the selected session's skill. Without a selection it is a
// no-op returning ErrNoReviewTarget; a selection missing from the loaded
// bookings is also a no-op. A second submit for a session whose review is
// still being posted returns ErrActionInFlight.
func (s *ReviewService) Submit(ctx context.Context, rating int, comment string) (*models.Review, error) {
	target := s.Target()
	if target == 0 {
		return nil, appErrors.ErrNoReviewTarget
	}

	current, err := state.Get[*dto.BookingsState](s.store, state.KeyBookings)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNoReviewTarget, "bookings not loaded")
	}
	session, ok := findSession(current.Sessions, target)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNoReviewTarget, "selected session is not loaded")
	}
	if session.Reviewed() {
		return nil, appErrors.ErrAlreadyReviewed
	}
	if !ActionAllowed(session, current.Viewer.ID, models.ActionReview) {
		return nil, appErrors.Clone(appErrors.ErrActionNotAllowed, "only the student of a completed session can review it")
	}

	req := dto.ReviewRequest{Rating: rating, Comment: comment}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rating must be between 1 and 5")
	}

	if !s.beginSubmit(target) {
		return nil, appErrors.Clone(appErrors.ErrActionInFlight, "review already being submitted")
	}
	defer s.endSubmit(target)

	// re-check under the guard: a submit that finished meanwhile set the flag
	if latest, err := state.Get[*dto.BookingsState](s.store, state.KeyBookings); err == nil {
		if fresh, ok := findSession(latest.Sessions, target); ok && fresh.Reviewed() {
			return nil, appErrors.ErrAlreadyReviewed
		}
	}

	review, err := s.skills.AddReview(ctx, session.SkillID, req)
	if err != nil {
		s.bus.Toast(ctx, events.Toast{Level: events.ToastError, Title: "Failed to submit review", Message: err.Error()})
		return nil, err
	}

	s.store.Update(state.KeyBookings, func(v interface{}) interface{} {
		return markReviewed(v, target, rating)
	})
	s.mu.Lock()
	if s.target == target {
		s.target = 0
	}
	s.mu.Unlock()

	s.bus.Toast(ctx, events.Toast{Level: events.ToastSuccess, Title: "Review submitted", Message: "Thank you for your feedback!"})
	s.bus.Emit(ctx, events.ReviewSubmitted)
	s.refreshSkills(ctx)
	return review, nil
}

func (s *ReviewService) beginSubmit(sessionID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.submitting[sessionID]; busy {
		return false
	}
	s.submitting[sessionID] = struct{}{}
	return true
}

func (s *ReviewService) endSubmit(sessionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.submitting, sessionID)
}

// markReviewed returns a copy of the bookings state with the session's
// review flag set.
func markReviewed(v interface{}, sessionID int64, rating int) interface{} {
	current, ok := v.(*dto.BookingsState)
	if !ok || current == nil {
		return v
	}
	next := *current
	next.Sessions = make([]models.Session, len(current.Sessions))
	copy(next.Sessions, current.Sessions)
	for i := range next.Sessions {
		if next.Sessions[i].ID == sessionID {
			next.Sessions[i].ReviewSubmitted = rating
		}
	}
	return &next
}

// refreshSkills re-reads every skill referenced by the bookings so ratings
// reflect the new review.
func (s *ReviewService) refreshSkills(ctx context.Context) {
	current, err := state.Get[*dto.BookingsState](s.store, state.KeyBookings)
	if err != nil {
		return
	}
	ids := make(map[int64]struct{})
	for _, session := range current.Sessions {
		ids[session.SkillID] = struct{}{}
	}

	fresh := make(map[int64]models.Skill, len(ids))
	for id := range ids {
		skill, err := s.skills.FindByID(ctx, id)
		if err != nil {
			s.logger.Debug("refresh skill after review", zap.Int64("skill_id", id), zap.Error(err))
			continue
		}
		fresh[id] = *skill
	}

	s.store.Update(state.KeyBookings, func(v interface{}) interface{} {
		latest, ok := v.(*dto.BookingsState)
		if !ok || latest == nil {
			return v
		}
		next := *latest
		next.Skills = make(map[int64]models.Skill, len(latest.Skills))
		for id, skill := range latest.Skills {
			next.Skills[id] = skill
		}
		for id, skill := range fresh {
			next.Skills[id] = skill
		}
		return &next
	})
}

// Reviews lists the reviews of a skill.
func (s *ReviewService) Reviews(ctx context.Context, skillID int64) ([]models.Review, error) {
	return s.skills.Reviews(ctx, skillID)
}

// ReviewerName returns the reviewer's display name, or a placeholder when the
// backend did not embed the reviewer.
func ReviewerName(review models.Review) string {
	if review.Reviewer != nil && review.Reviewer.FullName != "" {
		return review.Reviewer.FullName
	}
	return userPlaceholder(review.ReviewerID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/events"
	"github.com/noah-isme/circleed-client/internal/models"
	"github.com/noah-isme/circleed-client/internal/state"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

const lookupConcurrency = 8

type sessionRepository interface {
	List(ctx context.Context) ([]models.Session, error)
	Book(ctx context.Context, req dto.BookSessionRequest) (*models.Session, error)
	Transition(ctx context.Context, id int64, action models.SessionAction) (*models.Session, error)
}

type chatOpener interface {
	GetOrCreate(ctx context.Context, userID int64) (*models.Chat, error)
}

// BookingService loads the viewer's sessions, joins them with skills and
// users, and runs lifecycle transitions.
type BookingService struct {
	sessions  sessionRepository
	skills    skillLookup
	users     userLookup
	chats     chatOpener
	viewer    viewerSource
	bus       *events.Bus
	store     *state.Store
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	loading map[int64]models.SessionAction
}

// NewBookingService wires a BookingService.
func NewBookingService(sessions sessionRepository, skills skillLookup, users userLookup, chats chatOpener, viewer viewerSource, bus *events.Bus, store *state.Store, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BookingService{
		sessions:  sessions,
		skills:    skills,
		users:     users,
		chats:     chats,
		viewer:    viewer,
		bus:       bus,
		store:     store,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		loading:   make(map[int64]models.SessionAction),
	}
}

// Load fetches the session list and resolves every referenced skill and user.
// Lookup failures are logged and leave the entry out; views fall back to
// placeholders.
func (s *BookingService) Load(ctx context.Context) (*dto.BookingsState, error) {
	viewer, err := s.viewer.CachedUser(ctx)
	if err != nil {
		return nil, err
	}

	seq := s.store.Begin(state.KeyBookings)
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, err
	}

	skills, users := s.resolve(ctx, sessions, viewer.ID)
	result := &dto.BookingsState{
		Viewer:   *viewer,
		Sessions: sessions,
		Skills:   skills,
		Users:    users,
	}
	if !s.store.Commit(state.KeyBookings, seq, result) {
		if latest, err := state.Get[*dto.BookingsState](s.store, state.KeyBookings); err == nil {
			return latest, nil
		}
	}
	return result, nil
}

func (s *BookingService) resolve(ctx context.Context, sessions []models.Session, viewerID int64) (map[int64]models.Skill, map[int64]models.User) {
	skillIDs := make(map[int64]struct{})
	userIDs := make(map[int64]struct{})
	for _, session := range sessions {
		skillIDs[session.SkillID] = struct{}{}
		for _, id := range []int64{session.TeacherID, session.StudentID} {
			if id != viewerID {
				userIDs[id] = struct{}{}
			}
		}
	}

	var mu sync.Mutex
	skills := make(map[int64]models.Skill, len(skillIDs))
	users := make(map[int64]models.User, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for id := range skillIDs {
		id := id
		g.Go(func() error {
			skill, err := s.skills.FindByID(gctx, id)
			if err != nil {
				s.logger.Debug("skill lookup failed", zap.Int64("skill_id", id), zap.Error(err))
				return nil
			}
			mu.Lock()
			skills[id] = *skill
			mu.Unlock()
			return nil
		})
	}
	for id := range userIDs {
		id := id
		g.Go(func() error {
			user, err := s.users.FindByID(gctx, id)
			if err != nil {
				s.logger.Debug("user lookup failed", zap.Int64("user_id", id), zap.Error(err))
				return nil
			}
			mu.Lock()
			users[id] = *user
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return skills, users
}

// Current returns the stored bookings state, loading it when absent.
func (s *BookingService) Current(ctx context.Context) (*dto.BookingsState, error) {
	current, err := state.Get[*dto.BookingsState](s.store, state.KeyBookings)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, appErrors.ErrStoreMiss) {
		return nil, err
	}
	return s.Load(ctx)
}

// Bookings renders the stored state for tab, split by the viewer's role.
func (s *BookingService) Bookings(ctx context.Context, tab dto.Tab) (*dto.BookingsView, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.render(current, tab), nil
}

func (s *BookingService) render(current *dto.BookingsState, tab dto.Tab) *dto.BookingsView {
	view := &dto.BookingsView{Tab: tab, AsStudent: []dto.BookingView{}, AsTeacher: []dto.BookingView{}}
	viewer := current.Viewer
	ownName := viewer.FullName
	if ownName == "" {
		ownName = "You"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range FilterSessions(current.Sessions, tab) {
		row := dto.BookingView{
			ID:              session.ID,
			SkillID:         session.SkillID,
			SkillTitle:      skillPlaceholder(session.SkillID),
			Status:          session.Status,
			ScheduledAt:     session.ScheduledAt.Time,
			DurationMinutes: session.DurationMinutes,
			ReviewSubmitted: session.ReviewSubmitted,
		}
		if skill, ok := current.Skills[session.SkillID]; ok {
			row.SkillTitle = skill.Title
			row.TokensPerSession = skill.TokensPerSession
		}
		_, row.Loading = s.loading[session.ID]

		if session.StudentID == viewer.ID {
			student := row
			student.StudentName = ownName
			student.TeacherName = userName(current.Users, session.TeacherID, teacherPlaceholder)
			student.Actions = AllowedActions(session, dto.RoleStudent)
			view.AsStudent = append(view.AsStudent, student)
		}
		if session.TeacherID == viewer.ID {
			teacher := row
			teacher.TeacherName = ownName
			teacher.StudentName = userName(current.Users, session.StudentID, studentPlaceholder)
			teacher.Actions = AllowedActions(session, dto.RoleTeacher)
			view.AsTeacher = append(view.AsTeacher, teacher)
		}
	}
	return view
}

func userName(users map[int64]models.User, id int64, placeholder func(int64) string) string {
	if user, ok := users[id]; ok && user.FullName != "" {
		return user.FullName
	}
	return placeholder(id)
}

// Confirm accepts a pending request as its teacher.
func (s *BookingService) Confirm(ctx context.Context, id int64) (*dto.ActionResult, error) {
	return s.act(ctx, id, models.ActionConfirm)
}

// Decline rejects a pending request as its teacher; the student is refunded.
func (s *BookingService) Decline(ctx context.Context, id int64) (*dto.ActionResult, error) {
	return s.act(ctx, id, models.ActionDecline)
}

// Cancel withdraws a pending request as its student; tokens are refunded.
func (s *BookingService) Cancel(ctx context.Context, id int64) (*dto.ActionResult, error) {
	return s.act(ctx, id, models.ActionCancel)
}

// Complete marks a confirmed session done; the teacher earns the tokens.
func (s *BookingService) Complete(ctx context.Context, id int64) (*dto.ActionResult, error) {
	return s.act(ctx, id, models.ActionComplete)
}

func (s *BookingService) act(ctx context.Context, id int64, action models.SessionAction) (*dto.ActionResult, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	session, ok := findSession(current.Sessions, id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("session %d not found", id))
	}
	if !ActionAllowed(session, current.Viewer.ID, action) {
		return nil, appErrors.Clone(appErrors.ErrActionNotAllowed, fmt.Sprintf("cannot %s a %s session", action, session.Status))
	}
	if !s.beginAction(id, action) {
		return nil, appErrors.Clone(appErrors.ErrActionInFlight, fmt.Sprintf("session %d already has an action in progress", id))
	}
	defer s.endAction(id)

	updated, err := s.sessions.Transition(ctx, id, action)
	s.metrics.ObserveSessionAction(string(action), err)
	if err != nil {
		s.logger.Warn("session action failed", zap.Int64("session_id", id), zap.String("action", string(action)), zap.Error(err))
		s.bus.Toast(ctx, events.Toast{Level: events.ToastError, Title: "Failed to " + string(action), Message: err.Error()})
		return nil, err
	}

	refreshed, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn("reload sessions after action", zap.Int64("session_id", id), zap.Error(err))
		s.bus.Toast(ctx, events.Toast{Level: events.ToastWarning, Title: "Failed to refresh bookings", Message: err.Error()})
		refreshed = current
	}

	result := &dto.ActionResult{SessionID: id, Action: action, Status: updated.Status}
	if after, ok := findSession(refreshed.Sessions, id); ok {
		result.Status = after.Status
	}
	s.announce(ctx, action, session, refreshed)
	return result, nil
}

// announce publishes the notifications, signal and toast for a successful
// transition.
func (s *BookingService) announce(ctx context.Context, action models.SessionAction, session models.Session, current *dto.BookingsState) {
	skill, known := current.Skills[session.SkillID]

	switch action {
	case models.ActionCancel:
		s.bus.Emit(ctx, events.TokensUpdated)
		s.bus.Toast(ctx, events.Toast{Level: events.ToastSuccess, Title: "Booking cancelled", Message: "Tokens have been refunded"})
	case models.ActionConfirm:
		if known {
			s.bus.Notify(ctx, events.SessionAcceptedNotification(skill.Title, s.teacherName(skill, current), session.ID))
		}
		s.bus.Toast(ctx, events.Toast{Level: events.ToastSuccess, Title: "Booking confirmed"})
	case models.ActionDecline:
		if known {
			s.bus.Notify(ctx, events.SessionRejectedNotification(skill.Title, session.ID))
		}
		s.bus.Emit(ctx, events.TokensUpdated)
		s.bus.Toast(ctx, events.Toast{Level: events.ToastSuccess, Title: "Booking declined", Message: "Tokens have been refunded to student"})
	case models.ActionComplete:
		if known {
			s.bus.Notify(ctx, events.SessionCompletedNotification(skill.Title, session.ID))
			s.bus.Notify(ctx, events.TokensEarnedNotification(skill.TokensPerSession, skill.Title, session.ID))
		}
		s.bus.Emit(ctx, events.TokensUpdated)
		s.bus.Toast(ctx, events.Toast{Level: events.ToastSuccess, Title: "Session marked complete"})
	}
}

func (s *BookingService) teacherName(skill models.Skill, current *dto.BookingsState) string {
	if skill.Teacher != nil && skill.Teacher.FullName != "" {
		return skill.Teacher.FullName
	}
	if skill.TeacherID == current.Viewer.ID {
		return current.Viewer.FullName
	}
	if user, ok := current.Users[skill.TeacherID]; ok {
		return user.FullName
	}
	return ""
}

func (s *BookingService) beginAction(id int64, action models.SessionAction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.loading[id]; busy {
		return false
	}
	s.loading[id] = action
	return true
}

func (s *BookingService) endAction(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.loading, id)
}

// Book reserves slot on day for skillID, then opens the chat with the
// teacher. A chat failure does not undo the booking.
func (s *BookingService) Book(ctx context.Context, skillID int64, day, slot string) (*dto.BookingConfirmation, error) {
	viewer, err := s.viewer.CachedUser(ctx)
	if err != nil {
		return nil, err
	}
	skill, err := s.skills.FindByID(ctx, skillID)
	if err != nil {
		return nil, err
	}
	if skill.TeacherID == viewer.ID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot book your own skill")
	}
	if !SlotOffered(*skill, day, slot) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s %s is not offered for this skill", day, slot))
	}
	scheduledAt, err := NextSlotTime(s.now(), day, slot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	req := dto.BookSessionRequest{
		SkillID:         skill.ID,
		TeacherID:       skill.TeacherID,
		StudentID:       viewer.ID,
		ScheduledAt:     scheduledAt.UTC(),
		DurationMinutes: models.DefaultSessionMinutes,
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking")
	}

	session, err := s.sessions.Book(ctx, req)
	if err != nil {
		s.bus.Toast(ctx, events.Toast{Level: events.ToastError, Title: "Booking failed", Message: err.Error()})
		return nil, err
	}
	s.bus.Emit(ctx, events.TokensUpdated)

	confirmation := &dto.BookingConfirmation{Session: *session}
	chat, err := s.chats.GetOrCreate(ctx, skill.TeacherID)
	if err != nil {
		s.logger.Warn("open chat after booking", zap.Int64("teacher_id", skill.TeacherID), zap.Error(err))
	} else {
		confirmation.Chat = chat
	}

	if _, err := s.Load(ctx); err != nil {
		s.logger.Warn("reload sessions after booking", zap.Error(err))
	}
	s.bus.Toast(ctx, events.Toast{Level: events.ToastSuccess, Title: "Booked", Message: "Successfully booked"})
	return confirmation, nil
}

func findSession(sessions []models.Session, id int64) (models.Session, bool) {
	for _, session := range sessions {
		if session.ID == id {
			return session, true
		}
	}
	return models.Session{}, false
}

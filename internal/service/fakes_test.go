package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/events"
	"github.com/noah-isme/circleed-client/internal/models"
	"github.com/noah-isme/circleed-client/internal/state"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

type fakeViewer struct {
	user *models.User
}

func (f fakeViewer) CachedUser(context.Context) (*models.User, error) {
	if f.user == nil {
		return nil, appErrors.ErrNotAuthenticated
	}
	u := *f.user
	return &u, nil
}

type fakeSessions struct {
	mu            sync.Mutex
	sessions      []models.Session
	listCalls     int
	transitions   []string
	transitionErr error
	booked        []dto.BookSessionRequest
	bookErr       error
	block         chan struct{}
}

func (f *fakeSessions) List(context.Context) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]models.Session, len(f.sessions))
	copy(out, f.sessions)
	return out, nil
}

func (f *fakeSessions) Upcoming(ctx context.Context) ([]models.Session, error) {
	all, _ := f.List(ctx)
	return FilterSessions(all, dto.TabUpcoming), nil
}

func (f *fakeSessions) Book(_ context.Context, req dto.BookSessionRequest) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	f.booked = append(f.booked, req)
	s := models.Session{
		ID:              int64(100 + len(f.booked)),
		SkillID:         req.SkillID,
		TeacherID:       req.TeacherID,
		StudentID:       req.StudentID,
		ScheduledAt:     models.NewTimestamp(req.ScheduledAt),
		DurationMinutes: req.DurationMinutes,
		Status:          models.SessionPending,
	}
	f.sessions = append(f.sessions, s)
	return &s, nil
}

var transitionTarget = map[models.SessionAction]models.SessionStatus{
	models.ActionConfirm:  models.SessionConfirmed,
	models.ActionDecline:  models.SessionCancelled,
	models.ActionCancel:   models.SessionCancelled,
	models.ActionComplete: models.SessionCompleted,
}

func (f *fakeSessions) Transition(_ context.Context, id int64, action models.SessionAction) (*models.Session, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, fmt.Sprintf("%d:%s", id, action))
	if f.transitionErr != nil {
		return nil, f.transitionErr
	}
	for i := range f.sessions {
		if f.sessions[i].ID == id {
			f.sessions[i].Status = transitionTarget[action]
			s := f.sessions[i]
			return &s, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "Session not found")
}

func (f *fakeSessions) transitionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transitions)
}

type fakeSkills struct {
	mu          sync.Mutex
	skills      map[int64]models.Skill
	missing     map[int64]bool
	findCalls   int
	listCalls   int
	lastFilter  dto.SkillFilter
	reviews     []dto.ReviewRequest
	reviewErr   error
	reviewGate  chan struct{}
	reviewBegun chan struct{}
	created     []dto.SkillPayload
	listBlock   map[string]chan struct{}
	listResults map[string][]models.Skill
}

func newFakeSkills(skills ...models.Skill) *fakeSkills {
	f := &fakeSkills{skills: map[int64]models.Skill{}, missing: map[int64]bool{}}
	for _, s := range skills {
		f.skills[s.ID] = s
	}
	return f
}

func (f *fakeSkills) FindByID(_ context.Context, id int64) (*models.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	s, ok := f.skills[id]
	if !ok || f.missing[id] {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Skill not found")
	}
	return &s, nil
}

func (f *fakeSkills) List(_ context.Context, filter dto.SkillFilter) ([]models.Skill, error) {
	f.mu.Lock()
	f.listCalls++
	f.lastFilter = filter
	block := f.listBlock[filter.Search]
	result, scripted := f.listResults[filter.Search]
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if scripted {
		return result, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Skill, 0, len(f.skills))
	for id := int64(1); id <= int64(len(f.skills))+100; id++ {
		if s, ok := f.skills[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSkills) Create(_ context.Context, payload dto.SkillPayload) (*models.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, payload)
	s := models.Skill{ID: int64(500 + len(f.created)), TeacherID: payload.TeacherID, Title: payload.Title, Language: payload.Language}
	f.skills[s.ID] = s
	return &s, nil
}

func (f *fakeSkills) Update(_ context.Context, id int64, update dto.SkillUpdate) (*models.Skill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.skills[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	if update.Title != nil {
		s.Title = *update.Title
	}
	f.skills[id] = s
	return &s, nil
}

func (f *fakeSkills) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.skills, id)
	return nil
}

func (f *fakeSkills) Reviews(_ context.Context, skillID int64) ([]models.Review, error) {
	return []models.Review{{ID: 1, SkillID: skillID, ReviewerID: 9, Rating: 5}}, nil
}

func (f *fakeSkills) AddReview(_ context.Context, skillID int64, req dto.ReviewRequest) (*models.Review, error) {
	if f.reviewGate != nil {
		f.reviewBegun <- struct{}{}
		<-f.reviewGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	f.reviews = append(f.reviews, req)
	s := f.skills[skillID]
	s.ReviewCount++
	s.Rating = float64(req.Rating)
	f.skills[skillID] = s
	return &models.Review{ID: int64(len(f.reviews)), SkillID: skillID, Rating: req.Rating, Comment: req.Comment}, nil
}

type fakeUsers struct {
	mu      sync.Mutex
	users   map[int64]models.User
	me      models.User
	updated []dto.ProfileUpdate
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
	}
	return &u, nil
}

func (f *fakeUsers) Me(context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.me
	return &u, nil
}

func (f *fakeUsers) UpdateMe(_ context.Context, update dto.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, update)
	if update.Bio != nil {
		f.me.Bio = *update.Bio
	}
	u := f.me
	return &u, nil
}

type fakeChats struct {
	mu          sync.Mutex
	chats       []models.Chat
	messages    map[int64][]models.Message
	sendErr     error
	messagesErr error
	opened      []int64
	openErr     error
	onSend      func()
}

func (f *fakeChats) List(context.Context) ([]models.Chat, error) {
	return f.chats, nil
}

func (f *fakeChats) Messages(_ context.Context, chatID int64) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.messagesErr != nil {
		return nil, f.messagesErr
	}
	out := make([]models.Message, len(f.messages[chatID]))
	copy(out, f.messages[chatID])
	return out, nil
}

func (f *fakeChats) Send(_ context.Context, chatID int64, content string) (*models.Message, error) {
	if f.onSend != nil {
		f.onSend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if f.messages == nil {
		f.messages = map[int64][]models.Message{}
	}
	m := models.Message{ID: int64(len(f.messages[chatID]) + 1), ChatID: chatID, SenderID: 1, Content: content}
	f.messages[chatID] = append(f.messages[chatID], m)
	return &m, nil
}

func (f *fakeChats) GetOrCreate(_ context.Context, userID int64) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, userID)
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &models.Chat{ID: 77, User1ID: 1, User2ID: userID}, nil
}

type busRecorder struct {
	mu            sync.Mutex
	signals       []events.Signal
	notifications []events.Notification
	toasts        []events.Toast
}

func recordBus(bus *events.Bus) *busRecorder {
	r := &busRecorder{}
	for _, sig := range []events.Signal{events.TokensUpdated, events.ReviewSubmitted} {
		bus.OnSignal(sig, func(_ context.Context, s events.Signal) {
			r.mu.Lock()
			r.signals = append(r.signals, s)
			r.mu.Unlock()
		})
	}
	bus.OnNotification(func(_ context.Context, n events.Notification) {
		r.mu.Lock()
		r.notifications = append(r.notifications, n)
		r.mu.Unlock()
	})
	bus.OnToast(func(_ context.Context, t events.Toast) {
		r.mu.Lock()
		r.toasts = append(r.toasts, t)
		r.mu.Unlock()
	})
	return r
}

func (r *busRecorder) count(sig events.Signal) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.signals {
		if s == sig {
			n++
		}
	}
	return n
}

func (r *busRecorder) lastToast() events.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return events.Toast{}
	}
	return r.toasts[len(r.toasts)-1]
}

func newTestStore() *state.Store {
	return state.NewStore(nil, nil)
}

func at(t time.Time) models.Timestamp {
	return models.NewTimestamp(t)
}

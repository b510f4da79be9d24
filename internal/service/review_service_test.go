package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/events"
	"github.com/noah-isme/circleed-client/internal/models"
	"github.com/noah-isme/circleed-client/internal/state"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

func newReviewFixture(t *testing.T, sessions ...models.Session) (*ReviewService, *fakeSkills, *busRecorder, *state.Store) {
	t.Helper()
	skills := newFakeSkills(models.Skill{ID: 1, TeacherID: 2, Title: "Go", Rating: 4})
	store := newTestStore()
	if len(sessions) > 0 {
		seq := store.Begin(state.KeyBookings)
		store.Commit(state.KeyBookings, seq, &dto.BookingsState{
			Viewer:   models.User{ID: 1},
			Sessions: sessions,
			Skills:   map[int64]models.Skill{1: {ID: 1, Title: "Go", Rating: 4}},
		})
	}
	bus := events.NewBus(nil, nil)
	return NewReviewService(skills, bus, store, nil, nil), skills, recordBus(bus), store
}

func TestReviewServiceSubmitWithoutTargetIsNoop(t *testing.T) {
	svc, skills, rec, _ := newReviewFixture(t, models.Session{ID: 5, SkillID: 1, StudentID: 1, TeacherID: 2, Status: models.SessionCompleted})

	_, err := svc.Submit(context.Background(), 5, "great")
	assert.True(t, errors.Is(err, appErrors.ErrNoReviewTarget))
	assert.Empty(t, skills.reviews)
	assert.Zero(t, skills.findCalls)
	assert.Zero(t, rec.count(events.ReviewSubmitted))
}

func TestReviewServiceSubmit(t *testing.T) {
	svc, skills, rec, store := newReviewFixture(t, models.Session{ID: 5, SkillID: 1, StudentID: 1, TeacherID: 2, Status: models.SessionCompleted})
	svc.Open(5)

	review, err := svc.Submit(context.Background(), 5, "great")
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	require.Len(t, skills.reviews, 1)
	assert.Equal(t, dto.ReviewRequest{Rating: 5, Comment: "great"}, skills.reviews[0])
	assert.Zero(t, svc.Target())
	assert.Equal(t, 1, rec.count(events.ReviewSubmitted))
	assert.Equal(t, "Review submitted", rec.lastToast().Title)

	current, err := state.Get[*dto.BookingsState](store, state.KeyBookings)
	require.NoError(t, err)
	assert.Equal(t, 5, current.Sessions[0].ReviewSubmitted)
	assert.Equal(t, 1, current.Skills[1].ReviewCount)

	_, err = svc.Submit(context.Background(), 4, "again")
	assert.True(t, errors.Is(err, appErrors.ErrNoReviewTarget))
}

func TestReviewServiceGuards(t *testing.T) {
	cases := []struct {
		name    string
		session models.Session
		target  int64
		want    error
	}{
		{"already reviewed", models.Session{ID: 5, SkillID: 1, StudentID: 1, Status: models.SessionCompleted, ReviewSubmitted: 3}, 5, appErrors.ErrAlreadyReviewed},
		{"teacher", models.Session{ID: 5, SkillID: 1, TeacherID: 1, StudentID: 3, Status: models.SessionCompleted}, 5, appErrors.ErrActionNotAllowed},
		{"not completed", models.Session{ID: 5, SkillID: 1, StudentID: 1, Status: models.SessionConfirmed}, 5, appErrors.ErrActionNotAllowed},
		{"unknown session", models.Session{ID: 5, SkillID: 1, StudentID: 1, Status: models.SessionCompleted}, 6, appErrors.ErrNoReviewTarget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, skills, _, _ := newReviewFixture(t, tc.session)
			svc.Open(tc.target)

			_, err := svc.Submit(context.Background(), 5, "")
			assert.True(t, errors.Is(err, tc.want))
			assert.Empty(t, skills.reviews)
		})
	}
}

func TestReviewServiceRejectsConcurrentSubmit(t *testing.T) {
	svc, skills, rec, _ := newReviewFixture(t, models.Session{ID: 5, SkillID: 1, StudentID: 1, TeacherID: 2, Status: models.SessionCompleted})
	skills.reviewGate = make(chan struct{})
	skills.reviewBegun = make(chan struct{}, 2)
	svc.Open(5)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), 5, "first")
		done <- err
	}()
	<-skills.reviewBegun

	_, err := svc.Submit(context.Background(), 5, "second")
	assert.True(t, errors.Is(err, appErrors.ErrActionInFlight))

	close(skills.reviewGate)
	require.NoError(t, <-done)
	assert.Len(t, skills.reviews, 1)
	assert.Equal(t, 1, rec.count(events.ReviewSubmitted))

	svc.Open(5)
	_, err = svc.Submit(context.Background(), 5, "third")
	assert.True(t, errors.Is(err, appErrors.ErrAlreadyReviewed))
	assert.Len(t, skills.reviews, 1)
}

func TestReviewServiceRejectsBadRating(t *testing.T) {
	svc, skills, _, _ := newReviewFixture(t, models.Session{ID: 5, SkillID: 1, StudentID: 1, Status: models.SessionCompleted})
	svc.Open(5)

	_, err := svc.Submit(context.Background(), 0, "")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, skills.reviews)
	assert.Equal(t, int64(5), svc.Target())
}

func TestReviewServiceBackendFailureKeepsTarget(t *testing.T) {
	svc, skills, rec, _ := newReviewFixture(t, models.Session{ID: 5, SkillID: 1, StudentID: 1, Status: models.SessionCompleted})
	skills.reviewErr = errors.New("boom")
	svc.Open(5)

	_, err := svc.Submit(context.Background(), 4, "")
	require.Error(t, err)
	assert.Equal(t, int64(5), svc.Target())
	assert.Equal(t, "Failed to submit review", rec.lastToast().Title)
	assert.Zero(t, rec.count(events.ReviewSubmitted))
}

func TestReviewerName(t *testing.T) {
	assert.Equal(t, "Ana", ReviewerName(models.Review{ReviewerID: 2, Reviewer: &models.User{FullName: "Ana"}}))
	assert.Equal(t, "User #7", ReviewerName(models.Review{ReviewerID: 7}))
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
)

func TestAllowedActions(t *testing.T) {
	cases := []struct {
		name    string
		session models.Session
		role    dto.Role
		want    []models.SessionAction
	}{
		{"pending student", models.Session{Status: models.SessionPending}, dto.RoleStudent, []models.SessionAction{models.ActionCancel}},
		{"pending teacher", models.Session{Status: models.SessionPending}, dto.RoleTeacher, []models.SessionAction{models.ActionConfirm, models.ActionDecline}},
		{"confirmed teacher", models.Session{Status: models.SessionConfirmed}, dto.RoleTeacher, []models.SessionAction{models.ActionComplete}},
		{"confirmed student", models.Session{Status: models.SessionConfirmed}, dto.RoleStudent, []models.SessionAction{}},
		{"completed student", models.Session{Status: models.SessionCompleted}, dto.RoleStudent, []models.SessionAction{models.ActionReview}},
		{"completed reviewed", models.Session{Status: models.SessionCompleted, ReviewSubmitted: 4}, dto.RoleStudent, []models.SessionAction{}},
		{"completed teacher", models.Session{Status: models.SessionCompleted}, dto.RoleTeacher, []models.SessionAction{}},
		{"cancelled", models.Session{Status: models.SessionCancelled}, dto.RoleTeacher, []models.SessionAction{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AllowedActions(tc.session, tc.role))
		})
	}
}

func TestActionAllowedUsesViewerRoles(t *testing.T) {
	pending := models.Session{ID: 1, TeacherID: 2, StudentID: 1, Status: models.SessionPending}

	assert.True(t, ActionAllowed(pending, 1, models.ActionCancel))
	assert.False(t, ActionAllowed(pending, 1, models.ActionConfirm))
	assert.True(t, ActionAllowed(pending, 2, models.ActionConfirm))
	assert.False(t, ActionAllowed(pending, 3, models.ActionCancel))

	self := models.Session{TeacherID: 5, StudentID: 5, Status: models.SessionPending}
	assert.Equal(t, []dto.Role{dto.RoleStudent, dto.RoleTeacher}, RolesOf(self, 5))
	assert.True(t, ActionAllowed(self, 5, models.ActionDecline))
}

func TestFilterSessions(t *testing.T) {
	sessions := []models.Session{
		{ID: 1, Status: models.SessionPending},
		{ID: 2, Status: models.SessionCompleted, ReviewSubmitted: 5},
	}

	upcoming := FilterSessions(sessions, dto.TabUpcoming)
	past := FilterSessions(sessions, dto.TabPast)
	all := FilterSessions(sessions, dto.TabAll)

	assert.Len(t, upcoming, 1)
	assert.Equal(t, int64(1), upcoming[0].ID)
	assert.Len(t, past, 1)
	assert.Equal(t, int64(2), past[0].ID)
	assert.Len(t, all, 2)
}

package service

import (
	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
)

// RolesOf returns every role viewerID holds in s. A user booking their own
// skill is both student and teacher.
func RolesOf(s models.Session, viewerID int64) []dto.Role {
	var roles []dto.Role
	if s.StudentID == viewerID {
		roles = append(roles, dto.RoleStudent)
	}
	if s.TeacherID == viewerID {
		roles = append(roles, dto.RoleTeacher)
	}
	return roles
}

// AllowedActions lists the actions offered to role on s.
//
//	pending   + student -> cancel
//	pending   + teacher -> confirm, decline
//	confirmed + teacher -> complete
//	completed + student -> review, until a review is recorded
func AllowedActions(s models.Session, role dto.Role) []models.SessionAction {
	switch s.Status {
	case models.SessionPending:
		switch role {
		case dto.RoleStudent:
			return []models.SessionAction{models.ActionCancel}
		case dto.RoleTeacher:
			return []models.SessionAction{models.ActionConfirm, models.ActionDecline}
		}
	case models.SessionConfirmed:
		if role == dto.RoleTeacher {
			return []models.SessionAction{models.ActionComplete}
		}
	case models.SessionCompleted:
		if role == dto.RoleStudent && !s.Reviewed() {
			return []models.SessionAction{models.ActionReview}
		}
	}
	return []models.SessionAction{}
}

// ActionAllowed reports whether viewerID may perform action on s in any of
// their roles.
func ActionAllowed(s models.Session, viewerID int64, action models.SessionAction) bool {
	for _, role := range RolesOf(s, viewerID) {
		for _, allowed := range AllowedActions(s, role) {
			if allowed == action {
				return true
			}
		}
	}
	return false
}

// FilterSessions keeps the sessions shown on tab, preserving order.
func FilterSessions(sessions []models.Session, tab dto.Tab) []models.Session {
	out := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		switch tab {
		case dto.TabUpcoming:
			if !s.Upcoming() {
				continue
			}
		case dto.TabPast:
			if !s.Past() {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

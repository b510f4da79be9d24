package dto

import (
	"fmt"
	"time"

	"github.com/noah-isme/circleed-client/internal/models"
)

// Tab selects which sessions a booking listing shows.
type Tab string

const (
	TabAll      Tab = "all"
	TabUpcoming Tab = "upcoming"
	TabPast     Tab = "past"
)

// ParseTab maps user input to a Tab; unknown values are rejected.
func ParseTab(raw string) (Tab, error) {
	switch Tab(raw) {
	case "", TabAll:
		return TabAll, nil
	case TabUpcoming, TabPast:
		return Tab(raw), nil
	default:
		return "", fmt.Errorf("unknown tab %q", raw)
	}
}

// Role is the viewer's side of a session.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleNone    Role = ""
)

// BookSessionRequest is the body of POST /sessions.
type BookSessionRequest struct {
	SkillID         int64     `json:"skill_id" validate:"required"`
	TeacherID       int64     `json:"teacher_id" validate:"required"`
	StudentID       int64     `json:"student_id" validate:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=15,max=480"`
}

// BookingsState is the joined session data the booking view renders from.
type BookingsState struct {
	Viewer   models.User            `json:"viewer"`
	Sessions []models.Session       `json:"sessions"`
	Skills   map[int64]models.Skill `json:"skills"`
	Users    map[int64]models.User  `json:"users"`
}

// BookingView is a denormalized session row.
type BookingView struct {
	ID               int64                  `json:"id"`
	SkillID          int64                  `json:"skill_id"`
	SkillTitle       string                 `json:"skill_title"`
	TeacherName      string                 `json:"teacher_name"`
	StudentName      string                 `json:"student_name"`
	Status           models.SessionStatus   `json:"status"`
	ScheduledAt      time.Time              `json:"scheduled_at"`
	DurationMinutes  int                    `json:"duration_minutes"`
	TokensPerSession int                    `json:"tokens_per_session"`
	ReviewSubmitted  int                    `json:"review_submitted"`
	Actions          []models.SessionAction `json:"actions"`
	Loading          bool                   `json:"loading"`
}

// BookingsView splits the filtered sessions by the viewer's role.
type BookingsView struct {
	Tab       Tab           `json:"tab"`
	AsStudent []BookingView `json:"as_student"`
	AsTeacher []BookingView `json:"as_teacher"`
}

// ActionResult reports a completed session transition.
type ActionResult struct {
	SessionID int64                `json:"session_id"`
	Action    models.SessionAction `json:"action"`
	Status    models.SessionStatus `json:"status"`
}

// BookingConfirmation is returned after booking a slot.
type BookingConfirmation struct {
	Session models.Session `json:"session"`
	Chat    *models.Chat   `json:"chat,omitempty"`
}

package models

// SessionStatus is the backend-owned lifecycle state of a learning session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionConfirmed SessionStatus = "confirmed"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// SessionAction names a transition the client can request.
type SessionAction string

const (
	ActionConfirm  SessionAction = "confirm"
	ActionDecline  SessionAction = "decline"
	ActionCancel   SessionAction = "cancel"
	ActionComplete SessionAction = "complete"
	// ActionReview is offered on completed sessions but handled by the review flow.
	ActionReview SessionAction = "review"
)

// DefaultSessionMinutes is the duration requested when booking.
const DefaultSessionMinutes = 60

// Session is a booked learning session between a student and a teacher.
type Session struct {
	ID              int64         `json:"id"`
	SkillID         int64         `json:"skill_id"`
	TeacherID       int64         `json:"teacher_id"`
	StudentID       int64         `json:"student_id"`
	ScheduledAt     Timestamp     `json:"scheduled_at"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          SessionStatus `json:"status"`
	ReviewSubmitted int           `json:"review_submitted"`
	CreatedAt       Timestamp     `json:"created_at"`
}

// Reviewed reports whether a review has been recorded for the session.
func (s Session) Reviewed() bool {
	return s.ReviewSubmitted > 0
}

// Upcoming reports whether the session is still pending or confirmed.
func (s Session) Upcoming() bool {
	return s.Status == SessionPending || s.Status == SessionConfirmed
}

// Past reports whether the session reached a terminal status.
func (s Session) Past() bool {
	return s.Status == SessionCompleted || s.Status == SessionCancelled
}

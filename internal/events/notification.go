package events

import "fmt"

// NotificationKind classifies notifications.
type NotificationKind string

const (
	SessionAccepted  NotificationKind = "session_accepted"
	SessionRejected  NotificationKind = "session_rejected"
	SessionCompleted NotificationKind = "session_completed"
	TokensEarned     NotificationKind = "tokens_earned"
)

// NotificationData carries the structured details of a notification.
type NotificationData struct {
	SessionID   int64  `json:"session_id,omitempty"`
	Tokens      int    `json:"tokens,omitempty"`
	SkillName   string `json:"skill_name,omitempty"`
	TeacherName string `json:"teacher_name,omitempty"`
}

// Notification is a human-readable account of a session or token change.
type Notification struct {
	Kind    NotificationKind `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Data    NotificationData `json:"data"`
}

// SessionAcceptedNotification tells a student the teacher accepted.
func SessionAcceptedNotification(skillName, teacherName string, sessionID int64) Notification {
	message := fmt.Sprintf("Your session for %q has been accepted", skillName)
	if teacherName != "" {
		message += " by " + teacherName
	}
	return Notification{
		Kind:    SessionAccepted,
		Title:   "Session Accepted",
		Message: message + ".",
		Data:    NotificationData{SessionID: sessionID, SkillName: skillName, TeacherName: teacherName},
	}
}

// SessionRejectedNotification tells a student the request was declined.
func SessionRejectedNotification(skillName string, sessionID int64) Notification {
	return Notification{
		Kind:    SessionRejected,
		Title:   "Session Declined",
		Message: fmt.Sprintf("Your session request for %q has been declined. Tokens have been refunded.", skillName),
		Data:    NotificationData{SessionID: sessionID, SkillName: skillName},
	}
}

// SessionCompletedNotification reports a session marked complete.
func SessionCompletedNotification(skillName string, sessionID int64) Notification {
	return Notification{
		Kind:    SessionCompleted,
		Title:   "Session Completed",
		Message: fmt.Sprintf("Your session for %q has been marked as complete.", skillName),
		Data:    NotificationData{SessionID: sessionID, SkillName: skillName},
	}
}

// TokensEarnedNotification reports tokens credited to the teacher.
func TokensEarnedNotification(tokens int, skillName string, sessionID int64) Notification {
	return Notification{
		Kind:    TokensEarned,
		Title:   "Tokens Earned",
		Message: fmt.Sprintf("You earned %d tokens from teaching %q.", tokens, skillName),
		Data:    NotificationData{SessionID: sessionID, Tokens: tokens, SkillName: skillName},
	}
}

// ToastLevel is the severity of a toast.
type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
	ToastWarning ToastLevel = "warning"
)

// Toast is a transient status message for the user.
type Toast struct {
	Level   ToastLevel `json:"type"`
	Title   string     `json:"title"`
	Message string     `json:"message,omitempty"`
}

package dto

import (
	"time"

	"github.com/noah-isme/circleed-client/internal/models"
)

// DashboardUpcoming is an upcoming session enriched with its skill.
type DashboardUpcoming struct {
	SessionID        int64                `json:"session_id"`
	SkillID          int64                `json:"skill_id"`
	SkillTitle       string               `json:"skill_title"`
	TokensPerSession int                  `json:"tokens_per_session"`
	Status           models.SessionStatus `json:"status"`
	ScheduledAt      time.Time            `json:"scheduled_at"`
	DurationMinutes  int                  `json:"duration_minutes"`
}

// DashboardSummary is the dashboard view model.
type DashboardSummary struct {
	UserName      string              `json:"user_name"`
	TokenBalance  int                 `json:"token_balance"`
	Streak        int                 `json:"streak"`
	Upcoming      []DashboardUpcoming `json:"upcoming"`
	UpcomingCount int                 `json:"upcoming_count"`
	SkillsLearned int                 `json:"skills_learned"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

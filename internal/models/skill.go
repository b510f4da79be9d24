package models

// Skill is a teachable offering listed on the marketplace.
type Skill struct {
	ID               int64          `json:"id"`
	TeacherID        int64          `json:"teacher_id"`
	Teacher          *User          `json:"teacher,omitempty"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Category         string         `json:"category"`
	Level            string         `json:"level"`
	Language         string         `json:"language"`
	TokensPerSession int            `json:"tokens_per_session"`
	Rating           float64        `json:"rating"`
	ReviewCount      int            `json:"review_count"`
	Badges           []string       `json:"badges,omitempty"`
	Availability     []Availability `json:"availability,omitempty"`
}

// Availability lists the bookable time slots of one weekday.
type Availability struct {
	Day       string   `json:"day"`
	TimeSlots []string `json:"timeSlots"`
}

// TeacherName returns the embedded teacher's display name, or "Unknown".
func (s Skill) TeacherName() string {
	if s.Teacher != nil && s.Teacher.FullName != "" {
		return s.Teacher.FullName
	}
	return "Unknown"
}

// Review is a star rating left on a skill.
type Review struct {
	ID         int64     `json:"id"`
	SkillID    int64     `json:"skill_id"`
	ReviewerID int64     `json:"reviewer_id"`
	Reviewer   *User     `json:"reviewer,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  Timestamp `json:"created_at"`
}

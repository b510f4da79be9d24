package models

// User is a CircleEd account as returned by the backend.
type User struct {
	ID            int64    `json:"id"`
	Email         string   `json:"email"`
	FullName      string   `json:"full_name"`
	Bio           string   `json:"bio,omitempty"`
	AvatarURL     string   `json:"avatar_url,omitempty"`
	TokenBalance  int      `json:"token_balance"`
	Streak        int      `json:"streak"`
	IsActive      bool     `json:"is_active"`
	SkillsToTeach []string `json:"skills_to_teach"`
	SkillsToLearn []string `json:"skills_to_learn"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

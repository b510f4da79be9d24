package dto

// LoginRequest carries credentials for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterRequest creates a new account via POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=120"`
}

// ProfileUpdate is a partial update for PUT /users/me.
type ProfileUpdate struct {
	FullName      *string  `json:"full_name,omitempty" validate:"omitempty,min=1,max=120"`
	Bio           *string  `json:"bio,omitempty" validate:"omitempty,max=1000"`
	AvatarURL     *string  `json:"avatar_url,omitempty" validate:"omitempty,url"`
	SkillsToTeach []string `json:"skills_to_teach,omitempty" validate:"omitempty,dive,required"`
	SkillsToLearn []string `json:"skills_to_learn,omitempty" validate:"omitempty,dive,required"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.FullName == nil && p.Bio == nil && p.AvatarURL == nil && p.SkillsToTeach == nil && p.SkillsToLearn == nil
}

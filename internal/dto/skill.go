package dto

import (
	"net/url"
	"strings"

	"github.com/noah-isme/circleed-client/internal/models"
)

// AllOption is the catalogue value meaning "no filter".
const AllOption = "all"

// Marketplace option catalogues.
var (
	SkillCategories = []string{"Programming", "Languages", "Design", "Business", "Music"}
	SkillLevels     = []string{"Beginner", "Intermediate", "Advanced"}
	SkillLanguages  = []string{"English", "Spanish", "French", "Mandarin"}
)

// SkillFilter narrows GET /skills. Empty or "all" fields are not sent.
type SkillFilter struct {
	Category string `json:"category,omitempty"`
	Level    string `json:"level,omitempty"`
	Language string `json:"language,omitempty"`
	Search   string `json:"search,omitempty"`
}

// Normalize trims values and clears "all" selections.
func (f SkillFilter) Normalize() SkillFilter {
	clean := func(v string) string {
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, AllOption) {
			return ""
		}
		return v
	}
	return SkillFilter{
		Category: clean(f.Category),
		Level:    clean(f.Level),
		Language: clean(f.Language),
		Search:   strings.TrimSpace(f.Search),
	}
}

// Active reports whether any filter narrows the query.
func (f SkillFilter) Active() bool {
	n := f.Normalize()
	return n.Category != "" || n.Level != "" || n.Language != "" || n.Search != ""
}

// Query encodes the normalized filter as URL parameters.
func (f SkillFilter) Query() url.Values {
	n := f.Normalize()
	q := url.Values{}
	if n.Category != "" {
		q.Set("category", n.Category)
	}
	if n.Level != "" {
		q.Set("level", n.Level)
	}
	if n.Language != "" {
		q.Set("language", n.Language)
	}
	if n.Search != "" {
		q.Set("search", n.Search)
	}
	return q
}

// SkillPayload creates a skill via POST /skills.
type SkillPayload struct {
	TeacherID        int64                 `json:"teacher_id,omitempty"`
	Title            string                `json:"title" validate:"required,max=200"`
	Description      string                `json:"description" validate:"required"`
	Category         string                `json:"category" validate:"required"`
	Level            string                `json:"level" validate:"required,oneof=Beginner Intermediate Advanced"`
	Language         string                `json:"language" validate:"required"`
	TokensPerSession int                   `json:"tokens_per_session" validate:"min=1"`
	Availability     []models.Availability `json:"availability"`
}

// SkillUpdate is a partial update for PUT /skills/{id}.
type SkillUpdate struct {
	Title            *string               `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description      *string               `json:"description,omitempty"`
	Category         *string               `json:"category,omitempty"`
	Level            *string               `json:"level,omitempty" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Language         *string               `json:"language,omitempty"`
	TokensPerSession *int                  `json:"tokens_per_session,omitempty" validate:"omitempty,min=1"`
	Availability     []models.Availability `json:"availability,omitempty"`
}

// ReviewRequest is the body of POST /skills/{id}/reviews.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// MarketplaceState is the latest marketplace result set.
type MarketplaceState struct {
	Filter SkillFilter    `json:"filter"`
	Skills []models.Skill `json:"skills"`
}

package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
)

// SkillRepository wraps the /skills endpoints.
type SkillRepository struct {
	api *APIClient
}

// NewSkillRepository constructs a skill repository.
func NewSkillRepository(api *APIClient) *SkillRepository {
	return &SkillRepository{api: api}
}

// List returns skills matching filter; empty and "all" fields are omitted.
func (r *SkillRepository) List(ctx context.Context, filter dto.SkillFilter) ([]models.Skill, error) {
	var skills []models.Skill
	if err := r.api.Get(ctx, "/skills", filter.Query(), &skills); err != nil {
		return nil, err
	}
	return skills, nil
}

// FindByID returns one skill.
func (r *SkillRepository) FindByID(ctx context.Context, id int64) (*models.Skill, error) {
	var skill models.Skill
	if err := r.api.Get(ctx, fmt.Sprintf("/skills/%d", id), nil, &skill); err != nil {
		return nil, err
	}
	return &skill, nil
}

// Create lists a new skill taught by the current user.
func (r *SkillRepository) Create(ctx context.Context, payload dto.SkillPayload) (*models.Skill, error) {
	var skill models.Skill
	if err := r.api.Post(ctx, "/skills", payload, &skill); err != nil {
		return nil, err
	}
	return &skill, nil
}

// Update applies a partial update.
func (r *SkillRepository) Update(ctx context.Context, id int64, update dto.SkillUpdate) (*models.Skill, error) {
	var skill models.Skill
	if err := r.api.Put(ctx, fmt.Sprintf("/skills/%d", id), update, &skill); err != nil {
		return nil, err
	}
	return &skill, nil
}

// Delete removes a skill.
func (r *SkillRepository) Delete(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, fmt.Sprintf("/skills/%d", id), nil)
}

// Reviews lists the reviews of a skill.
func (r *SkillRepository) Reviews(ctx context.Context, skillID int64) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.api.Get(ctx, fmt.Sprintf("/skills/%d/reviews", skillID), nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// AddReview posts a review for a skill.
func (r *SkillRepository) AddReview(ctx context.Context, skillID int64, req dto.ReviewRequest) (*models.Review, error) {
	var review models.Review
	if err := r.api.Post(ctx, fmt.Sprintf("/skills/%d/reviews", skillID), req, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

const defaultSkillLanguage = "English"

type skillWriter interface {
	List(ctx context.Context, filter dto.SkillFilter) ([]models.Skill, error)
	Create(ctx context.Context, payload dto.SkillPayload) (*models.Skill, error)
	Update(ctx context.Context, id int64, update dto.SkillUpdate) (*models.Skill, error)
	Delete(ctx context.Context, id int64) error
}

// TeachService manages the skills the viewer teaches.
type TeachService struct {
	skills    skillWriter
	viewer    viewerSource
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeachService wires a TeachService.
func NewTeachService(skills skillWriter, viewer viewerSource, validate *validator.Validate, logger *zap.Logger) *TeachService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TeachService{skills: skills, viewer: viewer, validator: validate, logger: logger}
}

// MySkills lists the skills taught by the viewer.
func (s *TeachService) MySkills(ctx context.Context) ([]models.Skill, error) {
	viewer, err := s.viewer.CachedUser(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.skills.List(ctx, dto.SkillFilter{})
	if err != nil {
		return nil, err
	}
	own := make([]models.Skill, 0)
	for _, skill := range all {
		if skill.TeacherID == viewer.ID || (skill.Teacher != nil && skill.Teacher.ID == viewer.ID) {
			own = append(own, skill)
		}
	}
	return own, nil
}

// Create lists a new skill taught by the viewer.
func (s *TeachService) Create(ctx context.Context, payload dto.SkillPayload) (*models.Skill, error) {
	viewer, err := s.viewer.CachedUser(ctx)
	if err != nil {
		return nil, err
	}
	payload.TeacherID = viewer.ID
	if strings.TrimSpace(payload.Language) == "" {
		payload.Language = defaultSkillLanguage
	}
	if payload.Availability == nil {
		payload.Availability = []models.Availability{}
	}
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid skill")
	}
	skill, err := s.skills.Create(ctx, payload)
	if err != nil {
		return nil, err
	}
	s.logger.Info("skill created", zap.Int64("skill_id", skill.ID))
	return skill, nil
}

// Update changes one of the viewer's skills.
func (s *TeachService) Update(ctx context.Context, id int64, update dto.SkillUpdate) (*models.Skill, error) {
	if err := s.validator.Struct(update); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid skill update")
	}
	return s.skills.Update(ctx, id, update)
}

// Delete removes one of the viewer's skills.
func (s *TeachService) Delete(ctx context.Context, id int64) error {
	if err := s.skills.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("skill deleted", zap.Int64("skill_id", id))
	return nil
}

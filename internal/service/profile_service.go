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

type profileRepository interface {
	Me(ctx context.Context) (*models.User, error)
	UpdateMe(ctx context.Context, update dto.ProfileUpdate) (*models.User, error)
}

type upcomingLister interface {
	Upcoming(ctx context.Context) ([]models.Session, error)
}

type userCache interface {
	SaveUser(ctx context.Context, user models.User) error
}

// ProfileService reads and edits the viewer's profile.
type ProfileService struct {
	users     profileRepository
	sessions  upcomingLister
	cache     userCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService wires a ProfileService.
func NewProfileService(users profileRepository, sessions upcomingLister, cache userCache, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{users: users, sessions: sessions, cache: cache, validator: validate, logger: logger}
}

// Me returns the viewer's profile from the backend.
func (s *ProfileService) Me(ctx context.Context) (*models.User, error) {
	return s.users.Me(ctx)
}

// Update applies update and refreshes the cached user snapshot.
func (s *ProfileService) Update(ctx context.Context, update dto.ProfileUpdate) (*models.User, error) {
	if update.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	if err := s.validator.Struct(update); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile update")
	}
	user, err := s.users.UpdateMe(ctx, update)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SaveUser(ctx, *user); err != nil {
			s.logger.Warn("cache updated user", zap.Error(err))
		}
	}
	return user, nil
}

// Upcoming returns the viewer's upcoming sessions as a student.
func (s *ProfileService) Upcoming(ctx context.Context) ([]models.Session, error) {
	return s.sessions.Upcoming(ctx)
}

// ProfileComplete reports whether user has a bio or at least one skill to
// teach or learn.
func ProfileComplete(user models.User) bool {
	return strings.TrimSpace(user.Bio) != "" || len(user.SkillsToTeach) > 0 || len(user.SkillsToLearn) > 0
}

// ParseSkillList splits a comma separated list, dropping blanks.
func ParseSkillList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

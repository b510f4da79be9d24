package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

func TestTeachServiceMySkills(t *testing.T) {
	skills := newFakeSkills(
		models.Skill{ID: 1, TeacherID: 1, Title: "Go"},
		models.Skill{ID: 2, TeacherID: 2, Title: "Piano"},
		models.Skill{ID: 3, Teacher: &models.User{ID: 1}, Title: "Chess"},
	)
	svc := NewTeachService(skills, fakeViewer{user: &models.User{ID: 1}}, nil, nil)

	own, err := svc.MySkills(context.Background())
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, "Go", own[0].Title)
	assert.Equal(t, "Chess", own[1].Title)
}

func TestTeachServiceCreateSetsTeacherAndLanguage(t *testing.T) {
	skills := newFakeSkills()
	svc := NewTeachService(skills, fakeViewer{user: &models.User{ID: 7}}, nil, nil)

	skill, err := svc.Create(context.Background(), dto.SkillPayload{
		TeacherID:        99,
		Title:            "Go",
		Description:      "Concurrency basics",
		Category:         "Programming",
		Level:            "Beginner",
		TokensPerSession: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), skill.TeacherID)

	require.Len(t, skills.created, 1)
	assert.Equal(t, "English", skills.created[0].Language)
	assert.NotNil(t, skills.created[0].Availability)
}

func TestTeachServiceCreateValidates(t *testing.T) {
	skills := newFakeSkills()
	svc := NewTeachService(skills, fakeViewer{user: &models.User{ID: 7}}, nil, nil)

	_, err := svc.Create(context.Background(), dto.SkillPayload{Title: "Go", Level: "Expert"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, skills.created)
}

func TestTeachServiceUpdateAndDelete(t *testing.T) {
	skills := newFakeSkills(models.Skill{ID: 1, TeacherID: 1, Title: "Go"})
	svc := NewTeachService(skills, fakeViewer{user: &models.User{ID: 1}}, nil, nil)
	ctx := context.Background()

	title := "Advanced Go"
	updated, err := svc.Update(ctx, 1, dto.SkillUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	bad := "Guru"
	_, err = svc.Update(ctx, 1, dto.SkillUpdate{Level: &bad})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	require.NoError(t, svc.Delete(ctx, 1))
	_, err = skills.FindByID(ctx, 1)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

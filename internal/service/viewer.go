package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/circleed-client/internal/models"
)

type viewerSource interface {
	CachedUser(ctx context.Context) (*models.User, error)
}

type skillLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Skill, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

func skillPlaceholder(id int64) string   { return fmt.Sprintf("Skill #%d", id) }
func teacherPlaceholder(id int64) string { return fmt.Sprintf("Teacher #%d", id) }
func studentPlaceholder(id int64) string { return fmt.Sprintf("Student #%d", id) }
func userPlaceholder(id int64) string    { return fmt.Sprintf("User #%d", id) }
func chatPlaceholder(id int64) string    { return fmt.Sprintf("Chat #%d", id) }

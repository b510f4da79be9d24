package repository

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/models"
)

func TestSessionTransitionPostsAction(t *testing.T) {
	var gotPath string
	srv := newBackend(t, func(r *gin.RouterGroup) {
		r.POST("/sessions/:id/:action", func(c *gin.Context) {
			gotPath = c.Request.URL.Path
			c.JSON(http.StatusOK, gin.H{"id": 12, "status": "cancelled"})
		})
	})

	api := NewAPIClient(srv.URL+"/api/v1", time.Second, nil)
	session, err := NewSessionRepository(api).Transition(context.Background(), 12, models.ActionCancel)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/sessions/12/cancel", gotPath)
	assert.Equal(t, models.SessionCancelled, session.Status)
}

func TestSessionBookSendsRequest(t *testing.T) {
	var body map[string]interface{}
	srv := newBackend(t, func(r *gin.RouterGroup) {
		r.POST("/sessions", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&body))
			c.JSON(http.StatusCreated, gin.H{"id": 30, "status": "pending", "scheduled_at": "2024-05-20T10:00:00"})
		})
	})

	api := NewAPIClient(srv.URL+"/api/v1", time.Second, nil)
	when := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	session, err := NewSessionRepository(api).Book(context.Background(), dto.BookSessionRequest{
		SkillID: 1, TeacherID: 2, StudentID: 3, ScheduledAt: when, DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30), session.ID)
	assert.True(t, session.ScheduledAt.Equal(when))
	assert.Equal(t, float64(60), body["duration_minutes"])
	assert.Equal(t, float64(2), body["teacher_id"])
}

func TestTransactionBalance(t *testing.T) {
	srv := newBackend(t, func(r *gin.RouterGroup) {
		r.GET("/transactions/balance", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"balance": 42})
		})
		r.GET("/transactions", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{{"id": 1, "amount": 5, "type": "earn"}})
		})
	})

	repo := NewTransactionRepository(NewAPIClient(srv.URL+"/api/v1", time.Second, nil))
	balance, err := repo.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, balance)

	txs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 5, txs[0].Amount)
}

func TestSkillDeleteAcceptsEmptyBody(t *testing.T) {
	srv := newBackend(t, func(r *gin.RouterGroup) {
		r.DELETE("/skills/:id", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	})

	repo := NewSkillRepository(NewAPIClient(srv.URL+"/api/v1", time.Second, nil))
	assert.NoError(t, repo.Delete(context.Background(), 4))
}

func TestSkillUpdateSendsOnlySetFields(t *testing.T) {
	var body map[string]interface{}
	srv := newBackend(t, func(r *gin.RouterGroup) {
		r.PUT("/skills/:id", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&body))
			c.JSON(http.StatusOK, gin.H{"id": 4, "title": "Go basics"})
		})
	})

	title := "Go basics"
	repo := NewSkillRepository(NewAPIClient(srv.URL+"/api/v1", time.Second, nil))
	skill, err := repo.Update(context.Background(), 4, dto.SkillUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Go basics", skill.Title)
	assert.Equal(t, map[string]interface{}{"title": "Go basics"}, body)
}

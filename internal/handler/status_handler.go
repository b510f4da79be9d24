package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/circleed-client/internal/dto"
	"github.com/noah-isme/circleed-client/internal/state"
	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
	"github.com/noah-isme/circleed-client/pkg/response"
)

type statusService interface {
	Readiness(ctx context.Context) dto.ReadinessReport
	View(name string) (state.Snapshot, error)
	Metrics() dto.RuntimeMetrics
}

// StatusHandler exposes the watcher's health, readiness and view snapshots.
type StatusHandler struct {
	service statusService
	metrics http.Handler
}

// NewStatusHandler constructs the handler. metrics serves the Prometheus
// exposition and may be nil.
func NewStatusHandler(service statusService, metrics http.Handler) *StatusHandler {
	return &StatusHandler{service: service, metrics: metrics}
}

// Health godoc
// @Summary Liveness check
// @Tags Status
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready godoc
// @Summary Readiness check
// @Description Ready once a session token is stored and at least one view has loaded.
// @Tags Status
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ready [get]
func (h *StatusHandler) Ready(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	report := h.service.Readiness(c.Request.Context())
	status := http.StatusOK
	if !report.Ready {
		status = http.StatusServiceUnavailable
	}
	response.JSON(c, status, report)
}

// View godoc
// @Summary Latest snapshot of a view
// @Tags Status
// @Produce json
// @Param view path string true "dashboard, wallet, bookings, marketplace or chats"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /state/{view} [get]
func (h *StatusHandler) View(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	snap, err := h.service.View(c.Param("view"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap.Value, map[string]interface{}{
		"seq":        snap.Seq,
		"updated_at": snap.UpdatedAt,
	})
}

// Snapshot godoc
// @Summary Runtime metrics summary
// @Tags Status
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /metrics/snapshot [get]
func (h *StatusHandler) Snapshot(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Metrics())
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *StatusHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "metrics are disabled"))
		return
	}
	h.metrics.ServeHTTP(c.Writer, c.Request)
}

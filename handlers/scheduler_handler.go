package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/replydesk/responder/environments"
	"github.com/replydesk/responder/internal/scheduler"
	"github.com/replydesk/responder/pkg/response"
	"github.com/replydesk/responder/pkg/validator"
)

type SchedulerHandler struct {
	scheduler *scheduler.Scheduler
	ctx       context.Context
	config    *environments.Config
}

type StartSchedulerRequest struct {
	Interval *int `json:"interval,omitempty" validate:"omitempty,min=1"`
	MaxBatch *int `json:"maxBatch,omitempty" validate:"omitempty,min=1,max=1000"`
}

func NewSchedulerHandler(
	sched *scheduler.Scheduler,
	ctx context.Context,
	cfg *environments.Config,
) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: sched,
		ctx:       ctx,
		config:    cfg,
	}
}

// StartScheduler godoc
// @Summary Start the drain scheduler
// @Description Starts periodic queue drains with optional interval and batch overrides
// @Tags scheduler
// @Accept json
// @Produce json
// @Param x-auth-key header string true "Admin API key"
// @Param request body StartSchedulerRequest false "Scheduler parameters (optional)"
// @Success 200 {object} response.SuccessResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduler/start [post]
func (h *SchedulerHandler) StartScheduler(c echo.Context) error {
	if h.scheduler.IsRunning() {
		return response.OkWithMessage(c, "Scheduler is already running", h.scheduler.GetStatus())
	}

	var req StartSchedulerRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	intervalMinutes := int(h.config.Scheduler.Interval.Minutes())
	if intervalMinutes <= 0 {
		intervalMinutes = 2
	}
	if req.Interval != nil {
		intervalMinutes = *req.Interval
	}

	maxBatch := h.config.Worker.MaxBatch
	if req.MaxBatch != nil {
		maxBatch = *req.MaxBatch
	}

	if err := h.scheduler.StartWithParams(h.ctx, intervalMinutes, maxBatch); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Scheduler started successfully", h.scheduler.GetStatus())
}

// StopScheduler godoc
// @Summary Stop the drain scheduler
// @Description Stops the periodic queue drains
// @Tags scheduler
// @Produce json
// @Param x-auth-key header string true "Admin API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/scheduler/stop [post]
func (h *SchedulerHandler) StopScheduler(c echo.Context) error {
	if !h.scheduler.IsRunning() {
		return response.OkWithMessage(c, "Scheduler is already stopped", h.scheduler.GetStatus())
	}

	if err := h.scheduler.Stop(); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Scheduler stopped successfully", h.scheduler.GetStatus())
}

// GetSchedulerStatus godoc
// @Summary Get scheduler status
// @Description Returns the current scheduler state and drain statistics
// @Tags scheduler
// @Produce json
// @Param x-auth-key header string true "Admin API key"
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/scheduler/status [get]
func (h *SchedulerHandler) GetSchedulerStatus(c echo.Context) error {
	return response.Ok(c, h.scheduler.GetStatus())
}

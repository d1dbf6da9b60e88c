package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/pkg/response"
	"github.com/replydesk/responder/pkg/validator"
)

type drainRunner interface {
	RunOnce(ctx context.Context, maxBatch int) (domain.DrainResult, error)
}

// WorkerHandler exposes the manual drain trigger.
type WorkerHandler struct {
	worker drainRunner
	events eventLogger
}

func NewWorkerHandler(worker drainRunner, events eventLogger) *WorkerHandler {
	return &WorkerHandler{worker: worker, events: events}
}

type RunWorkerRequest struct {
	MaxBatch *int `json:"maxBatch,omitempty" validate:"omitempty,min=1,max=1000"`
}

// RunWorker godoc
// @Summary Trigger a queue drain
// @Description Runs one bounded drain of the job queue and returns the drain summary
// @Tags worker
// @Accept json
// @Produce json
// @Param x-auth-key header string true "Admin API key"
// @Param request body RunWorkerRequest false "Drain parameters (optional)"
// @Success 200 {object} response.SuccessResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/worker/run [post]
func (h *WorkerHandler) RunWorker(c echo.Context) error {
	var req RunWorkerRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	maxBatch := 0
	if req.MaxBatch != nil {
		maxBatch = *req.MaxBatch
	}

	ctx := c.Request().Context()
	h.events.Append(ctx, "worker.run.request", nil)

	result, err := h.worker.RunOnce(ctx, maxBatch)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	h.events.Append(ctx, "worker.run.result", map[string]any{
		"processed": result.Processed,
		"remaining": result.Remaining,
		"deferred":  result.Deferred,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
	})

	return response.Ok(c, result)
}

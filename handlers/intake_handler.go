package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/pkg/response"
)

type jobEnqueuer interface {
	Enqueue(ctx context.Context, job *domain.Job) error
	Length(ctx context.Context) (int64, error)
}

type eventLogger interface {
	Append(ctx context.Context, eventType string, data map[string]any)
}

// IntakeHandler accepts inbound contact-form submissions and queues them.
type IntakeHandler struct {
	queue  jobEnqueuer
	events eventLogger
}

func NewIntakeHandler(queue jobEnqueuer, events eventLogger) *IntakeHandler {
	return &IntakeHandler{queue: queue, events: events}
}

// Intake godoc
// @Summary Accept a contact-form submission
// @Description Accepts an arbitrary JSON form payload and enqueues it for the auto-responder
// @Tags intake
// @Accept json
// @Produce json
// @Param form body map[string]any true "Submitted form fields"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /intake [post]
func (h *IntakeHandler) Intake(c echo.Context) error {
	var payload map[string]any
	if err := c.Bind(&payload); err != nil {
		return response.BadRequest(c, err)
	}

	ctx := c.Request().Context()
	job := domain.NewJob(payload)

	h.events.Append(ctx, "intake.received", map[string]any{
		"id":      job.ID,
		"from":    job.SenderEmail(),
		"subject": job.Subject(),
	})

	if err := h.queue.Enqueue(ctx, job); err != nil {
		return response.InternalServerError(c, err)
	}

	h.events.Append(ctx, "queue.enqueued", map[string]any{"id": job.ID})

	return response.Ok(c, map[string]any{
		"queued": true,
		"id":     job.ID,
	})
}

// GetQueueLength godoc
// @Summary Get queue length
// @Description Returns the number of jobs currently waiting in the queue
// @Tags worker
// @Produce json
// @Param x-auth-key header string true "Admin API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/queue [get]
func (h *IntakeHandler) GetQueueLength(c echo.Context) error {
	length, err := h.queue.Length(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, map[string]any{"length": length})
}

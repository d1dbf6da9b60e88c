package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/pkg/response"
)

type settingsLoader interface {
	Load(ctx context.Context) (domain.Settings, error)
}

type replyBuilder interface {
	Build(ctx context.Context, settings domain.Settings, job *domain.Job) domain.Reply
}

// PreviewHandler composes a reply for a submitted form without sending it.
type PreviewHandler struct {
	settings settingsLoader
	composer replyBuilder
	events   eventLogger
}

func NewPreviewHandler(settings settingsLoader, composer replyBuilder, events eventLogger) *PreviewHandler {
	return &PreviewHandler{settings: settings, composer: composer, events: events}
}

// Preview godoc
// @Summary Preview a reply
// @Description Builds the reply for the given form fields using current settings, without sending
// @Tags settings
// @Accept json
// @Produce json
// @Param x-auth-key header string true "Admin API key"
// @Param form body map[string]any true "Form fields to preview against"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/preview [post]
func (h *PreviewHandler) Preview(c echo.Context) error {
	var payload map[string]any
	if err := c.Bind(&payload); err != nil {
		return response.BadRequest(c, err)
	}

	ctx := c.Request().Context()

	settings, err := h.settings.Load(ctx)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	// Not enqueued; the job only carries the form into the composer.
	job := &domain.Job{
		ReceivedAt: time.Now().UnixMilli(),
		Form:       payload,
	}

	reply := h.composer.Build(ctx, settings, job)

	h.events.Append(ctx, "tester.preview", map[string]any{
		"to":      reply.Recipient,
		"subject": reply.Subject,
	})

	return response.Ok(c, reply)
}

package handlers

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/pkg/response"
)

type logReader interface {
	Recent(ctx context.Context, limit int) ([]domain.LogEntry, error)
}

type LogsHandler struct {
	log logReader
}

func NewLogsHandler(log logReader) *LogsHandler {
	return &LogsHandler{log: log}
}

// GetLogs godoc
// @Summary Get recent events
// @Description Returns the most recent event-log entries, newest first
// @Tags logs
// @Produce json
// @Param x-auth-key header string true "Admin API key"
// @Param limit query int false "Maximum entries to return (default: 200)"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/logs [get]
func (h *LogsHandler) GetLogs(c echo.Context) error {
	limit := 200
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.log.Recent(c.Request().Context(), limit)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, map[string]any{"logs": entries})
}

package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/pkg/response"
)

type outboxLister interface {
	List(ctx context.Context, offset, limit int) ([]domain.OutboxEntry, int64, error)
}

type OutboxHandler struct {
	outbox outboxLister
}

func NewOutboxHandler(outbox outboxLister) *OutboxHandler {
	return &OutboxHandler{outbox: outbox}
}

// ListOutbox godoc
// @Summary List sent replies
// @Description Returns a paginated view of the outbox, newest first
// @Tags outbox
// @Produce json
// @Param x-auth-key header string true "Admin API key"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/outbox [get]
func (h *OutboxHandler) ListOutbox(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	offset := (page - 1) * pageSize

	entries, total, err := h.outbox.List(c.Request().Context(), offset, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, entries, page, pageSize, total)
}

func parsePaginationParams(c echo.Context) (int, int, error) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)

	page := defaultPage
	if pageStr := c.QueryParam("page"); pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
		page = p
	}

	pageSize := defaultPageSize
	if pageSizeStr := c.QueryParam("pageSize"); pageSizeStr != "" {
		ps, err := strconv.Atoi(pageSizeStr)
		if err != nil || ps <= 0 || ps > maxPageSize {
			return 0, 0, fmt.Errorf("pageSize must be between 1 and %d", maxPageSize)
		}

		pageSize = ps
	}

	return page, pageSize, nil
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type storePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health checks.
type HealthHandler struct {
	store        storePinger
	checkTimeout time.Duration
}

func NewHealthHandler(store storePinger) *HealthHandler {
	return &HealthHandler{
		store:        store,
		checkTimeout: 2 * time.Second,
	}
}

// Health returns overall status and the store's connectivity.
// @Summary Health check
// @Description Returns overall status with store connectivity result
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"

	storeStatus := "up"
	if h.store == nil {
		storeStatus = "down"
		overallStatus = "down"
	} else if err := h.store.Ping(ctx); err != nil {
		storeStatus = "down"
		overallStatus = "down"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"components": map[string]any{
			"store": map[string]any{
				"status": storeStatus,
			},
		},
	})
}

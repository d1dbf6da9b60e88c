package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/replydesk/responder/environments"
	"github.com/replydesk/responder/handlers"
	"github.com/replydesk/responder/internal/middlewares"
)

// RegisterRoutes registers all API routes with middleware. Intake and health
// are public; everything under /api/v1 requires the admin API key.
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	intakeHandler *handlers.IntakeHandler,
	settingsHandler *handlers.SettingsHandler,
	workerHandler *handlers.WorkerHandler,
	previewHandler *handlers.PreviewHandler,
	outboxHandler *handlers.OutboxHandler,
	logsHandler *handlers.LogsHandler,
	schedulerHandler *handlers.SchedulerHandler,
	cfg *environments.Config,
) {
	e.GET("/health", healthHandler.Health)
	e.POST("/intake", intakeHandler.Intake)

	v1 := e.Group("/api/v1", middlewares.APIKeyAuth(cfg.Auth.AdminAPIKey))

	v1.GET("/settings", settingsHandler.GetSettings)
	v1.PUT("/settings", settingsHandler.UpdateSettings)

	v1.GET("/queue", intakeHandler.GetQueueLength)
	v1.POST("/worker/run", workerHandler.RunWorker)
	v1.POST("/preview", previewHandler.Preview)

	v1.GET("/outbox", outboxHandler.ListOutbox)
	v1.GET("/logs", logsHandler.GetLogs)

	schedulerGroup := v1.Group("/scheduler")
	schedulerGroup.POST("/start", schedulerHandler.StartScheduler)
	schedulerGroup.POST("/stop", schedulerHandler.StopScheduler)
	schedulerGroup.GET("/status", schedulerHandler.GetSchedulerStatus)
}

package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/pkg/response"
	"github.com/replydesk/responder/pkg/validator"
)

type settingsStore interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}

type SettingsHandler struct {
	settings settingsStore
}

func NewSettingsHandler(settings settingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

type RuleRequest struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Keywords     []string `json:"keywords" validate:"required,min=1"`
	Priority     int      `json:"priority"`
	Instructions string   `json:"instructions"`
	Enabled      *bool    `json:"enabled"`
	DelaySeconds *int     `json:"delaySeconds" validate:"omitempty,min=0"`
}

type UpdateSettingsRequest struct {
	EnableAutoResponder bool          `json:"enableAutoResponder"`
	Subject             string        `json:"subject" validate:"max=200"`
	Signature           string        `json:"signature" validate:"max=2000"`
	Tone                string        `json:"tone" validate:"max=200"`
	MaxSentences        int           `json:"maxSentences" validate:"min=0,max=20"`
	FromEmail           string        `json:"fromEmail" validate:"omitempty,email"`
	OwnerEmail          string        `json:"ownerEmail" validate:"omitempty,email"`
	BusinessName        string        `json:"businessName" validate:"max=200"`
	SystemInstructions  string        `json:"systemInstructions"`
	Rules               []RuleRequest `json:"sections" validate:"dive"`
	DefaultDelaySeconds int           `json:"defaultDelaySeconds" validate:"min=0"`
}

// GetSettings godoc
// @Summary Get responder settings
// @Description Returns the current settings snapshot, defaults filled in
// @Tags settings
// @Produce json
// @Param x-auth-key header string true "Admin API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/settings [get]
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	settings, err := h.settings.Load(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, settings)
}

// UpdateSettings godoc
// @Summary Update responder settings
// @Description Validates and stores a full settings document
// @Tags settings
// @Accept json
// @Produce json
// @Param x-auth-key header string true "Admin API key"
// @Param settings body UpdateSettingsRequest true "Settings to store"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} validator.ValidationErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/settings [put]
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	var req UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	rules := make([]domain.Rule, 0, len(req.Rules))
	for _, r := range req.Rules {
		rules = append(rules, domain.Rule{
			Name:         r.Name,
			Keywords:     r.Keywords,
			Priority:     r.Priority,
			Instructions: r.Instructions,
			Enabled:      r.Enabled,
			DelaySeconds: r.DelaySeconds,
		})
	}

	saved, err := h.settings.Save(c.Request().Context(), domain.Settings{
		EnableAutoResponder: req.EnableAutoResponder,
		Subject:             req.Subject,
		Signature:           req.Signature,
		Tone:                req.Tone,
		MaxSentences:        req.MaxSentences,
		FromEmail:           req.FromEmail,
		OwnerEmail:          req.OwnerEmail,
		BusinessName:        req.BusinessName,
		SystemInstructions:  req.SystemInstructions,
		Rules:               rules,
		DefaultDelaySeconds: req.DefaultDelaySeconds,
	})
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Settings updated successfully", saved)
}

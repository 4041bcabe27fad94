package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/logic-legends/triage-service/internal/api/dto"
	"github.com/logic-legends/triage-service/internal/repository"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

// AlertsHandler serves proactive alerts written by external monitoring.
type AlertsHandler struct {
	alerts repository.AlertRepository
}

// NewAlertsHandler constructs the handler.
func NewAlertsHandler(alerts repository.AlertRepository) *AlertsHandler {
	return &AlertsHandler{alerts: alerts}
}

// ListAlerts GET /alerts. Defaults to active alerts; ?all=true includes
// resolved ones.
func (h *AlertsHandler) ListAlerts(c *fiber.Ctx) error {
	if h.alerts == nil {
		return c.JSON(fiber.Map{"data": []dto.AlertResponse{}})
	}

	if c.Query("all") == "true" {
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				return apperrors.NewValidationError("invalid limit", map[string]any{"limit": raw})
			}
			limit = parsed
		}
		alerts, err := h.alerts.List(c.UserContext(), limit)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.FromAlerts(alerts)})
	}

	alerts, err := h.alerts.ListActive(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromAlerts(alerts)})
}

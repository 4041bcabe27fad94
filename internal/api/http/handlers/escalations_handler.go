package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/logic-legends/triage-service/internal/api/dto"
	"github.com/logic-legends/triage-service/internal/escalation"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

// EscalationsHandler exposes the derived escalation view and its two
// caller actions.
type EscalationsHandler struct {
	policy *escalation.Policy
}

// NewEscalationsHandler constructs the handler.
func NewEscalationsHandler(policy *escalation.Policy) *EscalationsHandler {
	return &EscalationsHandler{policy: policy}
}

// Metrics GET /escalations/metrics.
func (h *EscalationsHandler) Metrics(c *fiber.Ctx) error {
	metrics := h.policy.Metrics()
	return c.JSON(fiber.Map{"data": dto.EscalationMetricsResponse{
		ActiveEscalations: metrics.ActiveEscalations,
		AngryCustomers:    metrics.AngryCustomers,
		AvgAgeHours:       metrics.AvgAgeHours,
		Degraded:          h.policy.Degraded(),
		ComputedAt:        metrics.ComputedAt,
	}})
}

// ListEscalations GET /escalations.
func (h *EscalationsHandler) ListEscalations(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data":     dto.FromEscalated(h.policy.Escalated()),
		"degraded": h.policy.Degraded(),
	})
}

// ResolveEscalation POST /escalations/:id/resolve.
func (h *EscalationsHandler) ResolveEscalation(c *fiber.Ctx) error {
	ticket, err := h.policy.Resolve(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// AssignEscalation POST /escalations/:id/assign.
func (h *EscalationsHandler) AssignEscalation(c *fiber.Ctx) error {
	var req dto.AssignEscalationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.MemberID == "" {
		return apperrors.NewValidationError("member_id required", nil)
	}
	ticket, err := h.policy.AssignToMember(c.UserContext(), c.Params("id"), req.MemberID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

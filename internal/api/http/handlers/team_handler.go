package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/logic-legends/triage-service/internal/api/dto"
	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/service"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

// TeamHandler manages the handler roster and presence.
type TeamHandler struct {
	team *service.TeamService
}

// NewTeamHandler constructs the handler.
func NewTeamHandler(team *service.TeamService) *TeamHandler {
	return &TeamHandler{team: team}
}

// AddMember POST /team/members.
func (h *TeamHandler) AddMember(c *fiber.Ctx) error {
	var req dto.AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.team.AddMember(c.UserContext(), req.Name, req.Email, domain.MemberRole(req.Role))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromMember(member)})
}

// RemoveMember DELETE /team/members/:id.
func (h *TeamHandler) RemoveMember(c *fiber.Ctx) error {
	if err := h.team.RemoveMember(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListMembers GET /team/members.
func (h *TeamHandler) ListMembers(c *fiber.Ctx) error {
	members, err := h.team.ListMembers(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.TeamMemberResponse, 0, len(members))
	for i := range members {
		out = append(out, dto.FromMember(&members[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// GetMember GET /team/members/:id.
func (h *TeamHandler) GetMember(c *fiber.Ctx) error {
	member, err := h.team.GetMember(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromMember(member)})
}

// SetPresence PUT /team/members/:id/presence.
func (h *TeamHandler) SetPresence(c *fiber.Ctx) error {
	var req dto.SetPresenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.team.SetPresence(c.UserContext(), c.Params("id"), domain.PresenceStatus(req.Status)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": req.Status}})
}

// Stats GET /team/stats.
func (h *TeamHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.team.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTeamStats(stats)})
}

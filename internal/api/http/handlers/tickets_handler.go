package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/logic-legends/triage-service/internal/api/dto"
	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/service"
	"github.com/logic-legends/triage-service/internal/store"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket intake, mutation and querying.
type TicketsHandler struct {
	triage *service.TriageService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(triage *service.TriageService) *TicketsHandler {
	return &TicketsHandler{triage: triage}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	source, err := parseSource(req.Source)
	if err != nil {
		return err
	}

	ticket, err := h.triage.Intake(c.UserContext(), service.IntakeInput{
		Title:        req.Title,
		Description:  req.Description,
		CategoryHint: req.Category,
		Source:       source,
		Customer: domain.CustomerInfo{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
		VoiceRecording: req.VoiceRecording,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.triage.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	patch, err := patchFromRequest(req)
	if err != nil {
		return err
	}
	ticket, err := h.triage.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ReclassifyTicket POST /tickets/:id/reclassify.
func (h *TicketsHandler) ReclassifyTicket(c *fiber.Ctx) error {
	ticket, err := h.triage.Reclassify(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.triage.Query(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(tickets)})
}

// Overview GET /analytics/overview.
func (h *TicketsHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.triage.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overview})
}

func filterFromQuery(c *fiber.Ctx) (store.Filter, error) {
	filter := store.Filter{}
	for _, raw := range splitQuery(c.Query("status")) {
		status, err := parseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, raw := range splitQuery(c.Query("priority")) {
		priority, err := parsePriority(raw)
		if err != nil {
			return filter, err
		}
		filter.Priorities = append(filter.Priorities, priority)
	}
	for _, raw := range splitQuery(c.Query("source")) {
		source, err := parseSource(raw)
		if err != nil {
			return filter, err
		}
		filter.Sources = append(filter.Sources, source)
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedTo = &assignee
	}
	switch c.Query("sort") {
	case "", "createdAt":
		filter.SortBy = store.SortByCreatedAt
	case "updatedAt":
		filter.SortBy = store.SortByUpdatedAt
	case "priority":
		filter.SortBy = store.SortByPriority
	default:
		return filter, apperrors.NewValidationError("invalid sort key", map[string]any{"sort": c.Query("sort")})
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, apperrors.NewValidationError("invalid limit", map[string]any{"limit": raw})
		}
		filter.Limit = limit
	}
	return filter, nil
}

func patchFromRequest(req dto.UpdateTicketRequest) (store.Patch, error) {
	patch := store.Patch{
		Category:   req.Category,
		AssignedTo: req.AssignedTo,
	}
	if req.Status != nil {
		status, err := parseStatus(*req.Status)
		if err != nil {
			return patch, err
		}
		patch.Status = &status
	}
	if req.Priority != nil {
		priority, err := parsePriority(*req.Priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &priority
	}
	if req.Sentiment != nil {
		sentiment, err := parseSentiment(*req.Sentiment)
		if err != nil {
			return patch, err
		}
		patch.Sentiment = &sentiment
	}
	if req.WasteCategory != nil {
		waste, err := parseWasteCategory(*req.WasteCategory)
		if err != nil {
			return patch, err
		}
		patch.WasteCategory = &waste
	}
	return patch, nil
}

func parseStatus(raw string) (domain.TicketStatus, error) {
	switch domain.TicketStatus(raw) {
	case domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed:
		return domain.TicketStatus(raw), nil
	}
	return "", apperrors.NewValidationError("invalid status", map[string]any{"status": raw})
}

func parsePriority(raw string) (domain.TicketPriority, error) {
	switch domain.TicketPriority(raw) {
	case domain.TicketPriorityNormal, domain.TicketPriorityModerate, domain.TicketPriorityUrgent:
		return domain.TicketPriority(raw), nil
	}
	return "", apperrors.NewValidationError("invalid priority", map[string]any{"priority": raw})
}

func parseSentiment(raw string) (domain.Sentiment, error) {
	switch domain.Sentiment(raw) {
	case domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentFrustrated, domain.SentimentAngry:
		return domain.Sentiment(raw), nil
	}
	return "", apperrors.NewValidationError("invalid sentiment", map[string]any{"sentiment": raw})
}

func parseWasteCategory(raw string) (domain.WasteCategory, error) {
	switch domain.WasteCategory(raw) {
	case domain.WasteProductDefect, domain.WasteShippingError, domain.WasteUserConfusion, domain.WasteProcessIssue, domain.WasteNone:
		return domain.WasteCategory(raw), nil
	}
	return "", apperrors.NewValidationError("invalid waste category", map[string]any{"waste_category": raw})
}

func parseSource(raw string) (domain.TicketSource, error) {
	switch domain.TicketSource(raw) {
	case domain.SourceChat, domain.SourceEmail, domain.SourceCall, domain.SourceAPI:
		return domain.TicketSource(raw), nil
	}
	return "", apperrors.NewValidationError("invalid source", map[string]any{"source": raw})
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

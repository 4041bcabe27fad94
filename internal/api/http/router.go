package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/logic-legends/triage-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Tickets     *handlers.TicketsHandler
	Escalations *handlers.EscalationsHandler
	Team        *handlers.TeamHandler
	Chat        *handlers.ChatHandler
	Alerts      *handlers.AlertsHandler
	Feed        *handlers.FeedHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/healthz", cfg.Health.Liveness)
	app.Get("/readyz", cfg.Health.Readiness)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api/v1")

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/reclassify", cfg.Tickets.ReclassifyTicket)

	escalations := api.Group("/escalations")
	escalations.Get("/", cfg.Escalations.ListEscalations)
	escalations.Get("/metrics", cfg.Escalations.Metrics)
	escalations.Post("/:id/resolve", cfg.Escalations.ResolveEscalation)
	escalations.Post("/:id/assign", cfg.Escalations.AssignEscalation)

	team := api.Group("/team")
	team.Get("/stats", cfg.Team.Stats)
	team.Post("/members", cfg.Team.AddMember)
	team.Get("/members", cfg.Team.ListMembers)
	team.Get("/members/:id", cfg.Team.GetMember)
	team.Delete("/members/:id", cfg.Team.RemoveMember)
	team.Put("/members/:id/presence", cfg.Team.SetPresence)

	chat := api.Group("/chat")
	chat.Post("/sessions", cfg.Chat.StartSession)
	chat.Get("/sessions/:id", cfg.Chat.GetSession)
	chat.Delete("/sessions/:id", cfg.Chat.DeleteSession)
	chat.Post("/sessions/:id/messages", cfg.Chat.SendMessage)

	api.Get("/alerts", cfg.Alerts.ListAlerts)
	api.Get("/analytics/overview", cfg.Tickets.Overview)

	api.Get("/feed", cfg.Feed.Upgrade, cfg.Feed.Stream())
}

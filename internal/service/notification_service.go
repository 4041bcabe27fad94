package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/config"
	"github.com/logic-legends/triage-service/internal/events"
)

// NotificationService forwards committed ticket events to the outbound
// notification collaborator. The core only supplies classified ticket
// data as template variables; templating and delivery are external.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	n.sendEmailStub(event, "ticket_created", map[string]string{
		"ticket_id": event.TicketID,
		"title":     payload.Title,
		"priority":  string(payload.Priority),
		"category":  payload.Category,
	})
	n.sendWebhookStub(event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	n.sendEmailStub(event, "ticket_status_changed", map[string]string{
		"ticket_id":  event.TicketID,
		"old_status": string(payload.OldStatus),
		"new_status": string(payload.NewStatus),
	})
	n.sendWebhookStub(event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.sendWebhookStub(event)
	return nil
}

func (n *NotificationService) sendEmailStub(event events.Event, template string, variables map[string]string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("template", template),
		zap.String("ticket_id", event.TicketID),
		zap.Any("variables", variables))
}

func (n *NotificationService) sendWebhookStub(event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

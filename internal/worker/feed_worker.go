package worker

import (
	"context"

	"github.com/logic-legends/triage-service/internal/escalation"
	"github.com/logic-legends/triage-service/internal/feed"
	"github.com/logic-legends/triage-service/internal/service"
)

// StartEscalationWorker runs the escalation view against its own feed
// subscription until the context ends.
func StartEscalationWorker(ctx context.Context, policy *escalation.Policy, hub *feed.Hub) {
	sub := hub.Subscribe(ctx, nil)
	go policy.Run(ctx, sub)
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

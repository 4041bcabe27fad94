package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/api/dto"
	"github.com/logic-legends/triage-service/internal/feed"
	"github.com/logic-legends/triage-service/internal/observability"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

// FeedHandler streams ticket snapshots to websocket viewers. Every
// message replaces the viewer's prior ticket set.
type FeedHandler struct {
	hub     *feed.Hub
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewFeedHandler constructs the handler.
func NewFeedHandler(hub *feed.Hub, metrics *observability.Metrics, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{hub: hub, metrics: metrics, logger: logger}
}

// Upgrade gates the feed route to websocket requests and resolves the
// requested view before the protocol switch.
func (h *FeedHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	filter, err := viewFilter(c.Query("view"))
	if err != nil {
		return err
	}
	c.Locals("feed_filter", filter)
	return c.Next()
}

// Stream is the websocket connection loop. Each subscriber gets its own
// subscription; closing the socket unsubscribes without touching the
// ticket data.
func (h *FeedHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		filter, _ := conn.Locals("feed_filter").(feed.FilterFunc)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub := h.hub.Subscribe(ctx, filter)
		defer sub.Close()

		// Reader goroutine: the client never sends data, but reading is
		// what surfaces the close frame.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case snapshot, ok := <-sub.Updates():
				if !ok {
					return
				}
				h.metrics.RecordFeedTick(snapshot.Degraded(), 1)
				resp := dto.FeedSnapshotResponse{
					Seq:      snapshot.Seq,
					Degraded: snapshot.Degraded(),
					Tickets:  dto.FromTickets(snapshot.Tickets),
				}
				if err := conn.WriteJSON(resp); err != nil {
					h.logger.Debug("feed write failed, dropping subscriber", zap.Error(err))
					return
				}
			}
		}
	})
}

func viewFilter(view string) (feed.FilterFunc, error) {
	switch view {
	case "", "all":
		return nil, nil
	case "email_queue":
		return feed.EmailQueueFilter, nil
	case "priority_calls":
		return feed.PriorityCallsFilter, nil
	default:
		return nil, apperrors.NewValidationError("unknown feed view", map[string]any{"view": view})
	}
}

package services

import (
	"context"

	redisclient "github.com/scrummood/scrummood-backend/internal/clients/redis"
	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/sse"
)

// Notifier fans an SSE message out to connected clients. With a Redis
// bus attached the message goes through Redis so every backend replica
// rebroadcasts it; without one it goes straight to the local hub.
type Notifier interface {
	Notify(ctx context.Context, msg sse.SSEMessage)
}

type notifier struct {
	log *logger.Logger
	hub *sse.SSEHub
	bus redisclient.SSEBus
}

func NewNotifier(hub *sse.SSEHub, bus redisclient.SSEBus, baseLog *logger.Logger) Notifier {
	return &notifier{
		log: baseLog.With("service", "Notifier"),
		hub: hub,
		bus: bus,
	}
}

func (n *notifier) Notify(ctx context.Context, msg sse.SSEMessage) {
	if n.bus != nil {
		err := n.bus.Publish(ctx, msg)
		if err == nil {
			return
		}
		n.log.Warn("Redis publish failed, falling back to local broadcast", "channel", msg.Channel, "event", msg.Event, "error", err)
	}
	n.hub.Broadcast(msg)
}

package sse

import (
	"testing"

	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

func TestBroadcast_DeliversToSubscribedClients(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	sessionID := uuid.New()
	channel := SessionChannel(sessionID)

	subscribed := hub.NewSSEClient(uuid.New())
	other := hub.NewSSEClient(uuid.New())
	hub.AddChannel(subscribed, channel)
	hub.AddChannel(other, UserChannel(other.UserID))

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventEmotionRecorded})

	select {
	case msg := <-subscribed.Outbound:
		if msg.Event != SSEEventEmotionRecorded {
			t.Fatalf("unexpected event %s", msg.Event)
		}
	default:
		t.Fatalf("subscribed client received nothing")
	}
	select {
	case <-other.Outbound:
		t.Fatalf("unsubscribed client received a message")
	default:
	}
}

func TestRemoveChannel_StopsDelivery(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := SessionChannel(uuid.New())

	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)
	hub.RemoveChannel(client, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventNewSuggestions})
	select {
	case <-client.Outbound:
		t.Fatalf("client received a message after unsubscribing")
	default:
	}
}

func TestCloseClient_ClosesOutboundAndUnsubscribes(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := SessionChannel(uuid.New())

	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)
	hub.CloseClient(client)

	if _, open := <-client.Outbound; open {
		t.Fatalf("expected outbound channel to be closed")
	}
	// Broadcasting after close must not panic.
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventSessionEnded})
}

func TestBroadcast_DropsWhenClientBufferFull(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := SessionChannel(uuid.New())

	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)

	// One more than the buffer; the last must be dropped, not block.
	for i := 0; i < cap(client.Outbound)+1; i++ {
		hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventEmotionRecorded})
	}
	if len(client.Outbound) != cap(client.Outbound) {
		t.Fatalf("expected a full buffer, got %d", len(client.Outbound))
	}
}

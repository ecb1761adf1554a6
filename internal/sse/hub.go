package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/logger"
)

type SSEEvent string

const (
	SSEEventEmotionRecorded        SSEEvent = "emotion_recorded"
	SSEEventNewSuggestions         SSEEvent = "new_suggestions"
	SSEEventNewPersonalSuggestions SSEEvent = "new_personal_suggestions"
	SSEEventSuggestionUpdated      SSEEvent = "suggestion_updated"
	SSEEventSessionStarted         SSEEvent = "session_started"
	SSEEventSessionEnded           SSEEvent = "session_ended"
)

// SessionChannel and UserChannel name the two channel families the
// backend publishes to.
func SessionChannel(sessionID uuid.UUID) string {
	return fmt.Sprintf("session_%s", sessionID)
}

func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_%s", userID)
}

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	closed   bool
}

type SSEHub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*SSEClient]bool
}

func NewSSEHub(log *logger.Logger) *SSEHub {
	return &SSEHub{
		logger:        log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*SSEClient]bool),
	}
}

func (hub *SSEHub) NewSSEClient(userID uuid.UUID) *SSEClient {
	return &SSEClient{
		ID:       uuid.New(),
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan SSEMessage, 16),
	}
}

func (hub *SSEHub) AddChannel(client *SSEClient, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	client.Channels[channel] = true

	clients, exists := hub.subscriptions[channel]
	if !exists {
		clients = make(map[*SSEClient]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true

	hub.logger.Debug("SSE client subscribed", "clientID", client.ID, "channel", channel)
}

func (hub *SSEHub) RemoveChannel(client *SSEClient, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	delete(client.Channels, channel)

	if subMap, ok := hub.subscriptions[channel]; ok {
		delete(subMap, client)
		if len(subMap) == 0 {
			delete(hub.subscriptions, channel)
		}
	}
	hub.logger.Debug("SSE client unsubscribed from channel", "clientID", client.ID, "channel", channel)
}

// CloseClient detaches a client from all channels and closes its
// outbound stream.
func (hub *SSEHub) CloseClient(client *SSEClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for ch := range client.Channels {
		if subMap, ok := hub.subscriptions[ch]; ok {
			delete(subMap, client)
			if len(subMap) == 0 {
				delete(hub.subscriptions, ch)
			}
		}
	}
	client.Channels = make(map[string]bool)
	if !client.closed {
		client.closed = true
		close(client.Outbound)
	}
	hub.logger.Debug("SSE client closed", "clientID", client.ID)
}

// ServeHTTP writes the client's outbound messages as an SSE stream
// until the connection drops or the client is closed.
func (hub *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *SSEClient) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-client.Outbound:
			if !open {
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				hub.logger.Warn("Failed to marshal SSE message", "clientID", client.ID, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, payload)
			flusher.Flush()
		}
	}
}

// Broadcast delivers a message to every client subscribed to its
// channel. Slow clients are skipped rather than blocking the
// publisher.
func (hub *SSEHub) Broadcast(msg SSEMessage) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	clients := hub.subscriptions[msg.Channel]
	for client := range clients {
		select {
		case client.Outbound <- msg:
		default:
			hub.logger.Warn("SSE client outbound full, dropping message", "clientID", client.ID, "channel", msg.Channel, "event", msg.Event)
		}
	}
}

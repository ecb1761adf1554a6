package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/requestdata"
	"github.com/scrummood/scrummood-backend/internal/sse"
)

// SSEHandler serves the event stream and the channel subscription
// endpoints. One stream per user; opening a second stream replaces the
// first.
type SSEHandler struct {
	log *logger.Logger
	hub *sse.SSEHub

	mu      sync.RWMutex
	clients map[uuid.UUID]*sse.SSEClient
}

func NewSSEHandler(log *logger.Logger, hub *sse.SSEHub) *SSEHandler {
	return &SSEHandler{
		log:     log.With("handler", "SSEHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*sse.SSEClient),
	}
}

func (h *SSEHandler) SSEStream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}
	userID := rd.UserID

	h.mu.Lock()
	if existing, ok := h.clients[userID]; ok {
		h.hub.CloseClient(existing)
		delete(h.clients, userID)
	}
	client := h.hub.NewSSEClient(userID)
	h.clients[userID] = client
	h.mu.Unlock()

	// Every stream gets the user's own channel; session channels are
	// added via subscribe.
	h.hub.AddChannel(client, sse.UserChannel(userID))
	if v := c.Query("session_id"); v != "" {
		if sessionID, err := uuid.Parse(v); err == nil {
			h.hub.AddChannel(client, sse.SessionChannel(sessionID))
		}
	}

	h.log.Debug("SSE stream open", "userID", userID, "clientID", client.ID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	delete(h.clients, userID)
	h.mu.Unlock()
	h.hub.CloseClient(client)
	h.log.Debug("SSE stream closed", "userID", userID, "clientID", client.ID)
}

func (h *SSEHandler) SSESubscribe(c *gin.Context) {
	h.updateSubscription(c, h.hub.AddChannel, "subscribed")
}

func (h *SSEHandler) SSEUnsubscribe(c *gin.Context) {
	h.updateSubscription(c, h.hub.RemoveChannel, "unsubscribed")
}

func (h *SSEHandler) updateSubscription(c *gin.Context, apply func(client *sse.SSEClient, channel string), verb string) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}

	var req struct {
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Channel) == "" {
		RespondError(c, http.StatusBadRequest, "invalid_channel", fmt.Errorf("channel is required"))
		return
	}

	h.mu.RLock()
	client, exists := h.clients[rd.UserID]
	h.mu.RUnlock()
	if !exists {
		RespondError(c, http.StatusConflict, "no_stream", fmt.Errorf("no active SSE connection for this user"))
		return
	}

	apply(client, req.Channel)
	RespondOK(c, gin.H{"message": verb, "channel": req.Channel})
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrummood/scrummood-backend/internal/requestdata"
	"github.com/scrummood/scrummood-backend/internal/services"
	"github.com/scrummood/scrummood-backend/internal/types"
)

type SessionHandler struct {
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (sh *SessionHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}

	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}

	session, err := sh.sessionService.Create(c.Request.Context(), rd.UserID, types.UserRole(rd.Role), req)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (sh *SessionHandler) Get(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", fmt.Errorf("invalid session id"))
		return
	}
	session, err := sh.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "session_not_found", fmt.Errorf("session not found"))
			return
		}
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	RespondOK(c, session)
}

func (sh *SessionHandler) Today(c *gin.Context) {
	sessions, err := sh.sessionService.Today(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions, "count": len(sessions)})
}

func (sh *SessionHandler) Start(c *gin.Context) {
	sh.transition(c, sh.sessionService.Start)
}

func (sh *SessionHandler) End(c *gin.Context) {
	sh.transition(c, sh.sessionService.End)
}

func (sh *SessionHandler) Join(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}
	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", fmt.Errorf("invalid session id"))
		return
	}
	participant, err := sh.sessionService.Join(c.Request.Context(), sessionID, rd.UserID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "join_failed", err)
		return
	}
	RespondOK(c, participant)
}

func (sh *SessionHandler) Leave(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}
	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", fmt.Errorf("invalid session id"))
		return
	}
	participant, err := sh.sessionService.Leave(c.Request.Context(), sessionID, rd.UserID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "leave_failed", err)
		return
	}
	RespondOK(c, participant)
}

func (sh *SessionHandler) transition(c *gin.Context, fn func(ctx context.Context, sessionID, userID uuid.UUID) (*types.Session, error)) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}
	if rd.Role != string(types.RoleFacilitator) && rd.Role != string(types.RoleManager) {
		RespondError(c, http.StatusForbidden, "forbidden", fmt.Errorf("only facilitators can manage sessions"))
		return
	}
	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", fmt.Errorf("invalid session id"))
		return
	}

	session, err := fn(c.Request.Context(), sessionID, rd.UserID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "transition_failed", err)
		return
	}
	RespondOK(c, session)
}

package handlers

import (
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

type ReflectionHandler struct {
	reflectionService services.ReflectionService
}

func NewReflectionHandler(reflectionService services.ReflectionService) *ReflectionHandler {
	return &ReflectionHandler{reflectionService: reflectionService}
}

func (rh *ReflectionHandler) Personal(c *gin.Context) {
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

	reflection, err := rh.reflectionService.Personal(c.Request.Context(), rd.UserID, sessionID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "reflection_failed", err)
		return
	}
	RespondOK(c, reflection)
}

// Team reflections are restricted to facilitators and managers.
func (rh *ReflectionHandler) Team(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}
	if rd.Role != string(types.RoleFacilitator) && rd.Role != string(types.RoleManager) {
		RespondError(c, http.StatusForbidden, "forbidden", fmt.Errorf("only facilitators can view team reflections"))
		return
	}

	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", fmt.Errorf("invalid session id"))
		return
	}

	reflection, err := rh.reflectionService.Team(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "reflection_failed", err)
		return
	}
	RespondOK(c, reflection)
}

func (rh *ReflectionHandler) SaveJournal(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}

	var req services.SaveJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	req.UserID = rd.UserID

	journal, err := rh.reflectionService.SaveJournal(c.Request.Context(), req)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "journal_failed", err)
		return
	}
	RespondOK(c, journal)
}

func (rh *ReflectionHandler) GetJournal(c *gin.Context) {
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

	journal, err := rh.reflectionService.GetJournal(c.Request.Context(), rd.UserID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "journal_not_found", fmt.Errorf("no journal entry for this session"))
			return
		}
		RespondError(c, http.StatusInternalServerError, "journal_failed", err)
		return
	}
	RespondOK(c, journal)
}

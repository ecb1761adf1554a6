package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/repos"
	"github.com/scrummood/scrummood-backend/internal/requestdata"
	"github.com/scrummood/scrummood-backend/internal/services"
	"github.com/scrummood/scrummood-backend/internal/types"
)

type SuggestionHandler struct {
	suggestionService services.SuggestionService
}

func NewSuggestionHandler(suggestionService services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

func (sh *SuggestionHandler) Generate(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", fmt.Errorf("invalid session id"))
		return
	}
	result, err := sh.suggestionService.Generate(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "generate_failed", err)
		return
	}
	RespondOK(c, result)
}

func (sh *SuggestionHandler) ListSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", fmt.Errorf("invalid session id"))
		return
	}

	filter, err := suggestionFilterFromQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_filter", err)
		return
	}

	suggestions, err := sh.suggestionService.ListSession(c.Request.Context(), sessionID, filter)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"suggestions": suggestions, "count": len(suggestions)})
}

func (sh *SuggestionHandler) ListPersonal(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}

	var sessionID *uuid.UUID
	if v := c.Query("session_id"); v != "" {
		parsed, err := uuid.Parse(v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_session_id", fmt.Errorf("invalid session_id"))
			return
		}
		sessionID = &parsed
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			RespondError(c, http.StatusBadRequest, "invalid_limit", fmt.Errorf("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	suggestions, err := sh.suggestionService.ListPersonal(c.Request.Context(), rd.UserID, sessionID, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"suggestions": suggestions, "count": len(suggestions)})
}

func (sh *SuggestionHandler) Respond(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}

	suggestionID, err := uuid.Parse(c.Param("suggestionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_suggestion_id", fmt.Errorf("invalid suggestion id"))
		return
	}

	var req services.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}

	suggestion, err := sh.suggestionService.Respond(c.Request.Context(), suggestionID, rd.UserID, req)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "respond_failed", err)
		return
	}
	RespondOK(c, suggestion)
}

func (sh *SuggestionHandler) Analytics(c *gin.Context) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	if v := c.Query("start"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_start", fmt.Errorf("invalid start, expected RFC3339"))
			return
		}
		start = parsed
	}
	if v := c.Query("end"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_end", fmt.Errorf("invalid end, expected RFC3339"))
			return
		}
		end = parsed
	}

	var teamID *uuid.UUID
	if v := c.Query("team_id"); v != "" {
		parsed, err := uuid.Parse(v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_team_id", fmt.Errorf("invalid team_id"))
			return
		}
		teamID = &parsed
	}

	analytics, err := sh.suggestionService.Analytics(c.Request.Context(), start, end, teamID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "analytics_failed", err)
		return
	}
	RespondOK(c, analytics)
}

func suggestionFilterFromQuery(c *gin.Context) (repos.SuggestionFilter, error) {
	var filter repos.SuggestionFilter

	if v := c.Query("status"); v != "" {
		status, err := types.ParseSuggestionStatus(v)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if v := c.Query("type"); v != "" {
		suggestionType, err := types.ParseSuggestionType(v)
		if err != nil {
			return filter, err
		}
		filter.Type = &suggestionType
	}
	switch c.Query("scope") {
	case "", "team":
		filter.TeamOnly = true
	case "personal":
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil || rd.UserID == uuid.Nil {
			return filter, fmt.Errorf("not authenticated")
		}
		userID := rd.UserID
		filter.PersonalFor = &userID
	case "all":
	default:
		return filter, fmt.Errorf("invalid scope, expected team, personal or all")
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return filter, fmt.Errorf("limit must be a positive integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

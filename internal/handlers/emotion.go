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

type EmotionHandler struct {
	emotionService services.EmotionService
}

func NewEmotionHandler(emotionService services.EmotionService) *EmotionHandler {
	return &EmotionHandler{emotionService: emotionService}
}

func (eh *EmotionHandler) Submit(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}

	var req services.SubmitEmotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	req.UserID = rd.UserID

	obs, err := eh.emotionService.Submit(c.Request.Context(), req)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "submit_failed", err)
		return
	}
	c.JSON(http.StatusCreated, obs)
}

func (eh *EmotionHandler) ListSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", fmt.Errorf("invalid session id"))
		return
	}

	filter, err := emotionFilterFromQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_filter", err)
		return
	}

	observations, err := eh.emotionService.ListSessionEmotions(c.Request.Context(), sessionID, filter)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"observations": observations, "count": len(observations)})
}

func (eh *EmotionHandler) SessionSummary(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", fmt.Errorf("invalid session id"))
		return
	}
	summary, err := eh.emotionService.SessionSummary(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "summary_failed", err)
		return
	}
	RespondOK(c, summary)
}

func (eh *EmotionHandler) History(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}

	days := 7
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			RespondError(c, http.StatusBadRequest, "invalid_days", fmt.Errorf("days must be a positive integer"))
			return
		}
		days = parsed
	}

	var emotionType *types.EmotionType
	if v := c.Query("emotion_type"); v != "" {
		parsed, err := types.ParseEmotionType(v)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_emotion_type", err)
			return
		}
		emotionType = &parsed
	}

	observations, err := eh.emotionService.UserHistory(c.Request.Context(), rd.UserID, days, emotionType)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "history_failed", err)
		return
	}
	RespondOK(c, gin.H{"observations": observations, "count": len(observations), "days": days})
}

func (eh *EmotionHandler) BatchAnalyze(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("not authenticated"))
		return
	}

	var req struct {
		SessionID *uuid.UUID               `json:"session_id,omitempty"`
		Items     []services.BatchTextItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	if len(req.Items) == 0 {
		RespondError(c, http.StatusBadRequest, "empty_batch", fmt.Errorf("items is required"))
		return
	}

	observations, err := eh.emotionService.BatchAnalyzeText(c.Request.Context(), rd.UserID, req.SessionID, req.Items)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "batch_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"observations": observations, "count": len(observations)})
}

func emotionFilterFromQuery(c *gin.Context) (repos.EmotionFilter, error) {
	var filter repos.EmotionFilter

	if v := c.Query("user_id"); v != "" {
		userID, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid user_id")
		}
		filter.UserID = &userID
	}
	if v := c.Query("emotion_type"); v != "" {
		emotionType, err := types.ParseEmotionType(v)
		if err != nil {
			return filter, err
		}
		filter.EmotionType = &emotionType
	}
	if v := c.Query("start_time"); v != "" {
		start, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("invalid start_time, expected RFC3339")
		}
		filter.StartTime = &start
	}
	if v := c.Query("end_time"); v != "" {
		end, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("invalid end_time, expected RFC3339")
		}
		filter.EndTime = &end
	}
	return filter, nil
}

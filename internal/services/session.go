package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/repos"
	"github.com/scrummood/scrummood-backend/internal/sse"
	"github.com/scrummood/scrummood-backend/internal/types"
)

// CreateSessionRequest carries the fields of a new scheduled session.
type CreateSessionRequest struct {
	Title             string     `json:"title"`
	TeamID            uuid.UUID  `json:"team_id"`
	ScheduledStart    *time.Time `json:"scheduled_start,omitempty"`
	ScheduledDuration int        `json:"scheduled_duration,omitempty"`
	Description       string     `json:"description,omitempty"`
	Agenda            []string   `json:"agenda,omitempty"`

	EmotionTrackingEnabled *bool `json:"emotion_tracking_enabled,omitempty"`
	AutoSuggestionsEnabled *bool `json:"auto_suggestions_enabled,omitempty"`
}

type SessionService interface {
	Create(ctx context.Context, creatorID uuid.UUID, creatorRole types.UserRole, req CreateSessionRequest) (*types.Session, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*types.Session, error)
	Today(ctx context.Context) ([]types.Session, error)
	Start(ctx context.Context, sessionID, userID uuid.UUID) (*types.Session, error)
	End(ctx context.Context, sessionID, userID uuid.UUID) (*types.Session, error)
	Join(ctx context.Context, sessionID, userID uuid.UUID) (*types.SessionParticipant, error)
	Leave(ctx context.Context, sessionID, userID uuid.UUID) (*types.SessionParticipant, error)
}

type sessionService struct {
	log         *logger.Logger
	sessionRepo repos.SessionRepo
	notifier    Notifier
}

func NewSessionService(sessionRepo repos.SessionRepo, notifier Notifier, baseLog *logger.Logger) SessionService {
	return &sessionService{
		log:         baseLog.With("service", "SessionService"),
		sessionRepo: sessionRepo,
		notifier:    notifier,
	}
}

// Create schedules a session. Only facilitators and managers may
// create sessions.
func (ss *sessionService) Create(ctx context.Context, creatorID uuid.UUID, creatorRole types.UserRole, req CreateSessionRequest) (*types.Session, error) {
	if creatorRole != types.RoleFacilitator && creatorRole != types.RoleManager {
		return nil, fmt.Errorf("only facilitators can create sessions")
	}
	if req.Title == "" {
		return nil, fmt.Errorf("session title is required")
	}
	if req.TeamID == uuid.Nil {
		return nil, fmt.Errorf("team_id is required")
	}

	scheduledStart := time.Now().UTC()
	if req.ScheduledStart != nil {
		scheduledStart = req.ScheduledStart.UTC()
	}
	duration := req.ScheduledDuration
	if duration <= 0 {
		duration = 15
	}

	session := &types.Session{
		ID:                     uuid.New(),
		Title:                  req.Title,
		TeamID:                 req.TeamID,
		FacilitatorID:          creatorID,
		ScheduledStart:         scheduledStart,
		ScheduledDuration:      duration,
		Status:                 types.SessionScheduled,
		Description:            req.Description,
		Agenda:                 marshalJSON(req.Agenda),
		EmotionTrackingEnabled: true,
		AutoSuggestionsEnabled: true,
		CreatedBy:              creatorID,
		CreatedAt:              time.Now().UTC(),
	}
	if req.EmotionTrackingEnabled != nil {
		session.EmotionTrackingEnabled = *req.EmotionTrackingEnabled
	}
	if req.AutoSuggestionsEnabled != nil {
		session.AutoSuggestionsEnabled = *req.AutoSuggestionsEnabled
	}

	if err := ss.sessionRepo.Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	ss.log.Info("Session created", "sessionID", session.ID, "teamID", session.TeamID, "scheduledStart", session.ScheduledStart)
	return session, nil
}

func (ss *sessionService) Get(ctx context.Context, sessionID uuid.UUID) (*types.Session, error) {
	return ss.sessionRepo.GetByID(ctx, nil, sessionID)
}

func (ss *sessionService) Today(ctx context.Context) ([]types.Session, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	return ss.sessionRepo.ListScheduledBetween(ctx, nil, start, end)
}

func (ss *sessionService) Start(ctx context.Context, sessionID, userID uuid.UUID) (*types.Session, error) {
	session, err := ss.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.Status != types.SessionScheduled {
		return nil, fmt.Errorf("session cannot be started from status %q", session.Status)
	}

	now := time.Now().UTC()
	session.Status = types.SessionActive
	session.ActualStart = &now
	if err := ss.sessionRepo.Update(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	ss.notifier.Notify(ctx, sse.SSEMessage{
		Channel: sse.SessionChannel(sessionID),
		Event:   sse.SSEEventSessionStarted,
		Data:    session,
	})
	ss.log.Info("Session started", "sessionID", sessionID, "startedBy", userID)
	return session, nil
}

func (ss *sessionService) End(ctx context.Context, sessionID, userID uuid.UUID) (*types.Session, error) {
	session, err := ss.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.Status != types.SessionActive {
		return nil, fmt.Errorf("session cannot be ended from status %q", session.Status)
	}

	now := time.Now().UTC()
	session.Status = types.SessionCompleted
	session.ActualEnd = &now
	if err := ss.sessionRepo.Update(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	ss.notifier.Notify(ctx, sse.SSEMessage{
		Channel: sse.SessionChannel(sessionID),
		Event:   sse.SSEEventSessionEnded,
		Data:    session,
	})
	ss.log.Info("Session ended", "sessionID", sessionID, "endedBy", userID)
	return session, nil
}

func (ss *sessionService) Join(ctx context.Context, sessionID, userID uuid.UUID) (*types.SessionParticipant, error) {
	if _, err := ss.sessionRepo.GetByID(ctx, nil, sessionID); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	now := time.Now().UTC()
	participant, err := ss.sessionRepo.GetParticipant(ctx, nil, sessionID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		participant = &types.SessionParticipant{
			ID:        uuid.New(),
			SessionID: sessionID,
			UserID:    userID,
			JoinedAt:  &now,
			IsPresent: true,
		}
		if err := ss.sessionRepo.AddParticipant(ctx, nil, participant); err != nil {
			return nil, fmt.Errorf("add participant: %w", err)
		}
		return participant, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load participant: %w", err)
	}

	participant.JoinedAt = &now
	participant.LeftAt = nil
	participant.IsPresent = true
	if err := ss.sessionRepo.UpdateParticipant(ctx, nil, participant); err != nil {
		return nil, fmt.Errorf("update participant: %w", err)
	}
	return participant, nil
}

func (ss *sessionService) Leave(ctx context.Context, sessionID, userID uuid.UUID) (*types.SessionParticipant, error) {
	participant, err := ss.sessionRepo.GetParticipant(ctx, nil, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load participant: %w", err)
	}

	now := time.Now().UTC()
	participant.LeftAt = &now
	participant.IsPresent = false
	if err := ss.sessionRepo.UpdateParticipant(ctx, nil, participant); err != nil {
		return nil, fmt.Errorf("update participant: %w", err)
	}
	return participant, nil
}

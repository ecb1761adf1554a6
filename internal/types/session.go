package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

func ParseSessionStatus(s string) (SessionStatus, error) {
	switch status := SessionStatus(s); status {
	case SessionScheduled, SessionActive, SessionCompleted, SessionCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("invalid session status %q", s)
	}
}

type Session struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string    `gorm:"not null;column:title" json:"title"`
	TeamID        uuid.UUID `gorm:"type:uuid;not null;index;column:team_id" json:"team_id"`
	FacilitatorID uuid.UUID `gorm:"type:uuid;not null;column:facilitator_id" json:"facilitator_id"`

	ScheduledStart    time.Time  `gorm:"not null;index;column:scheduled_start" json:"scheduled_start"`
	ScheduledDuration int        `gorm:"not null;default:15;column:scheduled_duration" json:"scheduled_duration"`
	ActualStart       *time.Time `gorm:"column:actual_start" json:"actual_start,omitempty"`
	ActualEnd         *time.Time `gorm:"column:actual_end" json:"actual_end,omitempty"`

	Status      SessionStatus  `gorm:"not null;default:'scheduled';column:status" json:"status"`
	Description string         `gorm:"column:description" json:"description"`
	Agenda      datatypes.JSON `gorm:"column:agenda" json:"agenda,omitempty"`

	EmotionTrackingEnabled bool `gorm:"default:true;column:emotion_tracking_enabled" json:"emotion_tracking_enabled"`
	AutoSuggestionsEnabled bool `gorm:"default:true;column:auto_suggestions_enabled" json:"auto_suggestions_enabled"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Session) TableName() string {
	return "session"
}

// DurationMinutes returns the actual session duration, or nil when the
// session has not both started and ended.
func (s *Session) DurationMinutes() *int {
	if s.ActualStart == nil || s.ActualEnd == nil {
		return nil
	}
	mins := int(s.ActualEnd.Sub(*s.ActualStart).Minutes())
	return &mins
}

type SessionParticipant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_participant;column:session_id" json:"session_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_participant;column:user_id" json:"user_id"`

	JoinedAt  *time.Time `gorm:"column:joined_at" json:"joined_at,omitempty"`
	LeftAt    *time.Time `gorm:"column:left_at" json:"left_at,omitempty"`
	IsPresent bool       `gorm:"default:false;column:is_present" json:"is_present"`

	MessageCount       int     `gorm:"default:0;column:message_count" json:"message_count"`
	EmotionEntries     int     `gorm:"default:0;column:emotion_entries" json:"emotion_entries"`
	ParticipationScore float64 `gorm:"default:0;column:participation_score" json:"participation_score"`
}

func (SessionParticipant) TableName() string {
	return "session_participant"
}

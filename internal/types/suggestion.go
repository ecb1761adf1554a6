package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SuggestionType string

const (
	// Team-level interventions.
	SuggestionBreak       SuggestionType = "break"
	SuggestionBreathing   SuggestionType = "breathing"
	SuggestionEnergizer   SuggestionType = "energizer"
	SuggestionCheckIn     SuggestionType = "check_in"
	SuggestionDiscussion  SuggestionType = "discussion"
	SuggestionRestructure SuggestionType = "restructure"

	// Individual-level interventions.
	SuggestionPersonalBreak           SuggestionType = "personal_break"
	SuggestionStressManagement        SuggestionType = "stress_management"
	SuggestionEngagementBoost         SuggestionType = "engagement_boost"
	SuggestionEmotionalRegulation     SuggestionType = "emotional_regulation"
	SuggestionCommunicationAdjustment SuggestionType = "communication_adjustment"
)

var suggestionTypes = map[SuggestionType]bool{
	SuggestionBreak:                   true,
	SuggestionBreathing:               true,
	SuggestionEnergizer:               true,
	SuggestionCheckIn:                 true,
	SuggestionDiscussion:              true,
	SuggestionRestructure:             true,
	SuggestionPersonalBreak:           true,
	SuggestionStressManagement:        true,
	SuggestionEngagementBoost:         true,
	SuggestionEmotionalRegulation:     true,
	SuggestionCommunicationAdjustment: true,
}

func ParseSuggestionType(s string) (SuggestionType, error) {
	st := SuggestionType(s)
	if !suggestionTypes[st] {
		return "", fmt.Errorf("invalid suggestion type %q", s)
	}
	return st, nil
}

type SuggestionStatus string

const (
	SuggestionPending     SuggestionStatus = "pending"
	SuggestionAccepted    SuggestionStatus = "accepted"
	SuggestionDismissed   SuggestionStatus = "dismissed"
	SuggestionImplemented SuggestionStatus = "implemented"
)

func ParseSuggestionStatus(s string) (SuggestionStatus, error) {
	switch status := SuggestionStatus(s); status {
	case SuggestionPending, SuggestionAccepted, SuggestionDismissed, SuggestionImplemented:
		return status, nil
	default:
		return "", fmt.Errorf("invalid suggestion status %q", s)
	}
}

// Suggestion is a selected intervention emitted by the rule engine.
// IsPersonal is set at creation time and is the single source of truth
// for the personal/team split; it is never re-derived from
// AffectedUsers at query time.
type Suggestion struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index;column:session_id" json:"session_id"`

	SuggestionType SuggestionType `gorm:"not null;column:suggestion_type" json:"suggestion_type"`
	Title          string         `gorm:"not null;column:title" json:"title"`
	Description    string         `gorm:"not null;column:description" json:"description"`
	Priority       int            `gorm:"not null;default:1;column:priority" json:"priority"`

	TriggerContext      datatypes.JSON `gorm:"column:trigger_context" json:"trigger_context,omitempty"`
	AffectedUsers       datatypes.JSON `gorm:"column:affected_users" json:"affected_users,omitempty"`
	IsPersonal          bool           `gorm:"not null;default:false;index;column:is_personal" json:"is_personal"`
	TargetUserID        *uuid.UUID     `gorm:"type:uuid;index;column:target_user_id" json:"target_user_id,omitempty"`
	SuggestedDuration   int            `gorm:"column:suggested_duration" json:"suggested_duration"`
	ImplementationSteps datatypes.JSON `gorm:"column:implementation_steps" json:"implementation_steps,omitempty"`

	Status      SuggestionStatus `gorm:"not null;default:'pending';column:status" json:"status"`
	CreatedAt   time.Time        `gorm:"not null;index;default:now()" json:"created_at"`
	RespondedAt *time.Time       `gorm:"column:responded_at" json:"responded_at,omitempty"`
	RespondedBy *uuid.UUID       `gorm:"type:uuid;column:responded_by" json:"responded_by,omitempty"`

	EffectivenessRating *int   `gorm:"column:effectiveness_rating" json:"effectiveness_rating,omitempty"`
	FeedbackNotes       string `gorm:"column:feedback_notes" json:"feedback_notes,omitempty"`
}

func (Suggestion) TableName() string {
	return "suggestion"
}

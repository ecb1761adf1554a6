package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Journal struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	SessionID *uuid.UUID `gorm:"type:uuid;index;column:session_id" json:"session_id,omitempty"`

	Title   string `gorm:"column:title" json:"title"`
	Content string `gorm:"not null;column:content" json:"content"`

	SentimentScore    *float64       `gorm:"column:sentiment_score" json:"sentiment_score,omitempty"`
	EmotionAnalysis   datatypes.JSON `gorm:"column:emotion_analysis" json:"emotion_analysis,omitempty"`
	AnalysisCompleted bool           `gorm:"default:false;column:analysis_completed" json:"analysis_completed"`

	IsPrivate       bool `gorm:"default:true;column:is_private" json:"is_private"`
	AllowAIAnalysis bool `gorm:"default:true;column:allow_ai_analysis" json:"allow_ai_analysis"`
	ShareInsights   bool `gorm:"default:false;column:share_insights" json:"share_insights"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Journal) TableName() string {
	return "journal"
}

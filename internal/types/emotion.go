package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EmotionType string

const (
	EmotionHappy    EmotionType = "happy"
	EmotionSad      EmotionType = "sad"
	EmotionAngry    EmotionType = "angry"
	EmotionFear     EmotionType = "fear"
	EmotionSurprise EmotionType = "surprise"
	EmotionDisgust  EmotionType = "disgust"
	EmotionNeutral  EmotionType = "neutral"
	EmotionStressed EmotionType = "stressed"
	EmotionExcited  EmotionType = "excited"
	EmotionConfused EmotionType = "confused"
)

var emotionTypes = map[EmotionType]bool{
	EmotionHappy:    true,
	EmotionSad:      true,
	EmotionAngry:    true,
	EmotionFear:     true,
	EmotionSurprise: true,
	EmotionDisgust:  true,
	EmotionNeutral:  true,
	EmotionStressed: true,
	EmotionExcited:  true,
	EmotionConfused: true,
}

func ParseEmotionType(s string) (EmotionType, error) {
	et := EmotionType(s)
	if !emotionTypes[et] {
		return "", fmt.Errorf("invalid emotion type %q", s)
	}
	return et, nil
}

// IsNegative reports whether the emotion counts toward the negative
// fraction (sad, angry, stressed).
func (et EmotionType) IsNegative() bool {
	return et == EmotionSad || et == EmotionAngry || et == EmotionStressed
}

func (et EmotionType) IsPositive() bool {
	return et == EmotionHappy || et == EmotionExcited
}

type AnalysisSource string

const (
	SourceText   AnalysisSource = "text"
	SourceVoice  AnalysisSource = "voice"
	SourceFacial AnalysisSource = "facial"
	SourceManual AnalysisSource = "manual"
)

func ParseAnalysisSource(s string) (AnalysisSource, error) {
	switch src := AnalysisSource(s); src {
	case SourceText, SourceVoice, SourceFacial, SourceManual:
		return src, nil
	default:
		return "", fmt.Errorf("invalid analysis source %q", s)
	}
}

// EmotionObservation is one classified emotion reading. Records are
// immutable after creation; the engine consumes them read-only.
type EmotionObservation struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	SessionID *uuid.UUID `gorm:"type:uuid;index;column:session_id" json:"session_id,omitempty"`

	EmotionType EmotionType `gorm:"not null;column:emotion_type" json:"emotion_type"`
	Intensity   float64     `gorm:"not null;column:intensity" json:"intensity"`
	Confidence  float64     `gorm:"not null;default:0;column:confidence" json:"confidence"`

	Source           AnalysisSource `gorm:"not null;column:source" json:"source"`
	RawData          datatypes.JSON `gorm:"column:raw_data" json:"raw_data,omitempty"`
	AnalysisMetadata datatypes.JSON `gorm:"column:analysis_metadata" json:"analysis_metadata,omitempty"`

	Timestamp        time.Time `gorm:"not null;index;column:timestamp" json:"timestamp"`
	SessionTimestamp *int      `gorm:"column:session_timestamp" json:"session_timestamp,omitempty"`

	Context     string `gorm:"size:500;column:context" json:"context,omitempty"`
	IsProcessed bool   `gorm:"default:false;column:is_processed" json:"is_processed"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (EmotionObservation) TableName() string {
	return "emotion_observation"
}

// Clamp01 bounds intensity and confidence style values into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

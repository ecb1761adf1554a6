// Package engine contains the emotion analysis and suggestion engine:
// classification of raw emotion input, aggregation of observation
// batches into team and per-user statistics, threshold rule
// evaluation, suggestion prioritization, and post-session reflection
// generation. Everything in this package is a pure function of its
// input; the only external capability is the TextClassifier interface.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/scrummood/scrummood-backend/internal/types"
)

// Estimate is the output of a single classification call. It is
// transient; callers use it to construct an EmotionObservation.
type Estimate struct {
	Emotion        types.EmotionType  `json:"emotion"`
	Intensity      float64            `json:"intensity"`
	Confidence     float64            `json:"confidence"`
	SentimentScore float64            `json:"sentiment_score"`
	AllEmotions    map[string]float64 `json:"all_emotions,omitempty"`
	Metadata       map[string]any     `json:"metadata,omitempty"`
}

// Input carries the raw payload for one classification call. Which
// fields are consulted depends on the source.
type Input struct {
	Text           string
	AudioFeatures  map[string]float64
	FacialFeatures map[string]float64

	// Manual entries supply the emotion directly.
	EmotionType string
	Intensity   *float64
}

// TextClassifier is the external text-sentiment capability. Any
// transport or parse failure must be returned as an error; the
// classifier adapter converts it into the soft fallback estimate.
type TextClassifier interface {
	AnalyzeText(ctx context.Context, text string) (Estimate, error)
}

const (
	voiceConfidence  = 0.7
	facialConfidence = 0.8
	manualConfidence = 1.0
)

// Classifier routes a classification request to the strategy for its
// source. It is a stateless value type and safe for concurrent use.
type Classifier struct {
	text TextClassifier
}

func NewClassifier(text TextClassifier) Classifier {
	return Classifier{text: text}
}

// Classify produces a uniform Estimate for the given source and
// payload. Text classification fails soft: an unreachable or
// malformed external classifier yields a neutral low-confidence
// estimate, never an error. Manual entries are validated strictly.
func (c Classifier) Classify(ctx context.Context, source types.AnalysisSource, in Input) (Estimate, error) {
	switch source {
	case types.SourceText:
		return c.classifyText(ctx, in.Text), nil
	case types.SourceVoice:
		return classifyVoice(in.AudioFeatures), nil
	case types.SourceFacial:
		return classifyFacial(in.FacialFeatures), nil
	case types.SourceManual:
		return classifyManual(in)
	default:
		return Estimate{}, fmt.Errorf("invalid analysis source %q", source)
	}
}

func (c Classifier) classifyText(ctx context.Context, text string) Estimate {
	if c.text != nil {
		est, err := c.text.AnalyzeText(ctx, text)
		if err == nil {
			est.Intensity = types.Clamp01(est.Intensity)
			est.Confidence = types.Clamp01(est.Confidence)
			return est
		}
		return fallbackEstimate(err)
	}
	return fallbackEstimate(fmt.Errorf("no text classifier configured"))
}

// fallbackEstimate is the documented soft-fallback value used whenever
// the external text classifier is unavailable or returns garbage.
func fallbackEstimate(cause error) Estimate {
	return Estimate{
		Emotion:        types.EmotionNeutral,
		Intensity:      0.5,
		Confidence:     0.1,
		SentimentScore: 0.0,
		AllEmotions:    map[string]float64{},
		Metadata: map[string]any{
			"error":              cause.Error(),
			"analysis_timestamp": time.Now().UTC().Format(time.RFC3339),
			"analyzer_version":   "fallback-1.0",
		},
	}
}

func classifyVoice(features map[string]float64) Estimate {
	pitch := featureOr(features, "pitch", 0.5)
	energy := featureOr(features, "energy", 0.5)
	speakingRate := featureOr(features, "speaking_rate", 0.5)

	var emotion types.EmotionType
	var intensity float64
	switch {
	case energy > 0.8 && pitch > 0.7:
		emotion = types.EmotionHappy
		if speakingRate > 0.6 {
			emotion = types.EmotionExcited
		}
		intensity = math.Min(energy, 0.9)
	case energy < 0.3 && pitch < 0.4:
		emotion = types.EmotionSad
		intensity = 1.0 - energy
	case speakingRate > 0.8 && energy > 0.6:
		emotion = types.EmotionStressed
		intensity = speakingRate * 0.8
	default:
		emotion = types.EmotionNeutral
		intensity = 0.5
	}

	return Estimate{
		Emotion:    emotion,
		Intensity:  round3(intensity),
		Confidence: voiceConfidence,
		Metadata: map[string]any{
			"audio_features": features,
			"analyzer_type":  "voice",
		},
	}
}

func classifyFacial(features map[string]float64) Estimate {
	smile := featureOr(features, "smile", 0.5)
	eyebrowPosition := featureOr(features, "eyebrow_position", 0.5)
	eyeOpenness := featureOr(features, "eye_openness", 0.5)

	var emotion types.EmotionType
	var intensity float64
	switch {
	case smile > 0.7:
		emotion = types.EmotionHappy
		intensity = smile
	case eyebrowPosition < 0.3 && eyeOpenness < 0.4:
		emotion = types.EmotionSad
		intensity = 1.0 - eyeOpenness
	case eyebrowPosition < 0.2:
		emotion = types.EmotionAngry
		intensity = 1.0 - eyebrowPosition
	default:
		emotion = types.EmotionNeutral
		intensity = 0.5
	}

	return Estimate{
		Emotion:    emotion,
		Intensity:  round3(intensity),
		Confidence: facialConfidence,
		Metadata: map[string]any{
			"facial_features": features,
			"analyzer_type":   "facial",
		},
	}
}

func classifyManual(in Input) (Estimate, error) {
	if in.EmotionType == "" || in.Intensity == nil {
		return Estimate{}, fmt.Errorf("emotion_type and intensity required for manual input")
	}
	emotion, err := types.ParseEmotionType(in.EmotionType)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{
		Emotion:    emotion,
		Intensity:  types.Clamp01(*in.Intensity),
		Confidence: manualConfidence,
		Metadata:   map[string]any{"analyzer_type": "manual"},
	}, nil
}

func featureOr(features map[string]float64, key string, def float64) float64 {
	if v, ok := features[key]; ok {
		return v
	}
	return def
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package engine

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/scrummood/scrummood-backend/internal/types"
)

type fakeTextClassifier struct {
	est Estimate
	err error
}

func (f *fakeTextClassifier) AnalyzeText(ctx context.Context, text string) (Estimate, error) {
	if f.err != nil {
		return Estimate{}, f.err
	}
	return f.est, nil
}

func TestClassifyVoice_Heuristics(t *testing.T) {
	cases := []struct {
		name      string
		features  map[string]float64
		emotion   types.EmotionType
		intensity float64
	}{
		{
			name:      "defaults are neutral",
			features:  nil,
			emotion:   types.EmotionNeutral,
			intensity: 0.5,
		},
		{
			name:      "high energy and pitch is happy",
			features:  map[string]float64{"energy": 0.85, "pitch": 0.75, "speaking_rate": 0.5},
			emotion:   types.EmotionHappy,
			intensity: 0.85,
		},
		{
			name:      "fast happy speech is excited, intensity capped",
			features:  map[string]float64{"energy": 0.95, "pitch": 0.8, "speaking_rate": 0.7},
			emotion:   types.EmotionExcited,
			intensity: 0.9,
		},
		{
			name:      "low energy and pitch is sad",
			features:  map[string]float64{"energy": 0.2, "pitch": 0.3},
			emotion:   types.EmotionSad,
			intensity: 0.8,
		},
		{
			name:      "fast energetic speech is stressed",
			features:  map[string]float64{"energy": 0.7, "speaking_rate": 0.9, "pitch": 0.5},
			emotion:   types.EmotionStressed,
			intensity: 0.72,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			est := classifyVoice(tc.features)
			if est.Emotion != tc.emotion {
				t.Fatalf("expected emotion %s, got %s", tc.emotion, est.Emotion)
			}
			if math.Abs(est.Intensity-tc.intensity) > 1e-9 {
				t.Fatalf("expected intensity %v, got %v", tc.intensity, est.Intensity)
			}
			if est.Confidence != voiceConfidence {
				t.Fatalf("expected confidence %v, got %v", voiceConfidence, est.Confidence)
			}
		})
	}
}

func TestClassifyFacial_Heuristics(t *testing.T) {
	cases := []struct {
		name      string
		features  map[string]float64
		emotion   types.EmotionType
		intensity float64
	}{
		{
			name:      "defaults are neutral",
			features:  nil,
			emotion:   types.EmotionNeutral,
			intensity: 0.5,
		},
		{
			name:      "big smile is happy",
			features:  map[string]float64{"smile": 0.8},
			emotion:   types.EmotionHappy,
			intensity: 0.8,
		},
		{
			name:      "low eyebrows and closed eyes are sad",
			features:  map[string]float64{"eyebrow_position": 0.2, "eye_openness": 0.3},
			emotion:   types.EmotionSad,
			intensity: 0.7,
		},
		{
			name:      "very low eyebrows alone are angry",
			features:  map[string]float64{"eyebrow_position": 0.15, "eye_openness": 0.5},
			emotion:   types.EmotionAngry,
			intensity: 0.85,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			est := classifyFacial(tc.features)
			if est.Emotion != tc.emotion {
				t.Fatalf("expected emotion %s, got %s", tc.emotion, est.Emotion)
			}
			if math.Abs(est.Intensity-tc.intensity) > 1e-9 {
				t.Fatalf("expected intensity %v, got %v", tc.intensity, est.Intensity)
			}
			if est.Confidence != facialConfidence {
				t.Fatalf("expected confidence %v, got %v", facialConfidence, est.Confidence)
			}
		})
	}
}

func TestClassifyManual_PassthroughAndValidation(t *testing.T) {
	c := NewClassifier(nil)

	intensity := 1.4
	est, err := c.Classify(context.Background(), types.SourceManual, Input{
		EmotionType: "stressed",
		Intensity:   &intensity,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Emotion != types.EmotionStressed {
		t.Fatalf("expected stressed, got %s", est.Emotion)
	}
	if est.Intensity != 1.0 {
		t.Fatalf("expected intensity clamped to 1.0, got %v", est.Intensity)
	}
	if est.Confidence != manualConfidence {
		t.Fatalf("expected confidence 1.0, got %v", est.Confidence)
	}

	if _, err := c.Classify(context.Background(), types.SourceManual, Input{EmotionType: "stressed"}); err == nil {
		t.Fatalf("expected error when intensity missing")
	}
	half := 0.5
	if _, err := c.Classify(context.Background(), types.SourceManual, Input{EmotionType: "grumpy", Intensity: &half}); err == nil {
		t.Fatalf("expected error for unknown emotion type")
	}
}

func TestClassifyText_FallsBackSoftly(t *testing.T) {
	cases := []struct {
		name string
		c    Classifier
	}{
		{name: "no classifier configured", c: NewClassifier(nil)},
		{name: "classifier errors", c: NewClassifier(&fakeTextClassifier{err: fmt.Errorf("boom")})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			est, err := tc.c.Classify(context.Background(), types.SourceText, Input{Text: "rough day"})
			if err != nil {
				t.Fatalf("text classification must not error, got %v", err)
			}
			if est.Emotion != types.EmotionNeutral || est.Intensity != 0.5 || est.Confidence != 0.1 {
				t.Fatalf("unexpected fallback estimate: %+v", est)
			}
			if est.SentimentScore != 0 {
				t.Fatalf("expected neutral sentiment, got %v", est.SentimentScore)
			}
			if _, ok := est.Metadata["error"]; !ok {
				t.Fatalf("expected error marker in metadata")
			}
		})
	}
}

func TestClassifyText_UsesClassifierAndClamps(t *testing.T) {
	c := NewClassifier(&fakeTextClassifier{est: Estimate{
		Emotion:        types.EmotionHappy,
		Intensity:      1.3,
		Confidence:     0.95,
		SentimentScore: 0.8,
	}})

	est, err := c.Classify(context.Background(), types.SourceText, Input{Text: "great sprint"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Emotion != types.EmotionHappy {
		t.Fatalf("expected happy, got %s", est.Emotion)
	}
	if est.Intensity != 1.0 {
		t.Fatalf("expected intensity clamped to 1.0, got %v", est.Intensity)
	}
}

func TestClassify_RejectsUnknownSource(t *testing.T) {
	c := NewClassifier(nil)
	if _, err := c.Classify(context.Background(), types.AnalysisSource("telepathy"), Input{}); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}

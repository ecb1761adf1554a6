package engine

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/types"
)

// UserMetrics is the per-user slice of an AggregateAnalysis.
type UserMetrics struct {
	StressLevel         float64           `json:"stress_level"`
	NegativePercentage  float64           `json:"negative_percentage"`
	NeutralPercentage   float64           `json:"neutral_percentage"`
	EmotionalVolatility float64           `json:"emotional_volatility"`
	EmotionCount        int               `json:"emotion_count"`
	DominantEmotion     types.EmotionType `json:"dominant_emotion"`
	NeedsAttention      bool              `json:"needs_attention"`
}

type HighStressUser struct {
	UserID       uuid.UUID `json:"user_id"`
	StressLevel  float64   `json:"stress_level"`
	EmotionCount int       `json:"emotion_count"`
}

// AggregateAnalysis is the derived statistical summary of one
// observation batch. It is ephemeral and recomputed on every rule
// evaluation. Percentage fields are fractions of the batch in [0,1].
type AggregateAnalysis struct {
	TotalCount      int                       `json:"total_count"`
	UniqueUsers     int                       `json:"unique_users"`
	CountsByEmotion map[types.EmotionType]int `json:"counts_by_emotion"`
	StressCount     int                       `json:"stress_count"`
	NegativeCount   int                       `json:"negative_count"`
	NeutralCount    int                       `json:"neutral_count"`

	NegativePercentage  float64 `json:"negative_percentage"`
	LowEnergyPercentage float64 `json:"low_energy_percentage"`
	EmotionalVolatility float64 `json:"emotional_volatility"`
	AverageIntensity    float64 `json:"average_intensity"`

	HighStressUsers []HighStressUser `json:"high_stress_users"`

	Users map[uuid.UUID]UserMetrics `json:"users"`
	// UserOrder lists user ids by first appearance in the batch, so
	// every consumer of Users iterates deterministically.
	UserOrder []uuid.UUID `json:"-"`
}

// Aggregate computes per-user and team statistics over a finite batch
// of observations. An empty batch yields a zeroed analysis with empty
// maps and lists; it never divides by zero.
func Aggregate(observations []types.EmotionObservation, th Thresholds) AggregateAnalysis {
	analysis := AggregateAnalysis{
		CountsByEmotion: make(map[types.EmotionType]int),
		HighStressUsers: []HighStressUser{},
		Users:           make(map[uuid.UUID]UserMetrics),
		UserOrder:       []uuid.UUID{},
	}
	if len(observations) == 0 {
		return analysis
	}

	byUser := make(map[uuid.UUID][]types.EmotionObservation)
	intensities := make([]float64, 0, len(observations))
	for _, obs := range observations {
		if _, seen := byUser[obs.UserID]; !seen {
			analysis.UserOrder = append(analysis.UserOrder, obs.UserID)
		}
		byUser[obs.UserID] = append(byUser[obs.UserID], obs)
		intensities = append(intensities, obs.Intensity)

		analysis.CountsByEmotion[obs.EmotionType]++
		if obs.EmotionType == types.EmotionStressed {
			analysis.StressCount++
		}
		if obs.EmotionType.IsNegative() {
			analysis.NegativeCount++
		}
		if obs.EmotionType == types.EmotionNeutral {
			analysis.NeutralCount++
		}
	}

	total := len(observations)
	analysis.TotalCount = total
	analysis.UniqueUsers = len(byUser)
	analysis.NegativePercentage = float64(analysis.NegativeCount) / float64(total)
	analysis.LowEnergyPercentage = float64(analysis.NeutralCount) / float64(total)
	analysis.EmotionalVolatility = sampleStdev(intensities)
	analysis.AverageIntensity = mean(intensities)

	for _, userID := range analysis.UserOrder {
		userObs := byUser[userID]
		metrics := computeUserMetrics(userObs, th)
		analysis.Users[userID] = metrics
		if metrics.StressLevel > th.IndividualStressHigh {
			analysis.HighStressUsers = append(analysis.HighStressUsers, HighStressUser{
				UserID:       userID,
				StressLevel:  metrics.StressLevel,
				EmotionCount: metrics.EmotionCount,
			})
		}
	}

	return analysis
}

func computeUserMetrics(userObs []types.EmotionObservation, th Thresholds) UserMetrics {
	var stressIntensities, intensities []float64
	var negativeCount, neutralCount int
	for _, obs := range userObs {
		intensities = append(intensities, obs.Intensity)
		if obs.EmotionType == types.EmotionStressed {
			stressIntensities = append(stressIntensities, obs.Intensity)
		}
		if obs.EmotionType.IsNegative() {
			negativeCount++
		}
		if obs.EmotionType == types.EmotionNeutral {
			neutralCount++
		}
	}

	total := len(userObs)
	metrics := UserMetrics{
		EmotionCount:        total,
		EmotionalVolatility: sampleStdev(intensities),
		DominantEmotion:     DominantEmotion(userObs),
	}
	if len(stressIntensities) > 0 {
		metrics.StressLevel = mean(stressIntensities)
	}
	if total > 0 {
		metrics.NegativePercentage = float64(negativeCount) / float64(total)
		metrics.NeutralPercentage = float64(neutralCount) / float64(total)
	}

	metrics.NeedsAttention = metrics.StressLevel > th.IndividualStressHigh ||
		metrics.NegativePercentage > th.IndividualNegativeHigh ||
		metrics.NeutralPercentage > th.IndividualLowEnergy ||
		metrics.EmotionalVolatility > th.IndividualVolatility

	return metrics
}

// DominantEmotion returns the most frequent emotion type in the batch.
// Ties break toward the emotion encountered first, so the result is
// deterministic for a given observation order.
func DominantEmotion(observations []types.EmotionObservation) types.EmotionType {
	if len(observations) == 0 {
		return types.EmotionNeutral
	}
	counts := make(map[types.EmotionType]int)
	firstSeen := make(map[types.EmotionType]int)
	for i, obs := range observations {
		if _, ok := counts[obs.EmotionType]; !ok {
			firstSeen[obs.EmotionType] = i
		}
		counts[obs.EmotionType]++
	}

	dominant := observations[0].EmotionType
	for emotion, count := range counts {
		if count > counts[dominant] ||
			(count == counts[dominant] && firstSeen[emotion] < firstSeen[dominant]) {
			dominant = emotion
		}
	}
	return dominant
}

// EmotionBreakdown is one entry of a per-emotion distribution summary.
type EmotionBreakdown struct {
	Count            int     `json:"count"`
	Percentage       float64 `json:"percentage"`
	AverageIntensity float64 `json:"average_intensity"`
}

// Distribution summarizes a batch as count / percentage / mean
// intensity per emotion type. Percentages are expressed 0..100.
func Distribution(observations []types.EmotionObservation) map[types.EmotionType]EmotionBreakdown {
	summary := make(map[types.EmotionType]EmotionBreakdown)
	if len(observations) == 0 {
		return summary
	}

	counts := make(map[types.EmotionType]int)
	totalIntensity := make(map[types.EmotionType]float64)
	for _, obs := range observations {
		counts[obs.EmotionType]++
		totalIntensity[obs.EmotionType] += obs.Intensity
	}

	total := float64(len(observations))
	for emotion, count := range counts {
		summary[emotion] = EmotionBreakdown{
			Count:            count,
			Percentage:       round2(float64(count) / total * 100),
			AverageIntensity: round3(totalIntensity[emotion] / float64(count)),
		}
	}
	return summary
}

// SortChronological returns a copy of the batch ordered by timestamp
// ascending. The input is never mutated.
func SortChronological(observations []types.EmotionObservation) []types.EmotionObservation {
	sorted := make([]types.EmotionObservation, len(observations))
	copy(sorted, observations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdev is the n-1 standard deviation, 0 for fewer than two
// samples. The volatility thresholds are calibrated against this
// estimator, not the population form.
func sampleStdev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	var sumSquares float64
	for _, v := range values {
		d := v - m
		sumSquares += d * d
	}
	return math.Sqrt(sumSquares / float64(n-1))
}

package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/types"
)

// JourneyPoint is one step of a user's time-ordered emotional
// trajectory.
type JourneyPoint struct {
	Timestamp time.Time         `json:"timestamp"`
	Emotion   types.EmotionType `json:"emotion"`
	Intensity float64           `json:"intensity"`
}

// ReflectionSummary mirrors the per-user aggregate statistics plus the
// dominant emotion. Distribution percentages are expressed 0..100.
type ReflectionSummary struct {
	TotalTracked        int                           `json:"total_emotions_tracked"`
	DominantEmotion     types.EmotionType             `json:"dominant_emotion"`
	EmotionDistribution map[types.EmotionType]float64 `json:"emotion_distribution"`
	EmotionalStability  float64                       `json:"emotional_stability"`
	AverageIntensity    float64                       `json:"average_intensity"`
}

// Reflection is the post-session narrative output for one user.
type Reflection struct {
	UserID    uuid.UUID  `json:"user_id"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	HasData   bool       `json:"has_data"`
	Message   string     `json:"message,omitempty"`

	EmotionSummary *ReflectionSummary `json:"emotion_summary,omitempty"`
	EmotionJourney []JourneyPoint     `json:"emotion_journey,omitempty"`
	Insights       []string           `json:"insights,omitempty"`
	ActionItems    []string           `json:"action_items,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

const maxActionItems = 3

// Reflect computes a personal reflection from a session's observation
// batch. Observations belonging to other users are filtered out. A
// batch with no usable data yields a no-data reflection, never an
// error.
func Reflect(userID uuid.UUID, sessionID *uuid.UUID, observations []types.EmotionObservation) Reflection {
	now := time.Now().UTC()
	if len(observations) == 0 {
		return Reflection{
			UserID:      userID,
			SessionID:   sessionID,
			HasData:     false,
			Message:     "Not enough emotion data was collected to generate a reflection.",
			GeneratedAt: now,
		}
	}

	var userObs []types.EmotionObservation
	for _, obs := range observations {
		if obs.UserID == userID {
			userObs = append(userObs, obs)
		}
	}
	if len(userObs) == 0 {
		return Reflection{
			UserID:      userID,
			SessionID:   sessionID,
			HasData:     false,
			Message:     "No emotion data was collected for this user.",
			GeneratedAt: now,
		}
	}

	sorted := SortChronological(userObs)

	total := len(sorted)
	distribution := make(map[types.EmotionType]float64)
	counts := make(map[types.EmotionType]int)
	intensities := make([]float64, 0, total)
	for _, obs := range sorted {
		counts[obs.EmotionType]++
		intensities = append(intensities, obs.Intensity)
	}
	for emotion, count := range counts {
		distribution[emotion] = float64(count) / float64(total) * 100
	}

	stability := 1.0 - sampleStdev(intensities)
	dominant := DominantEmotion(sorted)

	journey := make([]JourneyPoint, 0, total)
	for _, obs := range sorted {
		journey = append(journey, JourneyPoint{
			Timestamp: obs.Timestamp,
			Emotion:   obs.EmotionType,
			Intensity: obs.Intensity,
		})
	}

	return Reflection{
		UserID:    userID,
		SessionID: sessionID,
		HasData:   true,
		EmotionSummary: &ReflectionSummary{
			TotalTracked:        total,
			DominantEmotion:     dominant,
			EmotionDistribution: distribution,
			EmotionalStability:  round2(stability),
			AverageIntensity:    round2(mean(intensities)),
		},
		EmotionJourney: journey,
		Insights:       personalInsights(dominant, stability, sorted),
		ActionItems:    personalActionItems(dominant, stability),
		GeneratedAt:    now,
	}
}

func personalInsights(dominant types.EmotionType, stability float64, sorted []types.EmotionObservation) []string {
	var insights []string

	switch dominant {
	case types.EmotionHappy:
		insights = append(insights, "You maintained a positive emotional state throughout most of the session, which likely contributed to a constructive atmosphere.")
	case types.EmotionNeutral:
		insights = append(insights, "You maintained a balanced emotional state during the session, which may indicate focused attention or reserved engagement.")
	case types.EmotionStressed:
		insights = append(insights, "You experienced elevated stress levels during this session. Consider what specific topics or interactions triggered this response.")
	case types.EmotionSad:
		insights = append(insights, "You expressed sadness during parts of this session. Reflecting on the causes may help address underlying concerns.")
	case types.EmotionAngry:
		insights = append(insights, "You experienced frustration or anger during this session. Consider what specific issues triggered these emotions and how they might be addressed constructively.")
	}

	if stability > 0.8 {
		insights = append(insights, "Your emotions remained quite stable throughout the session, suggesting good emotional regulation.")
	} else if stability < 0.5 {
		insights = append(insights, "Your emotions fluctuated significantly during the session, which may indicate strong reactions to different discussion points.")
	}

	if len(sorted) >= 3 {
		third := len(sorted) / 3
		firstNegatives := countNegative(sorted[:third])
		lastNegatives := countNegative(sorted[len(sorted)-third:])
		if firstNegatives > lastNegatives {
			insights = append(insights, "Your emotional state appeared to improve as the session progressed, suggesting effective engagement or resolution of concerns.")
		} else if firstNegatives < lastNegatives {
			insights = append(insights, "Your emotional state appeared to decline as the session progressed, which might indicate growing concerns or fatigue.")
		}
	}

	if len(sorted) > 5 {
		insights = append(insights, "Your consistent emotional tracking suggests active engagement throughout the session.")
	} else if len(sorted) < 3 {
		insights = append(insights, "Limited emotional data was collected, which may indicate periods of disengagement or technical issues.")
	}

	return insights
}

func personalActionItems(dominant types.EmotionType, stability float64) []string {
	var items []string

	switch dominant {
	case types.EmotionHappy:
		items = append(items, "Share what aspects of the session you found most positive to help maintain this environment in future meetings.")
	case types.EmotionNeutral:
		items = append(items, "Reflect on what would increase your engagement and enthusiasm in future sessions.")
	case types.EmotionStressed:
		items = append(items,
			"Identify specific stressors from this session and develop strategies to manage them in future meetings.",
			"Consider discussing workload or deadline concerns with your team lead if these were contributing factors.")
	case types.EmotionSad:
		items = append(items,
			"Take time to process any disappointing news or outcomes from the session.",
			"Consider speaking with a team lead or trusted colleague about any concerns.")
	case types.EmotionAngry:
		items = append(items,
			"Identify specific triggers for your frustration and consider constructive ways to address these issues.",
			"Practice communication techniques that help express concerns without escalating tension.")
	}

	if stability < 0.5 {
		items = append(items, "Practice mindfulness techniques to help maintain emotional balance during challenging discussions.")
	}

	items = append(items, "Set a personal goal for how you want to feel and participate in the next session.")

	if len(items) > maxActionItems {
		items = items[:maxActionItems]
	}
	return items
}

func countNegative(observations []types.EmotionObservation) int {
	var n int
	for _, obs := range observations {
		if obs.EmotionType.IsNegative() {
			n++
		}
	}
	return n
}

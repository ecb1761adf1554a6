package engine

import (
	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/types"
)

// SuggestionCandidate is an intervention selected by the rule engine
// before prioritization. TriggerContext snapshots the analysis values
// that caused selection.
type SuggestionCandidate struct {
	Type            types.SuggestionType `json:"type"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Priority        int                  `json:"priority"`
	DurationMinutes int                  `json:"duration_minutes"`
	Steps           []string             `json:"steps"`
	TriggerContext  map[string]any       `json:"trigger_context"`
	AffectedUsers   []uuid.UUID          `json:"affected_users"`
	IsPersonal      bool                 `json:"is_personal"`
	// UserID is the target of a personal suggestion; nil for team
	// suggestions.
	UserID *uuid.UUID `json:"user_id,omitempty"`
}

// RuleEngine evaluates an AggregateAnalysis against its thresholds.
// It performs no I/O and holds no mutable state; evaluating the same
// analysis twice yields identical output.
type RuleEngine struct {
	thresholds Thresholds
}

func NewRuleEngine(th Thresholds) RuleEngine {
	return RuleEngine{thresholds: th}
}

// Evaluate returns the team and personal suggestion candidates for an
// analysis, in fixed rule order. Candidates are not yet deduplicated
// or capped; see Finalize.
func (re RuleEngine) Evaluate(analysis AggregateAnalysis) (team []SuggestionCandidate, personal []SuggestionCandidate) {
	if analysis.TotalCount == 0 {
		return nil, nil
	}
	team = re.evaluateTeam(analysis)
	personal = re.evaluatePersonal(analysis)
	return team, personal
}

func (re RuleEngine) evaluateTeam(analysis AggregateAnalysis) []SuggestionCandidate {
	th := re.thresholds
	var out []SuggestionCandidate

	highStressIDs := make([]uuid.UUID, 0, len(analysis.HighStressUsers))
	for _, u := range analysis.HighStressUsers {
		highStressIDs = append(highStressIDs, u.UserID)
	}

	stressFraction := float64(analysis.StressCount) / float64(analysis.TotalCount)
	if stressFraction > th.StressTeamCritical {
		out = append(out, newTeamCandidate(types.SuggestionBreak, 3, analysis, highStressIDs))
	} else if stressFraction > th.StressTeamPercentage {
		out = append(out, newTeamCandidate(types.SuggestionBreathing, 2, analysis, highStressIDs))
	}

	if len(analysis.HighStressUsers) > 0 {
		out = append(out, newTeamCandidate(types.SuggestionCheckIn, 2, analysis, highStressIDs))
	}

	if analysis.LowEnergyPercentage > th.LowEnergyPercentage {
		out = append(out, newTeamCandidate(types.SuggestionEnergizer, 2, analysis, analysis.UserOrder))
	}

	if analysis.NegativePercentage > th.NegativeEmotionsPercentage {
		out = append(out, newTeamCandidate(types.SuggestionDiscussion, 3, analysis, analysis.UserOrder))
	}

	if analysis.EmotionalVolatility > th.EmotionalVolatility {
		out = append(out, newTeamCandidate(types.SuggestionRestructure, 2, analysis, analysis.UserOrder))
	}

	return out
}

// evaluatePersonal applies the per-user precedence chain: stress, then
// low energy, then volatility, then negative emotions. The first
// matching rule wins; every flagged user gets exactly one suggestion.
func (re RuleEngine) evaluatePersonal(analysis AggregateAnalysis) []SuggestionCandidate {
	th := re.thresholds
	var out []SuggestionCandidate

	for _, userID := range analysis.UserOrder {
		metrics := analysis.Users[userID]
		if !metrics.NeedsAttention {
			continue
		}

		switch {
		case metrics.StressLevel > th.IndividualStressHigh:
			suggestionType := types.SuggestionStressManagement
			priority := 2
			if metrics.StressLevel > th.IndividualStressCritical {
				suggestionType = types.SuggestionPersonalBreak
				priority = 3
			}
			out = append(out, newPersonalCandidate(suggestionType, priority, userID, metrics))
		case metrics.NeutralPercentage > th.IndividualLowEnergy:
			out = append(out, newPersonalCandidate(types.SuggestionEngagementBoost, 2, userID, metrics))
		case metrics.EmotionalVolatility > th.IndividualVolatility:
			out = append(out, newPersonalCandidate(types.SuggestionEmotionalRegulation, 2, userID, metrics))
		case metrics.NegativePercentage > th.IndividualNegativeHigh:
			out = append(out, newPersonalCandidate(types.SuggestionCommunicationAdjustment, 2, userID, metrics))
		}
	}

	return out
}

func newTeamCandidate(t types.SuggestionType, priority int, analysis AggregateAnalysis, affected []uuid.UUID) SuggestionCandidate {
	tpl, _ := TemplateFor(t)
	return SuggestionCandidate{
		Type:            t,
		Title:           tpl.Title,
		Description:     tpl.Description,
		Priority:        priority,
		DurationMinutes: tpl.DefaultDuration,
		Steps:           tpl.Steps,
		TriggerContext: map[string]any{
			"total_observations":   analysis.TotalCount,
			"negative_percentage":  analysis.NegativePercentage,
			"stress_count":         analysis.StressCount,
			"emotional_volatility": analysis.EmotionalVolatility,
		},
		AffectedUsers: affected,
		IsPersonal:    false,
	}
}

func newPersonalCandidate(t types.SuggestionType, priority int, userID uuid.UUID, metrics UserMetrics) SuggestionCandidate {
	tpl, _ := TemplateFor(t)
	uid := userID
	return SuggestionCandidate{
		Type:            t,
		Title:           tpl.Title,
		Description:     tpl.Description,
		Priority:        priority,
		DurationMinutes: tpl.DefaultDuration,
		Steps:           tpl.Steps,
		TriggerContext: map[string]any{
			"stress_level":         metrics.StressLevel,
			"negative_percentage":  metrics.NegativePercentage,
			"neutral_percentage":   metrics.NeutralPercentage,
			"emotional_volatility": metrics.EmotionalVolatility,
			"dominant_emotion":     string(metrics.DominantEmotion),
		},
		AffectedUsers: []uuid.UUID{userID},
		IsPersonal:    true,
		UserID:        &uid,
	}
}

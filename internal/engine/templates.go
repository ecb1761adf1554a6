package engine

import (
	"github.com/scrummood/scrummood-backend/internal/types"
)

// SuggestionTemplate is the immutable content of one intervention
// kind. Priority is decided by the triggering rule, not the template.
type SuggestionTemplate struct {
	Title           string
	Description     string
	DefaultDuration int
	Steps           []string
	IsPersonal      bool
}

var suggestionTemplates = map[types.SuggestionType]SuggestionTemplate{
	types.SuggestionBreak: {
		Title:           "Take a Break",
		Description:     "Team stress levels are elevated. A short break can help reset and improve focus.",
		DefaultDuration: 5,
		Steps: []string{
			"Pause the current discussion",
			"Allow team members to step away from their screens",
			"Encourage light stretching or deep breathing",
			"Return refreshed and focused",
		},
	},
	types.SuggestionBreathing: {
		Title:           "Breathing Exercise",
		Description:     "Guide the team through a quick breathing exercise to reduce tension.",
		DefaultDuration: 2,
		Steps: []string{
			"Ask everyone to sit comfortably",
			"Guide 4-7-8 breathing: inhale for 4, hold for 7, exhale for 8",
			"Repeat 3-4 cycles",
			"Return to the discussion with renewed focus",
		},
	},
	types.SuggestionEnergizer: {
		Title:           "Team Energizer",
		Description:     "Team energy is low. A quick energizing activity can boost engagement.",
		DefaultDuration: 3,
		Steps: []string{
			"Choose a quick icebreaker or energizer game",
			"Get everyone to participate actively",
			"Keep it light and fun",
			"Transition back to work topics",
		},
	},
	types.SuggestionCheckIn: {
		Title:           "Individual Check-in",
		Description:     "Some team members may need individual attention. Consider private follow-ups.",
		DefaultDuration: 0,
		Steps: []string{
			"Note team members showing signs of distress",
			"Schedule brief 1-on-1 conversations after the meeting",
			"Ask open-ended questions about their well-being",
			"Offer support and resources as needed",
		},
	},
	types.SuggestionDiscussion: {
		Title:           "Open Discussion",
		Description:     "Address team concerns through structured discussion.",
		DefaultDuration: 10,
		Steps: []string{
			"Acknowledge that you sense some team tension",
			"Ask for feedback on current processes or challenges",
			"Listen actively and validate concerns",
			"Collaborate on solutions",
		},
	},
	types.SuggestionRestructure: {
		Title:           "Restructure Meeting",
		Description:     "Consider changing the meeting format to better suit current team needs.",
		DefaultDuration: 0,
		Steps: []string{
			"Assess if the current agenda is causing stress",
			"Consider postponing non-urgent items",
			"Focus on essential topics only",
			"Schedule follow-up meetings for complex discussions",
		},
	},

	types.SuggestionPersonalBreak: {
		Title:           "Take a Personal Break",
		Description:     "Your stress levels appear elevated. Consider taking a short personal break.",
		DefaultDuration: 5,
		Steps: []string{
			"Step away from your screen for a few minutes",
			"Practice deep breathing or stretching",
			"Get a glass of water",
			"Return when you feel more centered",
		},
		IsPersonal: true,
	},
	types.SuggestionStressManagement: {
		Title:           "Stress Management Technique",
		Description:     "Try this quick stress management technique to help you regain focus.",
		DefaultDuration: 2,
		Steps: []string{
			"Take 5 deep breaths",
			"Identify what's causing your stress",
			"Focus on what you can control",
			"Set a small, achievable goal for the next few minutes",
		},
		IsPersonal: true,
	},
	types.SuggestionEngagementBoost: {
		Title:           "Boost Your Engagement",
		Description:     "Your engagement appears to be lower than usual. Here are some ways to reconnect.",
		DefaultDuration: 0,
		Steps: []string{
			"Ask a question about the current topic",
			"Share a relevant insight or experience",
			"Take notes to help focus your attention",
			"Consider if there's something specific causing your disengagement",
		},
		IsPersonal: true,
	},
	types.SuggestionEmotionalRegulation: {
		Title:           "Emotional Regulation",
		Description:     "Your emotions appear to be fluctuating. Try these techniques to find balance.",
		DefaultDuration: 0,
		Steps: []string{
			"Label your emotions specifically (not just \"upset\" but \"frustrated\" or \"disappointed\")",
			"Accept your emotions without judgment",
			"Consider the trigger for your emotional response",
			"Choose a constructive way to express your feelings",
		},
		IsPersonal: true,
	},
	types.SuggestionCommunicationAdjustment: {
		Title:           "Adjust Your Communication",
		Description:     "Consider adjusting your communication style to better express your thoughts.",
		DefaultDuration: 0,
		Steps: []string{
			"Use \"I\" statements to express your perspective",
			"Be specific about your concerns",
			"Ask clarifying questions",
			"Acknowledge others' viewpoints before sharing yours",
		},
		IsPersonal: true,
	},
}

// TemplateFor looks up the immutable template for a suggestion type.
func TemplateFor(t types.SuggestionType) (SuggestionTemplate, bool) {
	tpl, ok := suggestionTemplates[t]
	return tpl, ok
}

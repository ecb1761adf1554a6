package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrummood/scrummood-backend/internal/engine"
	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/repos"
	"github.com/scrummood/scrummood-backend/internal/types"
)

// PersonalReflection is the personal reflection payload, the engine
// output plus the user's journal entry when one exists.
type PersonalReflection struct {
	engine.Reflection
	Journal *types.Journal `json:"journal,omitempty"`
}

// TeamReflection is the facilitator-facing post-session summary.
// Participant insights are anonymized; no user ids appear in them.
type TeamReflection struct {
	SessionID       uuid.UUID     `json:"session_id"`
	SessionTitle    string        `json:"session_title"`
	Status          types.SessionStatus `json:"status"`
	DurationMinutes *int          `json:"duration_minutes,omitempty"`

	TotalObservations int `json:"total_observations"`
	ParticipantCount  int `json:"participant_count"`
	TrackedUserCount  int `json:"tracked_user_count"`

	DominantEmotion     types.EmotionType                             `json:"dominant_emotion"`
	EmotionDistribution map[types.EmotionType]engine.EmotionBreakdown `json:"emotion_distribution"`
	AverageIntensity    float64                                       `json:"average_intensity"`
	EmotionalVolatility float64                                       `json:"emotional_volatility"`

	ParticipantInsights []string `json:"participant_insights"`
	TeamInsights        []string `json:"team_insights"`

	SuggestionsGenerated int `json:"suggestions_generated"`

	GeneratedAt time.Time `json:"generated_at"`
}

// SaveJournalRequest is a journal create-or-update submission.
type SaveJournalRequest struct {
	UserID    uuid.UUID `json:"-"`
	SessionID uuid.UUID `json:"session_id"`

	Title   string `json:"title,omitempty"`
	Content string `json:"content"`

	IsPrivate       *bool `json:"is_private,omitempty"`
	AllowAIAnalysis *bool `json:"allow_ai_analysis,omitempty"`
	ShareInsights   *bool `json:"share_insights,omitempty"`
}

type ReflectionService interface {
	Personal(ctx context.Context, userID, sessionID uuid.UUID) (*PersonalReflection, error)
	Team(ctx context.Context, sessionID uuid.UUID) (*TeamReflection, error)
	SaveJournal(ctx context.Context, req SaveJournalRequest) (*types.Journal, error)
	GetJournal(ctx context.Context, userID, sessionID uuid.UUID) (*types.Journal, error)
}

type reflectionService struct {
	log            *logger.Logger
	thresholds     engine.Thresholds
	classifier     engine.Classifier
	emotionRepo    repos.EmotionRepo
	sessionRepo    repos.SessionRepo
	suggestionRepo repos.SuggestionRepo
	journalRepo    repos.JournalRepo
	userRepo       repos.UserRepo
}

func NewReflectionService(
	thresholds engine.Thresholds,
	classifier engine.Classifier,
	emotionRepo repos.EmotionRepo,
	sessionRepo repos.SessionRepo,
	suggestionRepo repos.SuggestionRepo,
	journalRepo repos.JournalRepo,
	userRepo repos.UserRepo,
	baseLog *logger.Logger,
) ReflectionService {
	return &reflectionService{
		log:            baseLog.With("service", "ReflectionService"),
		thresholds:     thresholds,
		classifier:     classifier,
		emotionRepo:    emotionRepo,
		sessionRepo:    sessionRepo,
		suggestionRepo: suggestionRepo,
		journalRepo:    journalRepo,
		userRepo:       userRepo,
	}
}

func (rs *reflectionService) Personal(ctx context.Context, userID, sessionID uuid.UUID) (*PersonalReflection, error) {
	observations, err := rs.emotionRepo.ListByUserSession(ctx, nil, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}

	sid := sessionID
	reflection := PersonalReflection{
		Reflection: engine.Reflect(userID, &sid, observations),
	}

	journal, err := rs.journalRepo.GetByUserSession(ctx, nil, userID, sessionID)
	if err == nil {
		reflection.Journal = journal
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	return &reflection, nil
}

func (rs *reflectionService) Team(ctx context.Context, sessionID uuid.UUID) (*TeamReflection, error) {
	session, err := rs.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	observations, err := rs.emotionRepo.ListBySession(ctx, nil, sessionID, repos.EmotionFilter{})
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	participants, err := rs.sessionRepo.ListParticipants(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	suggestions, err := rs.suggestionRepo.ListBySession(ctx, nil, sessionID, repos.SuggestionFilter{Limit: 100})
	if err != nil {
		return nil, fmt.Errorf("load suggestions: %w", err)
	}

	analysis := engine.Aggregate(observations, rs.thresholds)

	reflection := &TeamReflection{
		SessionID:            sessionID,
		SessionTitle:         session.Title,
		Status:               session.Status,
		DurationMinutes:      session.DurationMinutes(),
		TotalObservations:    analysis.TotalCount,
		ParticipantCount:     len(participants),
		TrackedUserCount:     analysis.UniqueUsers,
		DominantEmotion:      types.EmotionNeutral,
		EmotionDistribution:  engine.Distribution(observations),
		AverageIntensity:     analysis.AverageIntensity,
		EmotionalVolatility:  analysis.EmotionalVolatility,
		ParticipantInsights:  participantInsights(analysis),
		TeamInsights:         teamInsights(analysis, rs.thresholds),
		SuggestionsGenerated: len(suggestions),
		GeneratedAt:          time.Now().UTC(),
	}
	if analysis.TotalCount > 0 {
		reflection.DominantEmotion = engine.DominantEmotion(observations)
	}
	return reflection, nil
}

// participantInsights summarizes each tracked user without identifying
// them. Ordering follows first appearance in the batch.
func participantInsights(analysis engine.AggregateAnalysis) []string {
	insights := make([]string, 0, len(analysis.UserOrder))
	for i, userID := range analysis.UserOrder {
		metrics := analysis.Users[userID]
		label := fmt.Sprintf("Participant %d", i+1)
		switch {
		case metrics.StressLevel > 0 && metrics.NeedsAttention:
			insights = append(insights, fmt.Sprintf("%s showed elevated stress during the session and may benefit from a follow-up conversation.", label))
		case metrics.NeedsAttention:
			insights = append(insights, fmt.Sprintf("%s showed emotional patterns that may warrant attention (dominant emotion: %s).", label, metrics.DominantEmotion))
		case metrics.DominantEmotion.IsPositive():
			insights = append(insights, fmt.Sprintf("%s maintained a positive emotional state throughout the session.", label))
		default:
			insights = append(insights, fmt.Sprintf("%s remained emotionally steady during the session.", label))
		}
	}
	return insights
}

func teamInsights(analysis engine.AggregateAnalysis, th engine.Thresholds) []string {
	var insights []string
	if analysis.TotalCount == 0 {
		return []string{"No emotion data was collected during this session."}
	}

	stressFraction := float64(analysis.StressCount) / float64(analysis.TotalCount)
	if stressFraction > th.StressTeamCritical {
		insights = append(insights, "Stress levels were critically high across the team. Consider reviewing workload and deadlines before the next session.")
	} else if stressFraction > th.StressTeamPercentage {
		insights = append(insights, "A notable portion of the team experienced stress during this session.")
	}

	if analysis.NegativePercentage > th.NegativeEmotionsPercentage {
		insights = append(insights, "Negative emotions dominated parts of this session. A follow-up discussion about team concerns may help.")
	}
	if analysis.LowEnergyPercentage > th.LowEnergyPercentage {
		insights = append(insights, "Engagement appeared low for much of the session. Consider shorter or more interactive formats.")
	}
	if analysis.EmotionalVolatility > th.EmotionalVolatility {
		insights = append(insights, "Emotional responses varied widely, which may indicate divisive topics on the agenda.")
	}
	if len(insights) == 0 {
		insights = append(insights, "The team maintained a healthy emotional balance throughout the session.")
	}
	return insights
}

func (rs *reflectionService) SaveJournal(ctx context.Context, req SaveJournalRequest) (*types.Journal, error) {
	if req.Content == "" {
		return nil, fmt.Errorf("journal content is required")
	}

	user, err := rs.userRepo.GetByID(ctx, nil, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	sid := req.SessionID
	journal, err := rs.journalRepo.GetByUserSession(ctx, nil, req.UserID, req.SessionID)
	isNew := false
	if errors.Is(err, gorm.ErrRecordNotFound) {
		isNew = true
		journal = &types.Journal{
			ID:        uuid.New(),
			UserID:    req.UserID,
			SessionID: &sid,
			IsPrivate: true,
		}
	} else if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}

	journal.Title = req.Title
	journal.Content = req.Content
	journal.UpdatedAt = time.Now().UTC()
	if req.IsPrivate != nil {
		journal.IsPrivate = *req.IsPrivate
	}
	if req.AllowAIAnalysis != nil {
		journal.AllowAIAnalysis = *req.AllowAIAnalysis
	}
	if req.ShareInsights != nil {
		journal.ShareInsights = *req.ShareInsights
	}

	if journal.AllowAIAnalysis && user.JournalAnalysisEnabled {
		estimate, cerr := rs.classifier.Classify(ctx, types.SourceText, engine.Input{Text: req.Content})
		if cerr == nil {
			score := estimate.SentimentScore
			journal.SentimentScore = &score
			journal.EmotionAnalysis = marshalJSON(analysisMetadata(estimate))
			journal.AnalysisCompleted = true
		}
	}

	if isNew {
		if err := rs.journalRepo.Create(ctx, nil, journal); err != nil {
			return nil, fmt.Errorf("create journal: %w", err)
		}
	} else {
		if err := rs.journalRepo.Update(ctx, nil, journal); err != nil {
			return nil, fmt.Errorf("update journal: %w", err)
		}
	}
	return journal, nil
}

func (rs *reflectionService) GetJournal(ctx context.Context, userID, sessionID uuid.UUID) (*types.Journal, error) {
	return rs.journalRepo.GetByUserSession(ctx, nil, userID, sessionID)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/engine"
	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/repos"
	"github.com/scrummood/scrummood-backend/internal/sse"
	"github.com/scrummood/scrummood-backend/internal/types"
)

// generationWindow is how far back a generation run looks for
// observations.
const generationWindow = 5 * time.Minute

// GenerationResult is the output of one suggestion generation run.
type GenerationResult struct {
	SessionID           uuid.UUID                `json:"session_id"`
	Analysis            engine.AggregateAnalysis `json:"analysis"`
	TeamSuggestions     []*types.Suggestion      `json:"team_suggestions"`
	PersonalSuggestions []*types.Suggestion      `json:"personal_suggestions"`
	GeneratedAt         time.Time                `json:"generated_at"`
}

// RespondRequest carries a facilitator's response to a suggestion.
type RespondRequest struct {
	Action              string `json:"action"`
	EffectivenessRating *int   `json:"effectiveness_rating,omitempty"`
	FeedbackNotes       string `json:"feedback_notes,omitempty"`
}

// SuggestionAnalytics summarizes responses over a date range.
type SuggestionAnalytics struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	TotalCount    int `json:"total_count"`
	TeamCount     int `json:"team_count"`
	PersonalCount int `json:"personal_count"`

	CountsByType     map[types.SuggestionType]int   `json:"counts_by_type"`
	CountsByStatus   map[types.SuggestionStatus]int `json:"counts_by_status"`
	CountsByPriority map[int]int                    `json:"counts_by_priority"`

	ResponseRate       float64     `json:"response_rate"`
	ImplementationRate float64     `json:"implementation_rate"`
	AverageRating      float64     `json:"average_rating"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

type SuggestionService interface {
	Generate(ctx context.Context, sessionID uuid.UUID) (*GenerationResult, error)
	ListSession(ctx context.Context, sessionID uuid.UUID, filter repos.SuggestionFilter) ([]types.Suggestion, error)
	ListPersonal(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, limit int) ([]types.Suggestion, error)
	Respond(ctx context.Context, suggestionID, responderID uuid.UUID, req RespondRequest) (*types.Suggestion, error)
	Analytics(ctx context.Context, start, end time.Time, teamID *uuid.UUID) (*SuggestionAnalytics, error)
}

type suggestionService struct {
	log            *logger.Logger
	thresholds     engine.Thresholds
	suggestionRepo repos.SuggestionRepo
	emotionRepo    repos.EmotionRepo
	sessionRepo    repos.SessionRepo
	notifier       Notifier
}

func NewSuggestionService(
	thresholds engine.Thresholds,
	suggestionRepo repos.SuggestionRepo,
	emotionRepo repos.EmotionRepo,
	sessionRepo repos.SessionRepo,
	notifier Notifier,
	baseLog *logger.Logger,
) SuggestionService {
	return &suggestionService{
		log:            baseLog.With("service", "SuggestionService"),
		thresholds:     thresholds,
		suggestionRepo: suggestionRepo,
		emotionRepo:    emotionRepo,
		sessionRepo:    sessionRepo,
		notifier:       notifier,
	}
}

// Generate runs the rule engine over the session's recent observation
// window, persists the selected suggestions and broadcasts them: team
// suggestions to the session channel, personal ones to each target
// user's own channel.
func (ss *suggestionService) Generate(ctx context.Context, sessionID uuid.UUID) (*GenerationResult, error) {
	session, err := ss.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !session.AutoSuggestionsEnabled {
		return nil, fmt.Errorf("suggestions are disabled for this session")
	}

	since := time.Now().UTC().Add(-generationWindow)
	observations, err := ss.emotionRepo.ListRecentBySession(ctx, nil, sessionID, since)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}

	analysis := engine.Aggregate(observations, ss.thresholds)
	ruleEngine := engine.NewRuleEngine(ss.thresholds)
	teamCandidates, personalCandidates := ruleEngine.Evaluate(analysis)
	team, personal := engine.Finalize(teamCandidates, personalCandidates)

	result := &GenerationResult{
		SessionID:           sessionID,
		Analysis:            analysis,
		TeamSuggestions:     candidatesToSuggestions(sessionID, team),
		PersonalSuggestions: candidatesToSuggestions(sessionID, personal),
		GeneratedAt:         time.Now().UTC(),
	}

	all := make([]*types.Suggestion, 0, len(result.TeamSuggestions)+len(result.PersonalSuggestions))
	all = append(all, result.TeamSuggestions...)
	all = append(all, result.PersonalSuggestions...)
	if len(all) > 0 {
		if _, err := ss.suggestionRepo.Create(ctx, nil, all); err != nil {
			return nil, fmt.Errorf("persist suggestions: %w", err)
		}
	}

	if len(result.TeamSuggestions) > 0 {
		ss.notifier.Notify(ctx, sse.SSEMessage{
			Channel: sse.SessionChannel(sessionID),
			Event:   sse.SSEEventNewSuggestions,
			Data:    result.TeamSuggestions,
		})
	}
	for _, suggestion := range result.PersonalSuggestions {
		if suggestion.TargetUserID == nil {
			continue
		}
		ss.notifier.Notify(ctx, sse.SSEMessage{
			Channel: sse.UserChannel(*suggestion.TargetUserID),
			Event:   sse.SSEEventNewPersonalSuggestions,
			Data:    []*types.Suggestion{suggestion},
		})
	}

	ss.log.Info("Suggestion generation run completed",
		"sessionID", sessionID,
		"observations", analysis.TotalCount,
		"team", len(result.TeamSuggestions),
		"personal", len(result.PersonalSuggestions))
	return result, nil
}

func (ss *suggestionService) ListSession(ctx context.Context, sessionID uuid.UUID, filter repos.SuggestionFilter) ([]types.Suggestion, error) {
	return ss.suggestionRepo.ListBySession(ctx, nil, sessionID, filter)
}

func (ss *suggestionService) ListPersonal(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, limit int) ([]types.Suggestion, error) {
	return ss.suggestionRepo.ListPersonal(ctx, nil, userID, sessionID, limit)
}

func (ss *suggestionService) Respond(ctx context.Context, suggestionID, responderID uuid.UUID, req RespondRequest) (*types.Suggestion, error) {
	var status types.SuggestionStatus
	switch req.Action {
	case "accept":
		status = types.SuggestionAccepted
	case "dismiss":
		status = types.SuggestionDismissed
	case "implement":
		status = types.SuggestionImplemented
	default:
		return nil, fmt.Errorf("invalid action %q, expected accept, dismiss or implement", req.Action)
	}

	if req.EffectivenessRating != nil {
		if r := *req.EffectivenessRating; r < 1 || r > 5 {
			return nil, fmt.Errorf("effectiveness rating must be between 1 and 5")
		}
	}

	suggestion, err := ss.suggestionRepo.GetByID(ctx, nil, suggestionID)
	if err != nil {
		return nil, fmt.Errorf("load suggestion: %w", err)
	}

	now := time.Now().UTC()
	suggestion.Status = status
	suggestion.RespondedAt = &now
	suggestion.RespondedBy = &responderID
	if req.EffectivenessRating != nil {
		suggestion.EffectivenessRating = req.EffectivenessRating
	}
	if req.FeedbackNotes != "" {
		suggestion.FeedbackNotes = req.FeedbackNotes
	}

	if err := ss.suggestionRepo.Update(ctx, nil, suggestion); err != nil {
		return nil, fmt.Errorf("update suggestion: %w", err)
	}

	ss.notifier.Notify(ctx, sse.SSEMessage{
		Channel: sse.SessionChannel(suggestion.SessionID),
		Event:   sse.SSEEventSuggestionUpdated,
		Data:    suggestion,
	})
	return suggestion, nil
}

func (ss *suggestionService) Analytics(ctx context.Context, start, end time.Time, teamID *uuid.UUID) (*SuggestionAnalytics, error) {
	suggestions, err := ss.suggestionRepo.ListCreatedBetween(ctx, nil, start, end, teamID)
	if err != nil {
		return nil, err
	}

	analytics := &SuggestionAnalytics{
		Start:              start,
		End:                end,
		TotalCount:         len(suggestions),
		CountsByType:       make(map[types.SuggestionType]int),
		CountsByStatus:     make(map[types.SuggestionStatus]int),
		CountsByPriority:   make(map[int]int),
		RatingDistribution: make(map[int]int),
	}

	var responded, implemented, ratingSum, ratingCount int
	for _, s := range suggestions {
		analytics.CountsByType[s.SuggestionType]++
		analytics.CountsByStatus[s.Status]++
		analytics.CountsByPriority[s.Priority]++
		if s.IsPersonal {
			analytics.PersonalCount++
		} else {
			analytics.TeamCount++
		}
		if s.Status != types.SuggestionPending {
			responded++
		}
		if s.Status == types.SuggestionImplemented {
			implemented++
		}
		if s.EffectivenessRating != nil {
			ratingSum += *s.EffectivenessRating
			ratingCount++
			analytics.RatingDistribution[*s.EffectivenessRating]++
		}
	}

	if analytics.TotalCount > 0 {
		analytics.ResponseRate = float64(responded) / float64(analytics.TotalCount)
		analytics.ImplementationRate = float64(implemented) / float64(analytics.TotalCount)
	}
	if ratingCount > 0 {
		analytics.AverageRating = float64(ratingSum) / float64(ratingCount)
	}
	return analytics, nil
}

func candidatesToSuggestions(sessionID uuid.UUID, candidates []engine.SuggestionCandidate) []*types.Suggestion {
	out := make([]*types.Suggestion, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, &types.Suggestion{
			ID:                  uuid.New(),
			SessionID:           sessionID,
			SuggestionType:      c.Type,
			Title:               c.Title,
			Description:         c.Description,
			Priority:            c.Priority,
			TriggerContext:      marshalJSON(c.TriggerContext),
			AffectedUsers:       marshalJSON(c.AffectedUsers),
			IsPersonal:          c.IsPersonal,
			TargetUserID:        c.UserID,
			SuggestedDuration:   c.DurationMinutes,
			ImplementationSteps: marshalJSON(c.Steps),
			Status:              types.SuggestionPending,
			CreatedAt:           time.Now().UTC(),
		})
	}
	return out
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/scrummood/scrummood-backend/internal/engine"
	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/repos"
	"github.com/scrummood/scrummood-backend/internal/sse"
	"github.com/scrummood/scrummood-backend/internal/types"
)

// SubmitEmotionRequest is one classification submission. Which payload
// fields are consulted depends on Source.
type SubmitEmotionRequest struct {
	UserID    uuid.UUID  `json:"-"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	Source    string     `json:"source"`

	Text           string             `json:"text,omitempty"`
	AudioFeatures  map[string]float64 `json:"audio_features,omitempty"`
	FacialFeatures map[string]float64 `json:"facial_features,omitempty"`
	EmotionType    string             `json:"emotion_type,omitempty"`
	Intensity      *float64           `json:"intensity,omitempty"`

	Context   string     `json:"context,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// SessionEmotionSummary is the aggregate view of a session's
// observations returned by the summary endpoint.
type SessionEmotionSummary struct {
	SessionID        uuid.UUID                                    `json:"session_id"`
	TotalCount       int                                          `json:"total_count"`
	UniqueUsers      int                                          `json:"unique_users"`
	DominantEmotion  types.EmotionType                            `json:"dominant_emotion"`
	AverageIntensity float64                                      `json:"average_intensity"`
	Distribution     map[types.EmotionType]engine.EmotionBreakdown `json:"distribution"`
}

// BatchTextItem is one entry of a batch text analysis request.
type BatchTextItem struct {
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}

type EmotionService interface {
	Submit(ctx context.Context, req SubmitEmotionRequest) (*types.EmotionObservation, error)
	ListSessionEmotions(ctx context.Context, sessionID uuid.UUID, filter repos.EmotionFilter) ([]types.EmotionObservation, error)
	SessionSummary(ctx context.Context, sessionID uuid.UUID) (*SessionEmotionSummary, error)
	UserHistory(ctx context.Context, userID uuid.UUID, days int, emotionType *types.EmotionType) ([]types.EmotionObservation, error)
	BatchAnalyzeText(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, items []BatchTextItem) ([]*types.EmotionObservation, error)
}

type emotionService struct {
	log         *logger.Logger
	classifier  engine.Classifier
	emotionRepo repos.EmotionRepo
	sessionRepo repos.SessionRepo
	userRepo    repos.UserRepo
	notifier    Notifier
}

func NewEmotionService(
	classifier engine.Classifier,
	emotionRepo repos.EmotionRepo,
	sessionRepo repos.SessionRepo,
	userRepo repos.UserRepo,
	notifier Notifier,
	baseLog *logger.Logger,
) EmotionService {
	return &emotionService{
		log:         baseLog.With("service", "EmotionService"),
		classifier:  classifier,
		emotionRepo: emotionRepo,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

func (es *emotionService) Submit(ctx context.Context, req SubmitEmotionRequest) (*types.EmotionObservation, error) {
	source, err := types.ParseAnalysisSource(req.Source)
	if err != nil {
		return nil, err
	}

	user, err := es.userRepo.GetByID(ctx, nil, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := checkSourceAllowed(user, source); err != nil {
		return nil, err
	}

	estimate, err := es.classifier.Classify(ctx, source, engine.Input{
		Text:           req.Text,
		AudioFeatures:  req.AudioFeatures,
		FacialFeatures: req.FacialFeatures,
		EmotionType:    req.EmotionType,
		Intensity:      req.Intensity,
	})
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC()
	if req.Timestamp != nil {
		timestamp = req.Timestamp.UTC()
	}

	obs := &types.EmotionObservation{
		ID:          uuid.New(),
		UserID:      req.UserID,
		SessionID:   req.SessionID,
		EmotionType: estimate.Emotion,
		Intensity:   types.Clamp01(estimate.Intensity),
		Confidence:  types.Clamp01(estimate.Confidence),
		Source:      source,
		Timestamp:   timestamp,
		Context:     req.Context,
	}

	if req.SessionID != nil {
		session, err := es.sessionRepo.GetByID(ctx, nil, *req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if !session.EmotionTrackingEnabled {
			return nil, fmt.Errorf("emotion tracking is disabled for this session")
		}
		if session.ActualStart != nil {
			offset := int(timestamp.Sub(*session.ActualStart).Seconds())
			obs.SessionTimestamp = &offset
		}
	}

	obs.RawData = marshalJSON(rawInputFor(source, req))
	obs.AnalysisMetadata = marshalJSON(analysisMetadata(estimate))

	if _, err := es.emotionRepo.Create(ctx, nil, []*types.EmotionObservation{obs}); err != nil {
		return nil, fmt.Errorf("persist observation: %w", err)
	}

	if req.SessionID != nil {
		es.notifier.Notify(ctx, sse.SSEMessage{
			Channel: sse.SessionChannel(*req.SessionID),
			Event:   sse.SSEEventEmotionRecorded,
			Data:    obs,
		})
	}

	es.log.Debug("Emotion observation recorded",
		"userID", req.UserID, "source", source, "emotion", obs.EmotionType, "intensity", obs.Intensity)
	return obs, nil
}

func (es *emotionService) ListSessionEmotions(ctx context.Context, sessionID uuid.UUID, filter repos.EmotionFilter) ([]types.EmotionObservation, error) {
	return es.emotionRepo.ListBySession(ctx, nil, sessionID, filter)
}

func (es *emotionService) SessionSummary(ctx context.Context, sessionID uuid.UUID) (*SessionEmotionSummary, error) {
	observations, err := es.emotionRepo.ListBySession(ctx, nil, sessionID, repos.EmotionFilter{})
	if err != nil {
		return nil, err
	}

	summary := &SessionEmotionSummary{
		SessionID:    sessionID,
		TotalCount:   len(observations),
		Distribution: engine.Distribution(observations),
	}
	if len(observations) == 0 {
		summary.DominantEmotion = types.EmotionNeutral
		return summary, nil
	}

	users := make(map[uuid.UUID]bool)
	var totalIntensity float64
	for _, obs := range observations {
		users[obs.UserID] = true
		totalIntensity += obs.Intensity
	}
	summary.UniqueUsers = len(users)
	summary.DominantEmotion = engine.DominantEmotion(observations)
	summary.AverageIntensity = totalIntensity / float64(len(observations))
	return summary, nil
}

func (es *emotionService) UserHistory(ctx context.Context, userID uuid.UUID, days int, emotionType *types.EmotionType) ([]types.EmotionObservation, error) {
	if days <= 0 {
		days = 7
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	return es.emotionRepo.ListByUserRange(ctx, nil, userID, start, end, emotionType)
}

// batchConcurrency bounds the number of in-flight classifier calls.
const batchConcurrency = 4

// BatchAnalyzeText classifies multiple text entries concurrently and
// persists the results as a single batch. Individual classification
// failures fall back softly inside the classifier; only persistence
// errors surface.
func (es *emotionService) BatchAnalyzeText(ctx context.Context, userID uuid.UUID, sessionID *uuid.UUID, items []BatchTextItem) ([]*types.EmotionObservation, error) {
	if len(items) == 0 {
		return []*types.EmotionObservation{}, nil
	}

	user, err := es.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := checkSourceAllowed(user, types.SourceText); err != nil {
		return nil, err
	}

	var sessionStart *time.Time
	if sessionID != nil {
		session, err := es.sessionRepo.GetByID(ctx, nil, *sessionID)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		sessionStart = session.ActualStart
	}

	// Each goroutine writes its own index, so no lock is needed.
	observations := make([]*types.EmotionObservation, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, item := range items {
		g.Go(func() error {
			estimate, err := es.classifier.Classify(gctx, types.SourceText, engine.Input{Text: item.Text})
			if err != nil {
				return err
			}

			timestamp := time.Now().UTC()
			obs := &types.EmotionObservation{
				ID:               uuid.New(),
				UserID:           userID,
				SessionID:        sessionID,
				EmotionType:      estimate.Emotion,
				Intensity:        types.Clamp01(estimate.Intensity),
				Confidence:       types.Clamp01(estimate.Confidence),
				Source:           types.SourceText,
				RawData:          marshalJSON(map[string]any{"text": item.Text}),
				AnalysisMetadata: marshalJSON(analysisMetadata(estimate)),
				Timestamp:        timestamp,
				Context:          item.Context,
			}
			if sessionStart != nil {
				offset := int(timestamp.Sub(*sessionStart).Seconds())
				obs.SessionTimestamp = &offset
			}

			observations[i] = obs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if _, err := es.emotionRepo.Create(ctx, nil, observations); err != nil {
		return nil, fmt.Errorf("persist batch: %w", err)
	}

	if sessionID != nil {
		es.notifier.Notify(ctx, sse.SSEMessage{
			Channel: sse.SessionChannel(*sessionID),
			Event:   sse.SSEEventEmotionRecorded,
			Data:    map[string]any{"count": len(observations)},
		})
	}
	return observations, nil
}

func checkSourceAllowed(user *types.User, source types.AnalysisSource) error {
	if !user.EmotionTrackingEnabled {
		return fmt.Errorf("emotion tracking is disabled for this user")
	}
	switch source {
	case types.SourceVoice:
		if !user.VoiceAnalysisEnabled {
			return fmt.Errorf("voice analysis is disabled for this user")
		}
	case types.SourceFacial:
		if !user.FacialAnalysisEnabled {
			return fmt.Errorf("facial analysis is disabled for this user")
		}
	}
	return nil
}

func rawInputFor(source types.AnalysisSource, req SubmitEmotionRequest) map[string]any {
	switch source {
	case types.SourceText:
		return map[string]any{"text": req.Text}
	case types.SourceVoice:
		return map[string]any{"audio_features": req.AudioFeatures}
	case types.SourceFacial:
		return map[string]any{"facial_features": req.FacialFeatures}
	default:
		return map[string]any{"emotion_type": req.EmotionType, "intensity": req.Intensity}
	}
}

func analysisMetadata(estimate engine.Estimate) map[string]any {
	meta := make(map[string]any, len(estimate.Metadata)+2)
	for k, v := range estimate.Metadata {
		meta[k] = v
	}
	meta["sentiment_score"] = estimate.SentimentScore
	if len(estimate.AllEmotions) > 0 {
		meta["all_emotions_breakdown"] = estimate.AllEmotions
	}
	return meta
}

func marshalJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}

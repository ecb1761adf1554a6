package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/types"
)

// EmotionFilter narrows an observation listing. Nil fields are
// ignored.
type EmotionFilter struct {
	UserID      *uuid.UUID
	EmotionType *types.EmotionType
	StartTime   *time.Time
	EndTime     *time.Time
}

type EmotionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, observations []*types.EmotionObservation) ([]*types.EmotionObservation, error)
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, filter EmotionFilter) ([]types.EmotionObservation, error)
	ListRecentBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, since time.Time) ([]types.EmotionObservation, error)
	ListByUserSession(ctx context.Context, tx *gorm.DB, userID, sessionID uuid.UUID) ([]types.EmotionObservation, error)
	ListByUserRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time, emotionType *types.EmotionType) ([]types.EmotionObservation, error)
}

type emotionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmotionRepo(db *gorm.DB, baseLog *logger.Logger) EmotionRepo {
	return &emotionRepo{db: db, log: baseLog.With("repo", "EmotionRepo")}
}

func (er *emotionRepo) Create(ctx context.Context, tx *gorm.DB, observations []*types.EmotionObservation) ([]*types.EmotionObservation, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	if len(observations) == 0 {
		return []*types.EmotionObservation{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&observations).Error; err != nil {
		return nil, err
	}
	return observations, nil
}

func (er *emotionRepo) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, filter EmotionFilter) ([]types.EmotionObservation, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	query := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID)
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.EmotionType != nil {
		query = query.Where("emotion_type = ?", *filter.EmotionType)
	}
	if filter.StartTime != nil {
		query = query.Where("timestamp >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("timestamp <= ?", *filter.EndTime)
	}

	var results []types.EmotionObservation
	if err := query.Order("timestamp asc").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *emotionRepo) ListRecentBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, since time.Time) ([]types.EmotionObservation, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []types.EmotionObservation
	if err := transaction.WithContext(ctx).
		Where("session_id = ? AND timestamp >= ?", sessionID, since).
		Order("timestamp asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *emotionRepo) ListByUserSession(ctx context.Context, tx *gorm.DB, userID, sessionID uuid.UUID) ([]types.EmotionObservation, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var results []types.EmotionObservation
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("timestamp asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *emotionRepo) ListByUserRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, start, end time.Time, emotionType *types.EmotionType) ([]types.EmotionObservation, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	query := transaction.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ? AND timestamp <= ?", userID, start, end)
	if emotionType != nil {
		query = query.Where("emotion_type = ?", *emotionType)
	}
	var results []types.EmotionObservation
	if err := query.Order("timestamp asc").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

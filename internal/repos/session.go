package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/types"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.Session) error
	GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.Session, error)
	ListScheduledBetween(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]types.Session, error)
	Update(ctx context.Context, tx *gorm.DB, session *types.Session) error

	AddParticipant(ctx context.Context, tx *gorm.DB, participant *types.SessionParticipant) error
	GetParticipant(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID) (*types.SessionParticipant, error)
	ListParticipants(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]types.SessionParticipant, error)
	UpdateParticipant(ctx context.Context, tx *gorm.DB, participant *types.SessionParticipant) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (sr *sessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.Session) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Create(session).Error
}

func (sr *sessionRepo) GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var session types.Session
	if err := transaction.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (sr *sessionRepo) ListScheduledBetween(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []types.Session
	if err := transaction.WithContext(ctx).
		Where("scheduled_start >= ? AND scheduled_start < ?", start, end).
		Order("scheduled_start asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *sessionRepo) Update(ctx context.Context, tx *gorm.DB, session *types.Session) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Save(session).Error
}

func (sr *sessionRepo) AddParticipant(ctx context.Context, tx *gorm.DB, participant *types.SessionParticipant) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Create(participant).Error
}

func (sr *sessionRepo) GetParticipant(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID) (*types.SessionParticipant, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var participant types.SessionParticipant
	if err := transaction.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func (sr *sessionRepo) ListParticipants(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]types.SessionParticipant, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []types.SessionParticipant
	if err := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *sessionRepo) UpdateParticipant(ctx context.Context, tx *gorm.DB, participant *types.SessionParticipant) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Save(participant).Error
}

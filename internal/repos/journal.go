package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/types"
)

type JournalRepo interface {
	Create(ctx context.Context, tx *gorm.DB, journal *types.Journal) error
	GetByUserSession(ctx context.Context, tx *gorm.DB, userID, sessionID uuid.UUID) (*types.Journal, error)
	Update(ctx context.Context, tx *gorm.DB, journal *types.Journal) error
}

type journalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJournalRepo(db *gorm.DB, baseLog *logger.Logger) JournalRepo {
	return &journalRepo{db: db, log: baseLog.With("repo", "JournalRepo")}
}

func (jr *journalRepo) Create(ctx context.Context, tx *gorm.DB, journal *types.Journal) error {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}
	return transaction.WithContext(ctx).Create(journal).Error
}

func (jr *journalRepo) GetByUserSession(ctx context.Context, tx *gorm.DB, userID, sessionID uuid.UUID) (*types.Journal, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}
	var journal types.Journal
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		First(&journal).Error; err != nil {
		return nil, err
	}
	return &journal, nil
}

func (jr *journalRepo) Update(ctx context.Context, tx *gorm.DB, journal *types.Journal) error {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}
	return transaction.WithContext(ctx).Save(journal).Error
}

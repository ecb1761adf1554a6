package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/types"
)

type UserTokenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, token *types.UserToken) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserToken, error)
	Update(ctx context.Context, tx *gorm.DB, token *types.UserToken) error
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (ur *userTokenRepo) Create(ctx context.Context, tx *gorm.DB, token *types.UserToken) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(ctx).Create(token).Error
}

func (ur *userTokenRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var token types.UserToken
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (ur *userTokenRepo) Update(ctx context.Context, tx *gorm.DB, token *types.UserToken) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(ctx).Save(token).Error
}

func (ur *userTokenRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.UserToken{}).Error
}

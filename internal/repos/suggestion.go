package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/types"
)

// SuggestionFilter narrows a session suggestion listing. The
// personal/team split filters on the persisted is_personal flag.
type SuggestionFilter struct {
	Status      *types.SuggestionStatus
	Type        *types.SuggestionType
	PersonalFor *uuid.UUID
	TeamOnly    bool
	Limit       int
}

type SuggestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, suggestions []*types.Suggestion) ([]*types.Suggestion, error)
	GetByID(ctx context.Context, tx *gorm.DB, suggestionID uuid.UUID) (*types.Suggestion, error)
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, filter SuggestionFilter) ([]types.Suggestion, error)
	ListPersonal(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID *uuid.UUID, limit int) ([]types.Suggestion, error)
	ListCreatedBetween(ctx context.Context, tx *gorm.DB, start, end time.Time, teamID *uuid.UUID) ([]types.Suggestion, error)
	Update(ctx context.Context, tx *gorm.DB, suggestion *types.Suggestion) error
}

type suggestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSuggestionRepo(db *gorm.DB, baseLog *logger.Logger) SuggestionRepo {
	return &suggestionRepo{db: db, log: baseLog.With("repo", "SuggestionRepo")}
}

func (sr *suggestionRepo) Create(ctx context.Context, tx *gorm.DB, suggestions []*types.Suggestion) ([]*types.Suggestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(suggestions) == 0 {
		return []*types.Suggestion{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (sr *suggestionRepo) GetByID(ctx context.Context, tx *gorm.DB, suggestionID uuid.UUID) (*types.Suggestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var suggestion types.Suggestion
	if err := transaction.WithContext(ctx).
		Where("id = ?", suggestionID).
		First(&suggestion).Error; err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (sr *suggestionRepo) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, filter SuggestionFilter) ([]types.Suggestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	query := transaction.WithContext(ctx).
		Where("session_id = ?", sessionID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("suggestion_type = ?", *filter.Type)
	}
	if filter.PersonalFor != nil {
		query = query.Where("is_personal = ? AND target_user_id = ?", true, *filter.PersonalFor)
	} else if filter.TeamOnly {
		query = query.Where("is_personal = ?", false)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var results []types.Suggestion
	if err := query.
		Order("priority desc").
		Order("created_at desc").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *suggestionRepo) ListPersonal(ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID *uuid.UUID, limit int) ([]types.Suggestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	query := transaction.WithContext(ctx).
		Where("is_personal = ? AND target_user_id = ?", true, userID)
	if sessionID != nil {
		query = query.Where("session_id = ?", *sessionID)
	}
	if limit <= 0 {
		limit = 10
	}

	var results []types.Suggestion
	if err := query.
		Order("created_at desc").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *suggestionRepo) ListCreatedBetween(ctx context.Context, tx *gorm.DB, start, end time.Time, teamID *uuid.UUID) ([]types.Suggestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	query := transaction.WithContext(ctx).
		Model(&types.Suggestion{}).
		Where("suggestion.created_at >= ? AND suggestion.created_at <= ?", start, end)
	if teamID != nil {
		query = query.
			Joins("JOIN session ON session.id = suggestion.session_id").
			Where("session.team_id = ?", *teamID)
	}

	var results []types.Suggestion
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *suggestionRepo) Update(ctx context.Context, tx *gorm.DB, suggestion *types.Suggestion) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Save(suggestion).Error
}

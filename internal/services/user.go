package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/repos"
	"github.com/scrummood/scrummood-backend/internal/types"
)

// UpdatePrivacyRequest toggles which observation sources a user
// allows. Nil fields are left unchanged.
type UpdatePrivacyRequest struct {
	EmotionTrackingEnabled *bool `json:"emotion_tracking_enabled,omitempty"`
	VoiceAnalysisEnabled   *bool `json:"voice_analysis_enabled,omitempty"`
	FacialAnalysisEnabled  *bool `json:"facial_analysis_enabled,omitempty"`
	JournalAnalysisEnabled *bool `json:"journal_analysis_enabled,omitempty"`
}

type UserService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdatePrivacy(ctx context.Context, userID uuid.UUID, req UpdatePrivacyRequest) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(userRepo repos.UserRepo, baseLog *logger.Logger) UserService {
	return &userService{
		log:      baseLog.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) Get(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return us.userRepo.GetByID(ctx, nil, userID)
}

func (us *userService) UpdatePrivacy(ctx context.Context, userID uuid.UUID, req UpdatePrivacyRequest) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if req.EmotionTrackingEnabled != nil {
		user.EmotionTrackingEnabled = *req.EmotionTrackingEnabled
	}
	if req.VoiceAnalysisEnabled != nil {
		user.VoiceAnalysisEnabled = *req.VoiceAnalysisEnabled
	}
	if req.FacialAnalysisEnabled != nil {
		user.FacialAnalysisEnabled = *req.FacialAnalysisEnabled
	}
	if req.JournalAnalysisEnabled != nil {
		user.JournalAnalysisEnabled = *req.JournalAnalysisEnabled
	}
	user.UpdatedAt = time.Now().UTC()

	if err := us.userRepo.Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	us.log.Debug("User privacy settings updated", "userID", userID)
	return user, nil
}

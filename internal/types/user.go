package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleMember      UserRole = "member"
	RoleFacilitator UserRole = "facilitator"
	RoleManager     UserRole = "manager"
)

func ParseUserRole(s string) (UserRole, error) {
	switch role := UserRole(s); role {
	case RoleMember, RoleFacilitator, RoleManager:
		return role, nil
	default:
		return "", fmt.Errorf("invalid user role %q", s)
	}
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Username     string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	PasswordHash string    `gorm:"not null;column:password_hash" json:"-"`
	FullName     string    `gorm:"not null;column:full_name" json:"full_name"`
	Role         UserRole  `gorm:"not null;default:'member';column:role" json:"role"`
	IsActive     bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`
	Timezone     string    `gorm:"size:50;default:'UTC';column:timezone" json:"timezone"`

	// Privacy settings controlling which observation sources a user
	// allows.
	EmotionTrackingEnabled bool `gorm:"default:true;column:emotion_tracking_enabled" json:"emotion_tracking_enabled"`
	VoiceAnalysisEnabled   bool `gorm:"default:true;column:voice_analysis_enabled" json:"voice_analysis_enabled"`
	FacialAnalysisEnabled  bool `gorm:"default:false;column:facial_analysis_enabled" json:"facial_analysis_enabled"`
	JournalAnalysisEnabled bool `gorm:"default:true;column:journal_analysis_enabled" json:"journal_analysis_enabled"`

	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
	LastLogin *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "user"
}

type Team struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	IsActive    bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Team) TableName() string {
	return "team"
}

type TeamMembership struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_member;column:user_id" json:"user_id"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_member;column:team_id" json:"team_id"`
	Role     UserRole  `gorm:"not null;default:'member';column:role" json:"role"`
	IsActive bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`
	JoinedAt time.Time `gorm:"not null;default:now();column:joined_at" json:"joined_at"`
}

func (TeamMembership) TableName() string {
	return "team_membership"
}

type UserToken struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	RefreshToken string    `gorm:"not null;column:refresh_token" json:"-"`
	ExpiresAt    time.Time `gorm:"not null;column:expires_at" json:"expires_at"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (UserToken) TableName() string {
	return "user_token"
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/repos"
	"github.com/scrummood/scrummood-backend/internal/requestdata"
	"github.com/scrummood/scrummood-backend/internal/types"
	"github.com/scrummood/scrummood-backend/internal/utils"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         *types.User `json:"user,omitempty"`
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*types.User, error)
	Login(ctx context.Context, req LoginRequest) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo

	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(userRepo repos.UserRepo, userTokenRepo repos.UserTokenRepo, baseLog *logger.Logger) AuthService {
	log := baseLog.With("service", "AuthService")
	secret := utils.GetEnv("JWT_SECRET", "", baseLog)
	if secret == "" {
		log.Warn("JWT_SECRET not set, using an insecure development secret")
		secret = "dev-secret-do-not-use-in-production"
	}
	accessMinutes := utils.GetEnvAsInt("JWT_ACCESS_TTL_MINUTES", 15, baseLog)
	refreshDays := utils.GetEnvAsInt("JWT_REFRESH_TTL_DAYS", 7, baseLog)

	return &authService{
		log:           log,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecret:     []byte(secret),
		accessTTL:     time.Duration(accessMinutes) * time.Minute,
		refreshTTL:    time.Duration(refreshDays) * 24 * time.Hour,
	}
}

func (as *authService) Register(ctx context.Context, req RegisterRequest) (*types.User, error) {
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("email, username and password are required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	role := types.RoleMember
	if req.Role != "" {
		parsed, err := types.ParseUserRole(req.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	emailTaken, err := as.userRepo.EmailExists(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if emailTaken {
		return nil, fmt.Errorf("email is already registered")
	}
	usernameTaken, err := as.userRepo.UsernameExists(ctx, nil, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if usernameTaken {
		return nil, fmt.Errorf("username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &types.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
		IsActive:     true,
		Timezone:     "UTC",

		EmotionTrackingEnabled: true,
		VoiceAnalysisEnabled:   true,
		FacialAnalysisEnabled:  false,
		JournalAnalysisEnabled: true,

		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := as.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	as.log.Info("User registered", "userID", user.ID, "role", user.Role)
	return user, nil
}

func (as *authService) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	user, err := as.userRepo.GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid email or password")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	pair, err := as.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	if err := as.userRepo.Update(ctx, nil, user); err != nil {
		as.log.Warn("Failed to record last login", "userID", user.ID, "error", err)
	}

	pair.User = user
	return pair, nil
}

// Refresh validates a refresh token against the stored copy and
// rotates both tokens.
func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token required")
	}

	claims, err := as.parseToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}
	userID, err := userIDFromClaims(claims)
	if err != nil {
		return nil, err
	}

	stored, err := as.userTokenRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("refresh token not recognized")
	}
	if stored.RefreshToken != refreshToken {
		return nil, fmt.Errorf("refresh token not recognized")
	}
	if time.Now().UTC().After(stored.ExpiresAt) {
		return nil, fmt.Errorf("refresh token expired")
	}

	user, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return as.issueTokens(ctx, user)
}

func (as *authService) Logout(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("not authenticated")
	}
	return as.userTokenRepo.DeleteByUserID(ctx, nil, rd.UserID)
}

// SetContextFromToken validates an access token and attaches the
// authenticated user id and role to the context as request data.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing access token")
	}

	claims, err := as.parseToken(tokenString)
	if err != nil {
		return ctx, fmt.Errorf("invalid access token: %w", err)
	}
	userID, err := userIDFromClaims(claims)
	if err != nil {
		return ctx, err
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	if role, ok := claims["role"].(string); ok {
		rd.Role = role
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) issueTokens(ctx context.Context, user *types.User) (*TokenPair, error) {
	now := time.Now().UTC()

	accessToken, err := as.signToken(user, now, now.Add(as.accessTTL))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := as.signToken(user, now, now.Add(as.refreshTTL))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	stored, err := as.userTokenRepo.GetByUserID(ctx, nil, user.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stored = &types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			RefreshToken: refreshToken,
			ExpiresAt:    now.Add(as.refreshTTL),
			CreatedAt:    now,
		}
		if err := as.userTokenRepo.Create(ctx, nil, stored); err != nil {
			return nil, fmt.Errorf("store refresh token: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	} else {
		stored.RefreshToken = refreshToken
		stored.ExpiresAt = now.Add(as.refreshTTL)
		if err := as.userTokenRepo.Update(ctx, nil, stored); err != nil {
			return nil, fmt.Errorf("rotate refresh token: %w", err)
		}
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(as.accessTTL.Seconds()),
	}, nil
}

func (as *authService) signToken(user *types.User, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"iat":  issuedAt.Unix(),
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(as.jwtSecret)
}

func (as *authService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func userIDFromClaims(claims jwt.MapClaims) (uuid.UUID, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("token missing subject")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not a valid id")
	}
	return userID, nil
}

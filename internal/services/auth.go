package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/outfitai/backend/internal/config"
	"github.com/outfitai/backend/pkg/models"
)

const tokenIssuer = "github.com/outfitai/backend"

// UserStore persists user accounts. CreateUser surfaces a duplicate
// email as ErrConflict; lookups surface missing rows as ErrNotFound.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.UserProfile, passwordHash string) error
	GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, string, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	UpdateUser(ctx context.Context, user *models.UserProfile) error
}

type AuthService struct {
	cfg         *config.AuthConfig
	users       UserStore
	redisClient *redis.Client
	jwtSecret   []byte
	logger      *logrus.Logger
}

func NewAuthService(cfg *config.AuthConfig, users UserStore, redisClient *redis.Client, logger *logrus.Logger) *AuthService {
	return &AuthService{
		cfg:         cfg,
		users:       users,
		redisClient: redisClient,
		jwtSecret:   []byte(cfg.JWTSecret),
		logger:      logger,
	}
}

// Register creates an account and issues its first token. A duplicate
// email returns ErrConflict.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserProfile, *models.TokenResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.UserProfile{
		ID:        uuid.New(),
		Email:     req.Email,
		FullName:  req.FullName,
		BodyType:  models.BodyTypeUnspecified,
		SkinTone:  models.SkinToneUnspecified,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateUser(ctx, user, string(hash)); err != nil {
		return nil, nil, err
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return user, token, nil
}

// Login verifies credentials and issues a token. Unknown email and
// wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.UserProfile, *models.TokenResponse, error) {
	user, hash, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

func (s *AuthService) issueToken(ctx context.Context, user *models.UserProfile) (*models.TokenResponse, error) {
	now := time.Now()
	claims := &models.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	// Session tracking is best-effort; token issuance survives a redis
	// outage.
	if s.redisClient != nil {
		sessionKey := fmt.Sprintf("session:%s", user.ID)
		if err := s.redisClient.Set(ctx, sessionKey, tokenString, s.cfg.TokenTTL).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to store session in Redis")
		}
	}

	return &models.TokenResponse{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.TokenTTL.Seconds()),
	}, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) RevokeToken(ctx context.Context, userID uuid.UUID) error {
	if s.redisClient == nil {
		return nil
	}
	sessionKey := fmt.Sprintf("session:%s", userID)
	if err := s.redisClient.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

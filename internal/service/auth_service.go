package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"examportal/internal/config"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoActiveSession    = errors.New("no active session")
	ErrSessionInvalidated = errors.New("session invalidated by a newer login")
)

// TokenType distinguishes user vs admin tokens.
type TokenType string

const (
	TokenTypeUser  TokenType = "user"
	TokenTypeAdmin TokenType = "admin"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	UserID    int       `json:"user_id"`
}

// AuthService handles password hashing, JWT issuance and session tracking.
type AuthService struct {
	cfg *config.Config
	rdb *redis.Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateUserToken creates a JWT for a user and registers it as the user's
// only active session. A later login overwrites the stored JTI, so earlier
// tokens stop validating.
func (s *AuthService) GenerateUserToken(ctx context.Context, userID int) (string, error) {
	jti := uuid.New().String()
	signed, err := s.signToken(TokenTypeUser, userID, jti)
	if err != nil {
		return "", err
	}

	sessionKey := config.CacheKey.UserSessionKey(userID)
	if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return signed, nil
}

// GenerateAdminToken creates a JWT for an admin and registers the session.
func (s *AuthService) GenerateAdminToken(ctx context.Context, adminID int) (string, error) {
	jti := uuid.New().String()
	signed, err := s.signToken(TokenTypeAdmin, adminID, jti)
	if err != nil {
		return "", err
	}

	sessionKey := config.CacheKey.AdminSessionKey(adminID)
	if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return signed, nil
}

func (s *AuthService) signToken(tokenType TokenType, id int, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(id),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: tokenType,
		UserID:    id,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ValidateSession checks that the token's JTI matches the active session in
// Redis for the token's type.
func (s *AuthService) ValidateSession(ctx context.Context, claims *Claims) error {
	var sessionKey string
	switch claims.TokenType {
	case TokenTypeAdmin:
		sessionKey = config.CacheKey.AdminSessionKey(claims.UserID)
	default:
		sessionKey = config.CacheKey.UserSessionKey(claims.UserID)
	}

	stored, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNoActiveSession
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != claims.ID {
		return ErrSessionInvalidated
	}
	return nil
}

// Logout removes the active session so the current token stops validating.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	switch claims.TokenType {
	case TokenTypeAdmin:
		return s.rdb.Del(ctx, config.CacheKey.AdminSessionKey(claims.UserID)).Err()
	default:
		return s.rdb.Del(ctx, config.CacheKey.UserSessionKey(claims.UserID)).Err()
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"examportal/internal/config"
)

func newTestAuth(t *testing.T) (*AuthService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	return NewAuthService(cfg, rdb), mr
}

func TestPasswordHashRoundtrip(t *testing.T) {
	svc, _ := newTestAuth(t)

	hash, err := svc.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := svc.CheckPassword(hash, "s3cret"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
}

func TestUserTokenRoundtrip(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	token, err := svc.GenerateUserToken(ctx, 42)
	if err != nil {
		t.Fatalf("GenerateUserToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != TokenTypeUser {
		t.Errorf("token type = %s, want %s", claims.TokenType, TokenTypeUser)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if err := svc.ValidateSession(ctx, claims); err != nil {
		t.Errorf("fresh session rejected: %v", err)
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _ := newTestAuth(t)

	token, err := svc.GenerateUserToken(context.Background(), 1)
	if err != nil {
		t.Fatalf("GenerateUserToken: %v", err)
	}
	if _, err := svc.ValidateToken(token + "x"); err == nil {
		t.Error("tampered token accepted")
	}
	if _, err := svc.ValidateToken("not-a-jwt"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestNewerLoginInvalidatesOlderSession(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	first, err := svc.GenerateUserToken(ctx, 7)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := svc.GenerateUserToken(ctx, 7); err != nil {
		t.Fatalf("second login: %v", err)
	}

	claims, err := svc.ValidateToken(first)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if err := svc.ValidateSession(ctx, claims); !errors.Is(err, ErrSessionInvalidated) {
		t.Errorf("err = %v, want ErrSessionInvalidated", err)
	}
}

func TestLogoutRemovesSession(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	token, err := svc.GenerateAdminToken(ctx, 3)
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.ValidateSession(ctx, claims); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestSessionExpiresWithTTL(t *testing.T) {
	svc, mr := newTestAuth(t)
	ctx := context.Background()

	token, err := svc.GenerateUserToken(ctx, 9)
	if err != nil {
		t.Fatalf("GenerateUserToken: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	mr.FastForward(2 * time.Hour)
	if err := svc.ValidateSession(ctx, claims); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("err = %v, want ErrNoActiveSession after TTL", err)
	}
}

package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "session:"

// AuthService owns password hashing and the opaque session tokens stored in
// redis. It is the sole writer of session state; everything else reads the
// resolved user off the request context.
type AuthService struct {
	redis      RedisClient
	sessionTTL time.Duration
}

func NewAuthService(redis RedisClient, sessionTTL time.Duration) *AuthService {
	return &AuthService{redis: redis, sessionTTL: sessionTTL}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) VerifyPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *AuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := generateSessionToken()
	if err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+token, userID.String(), s.sessionTTL); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

func (s *AuthService) GetSession(ctx context.Context, token string) (uuid.UUID, error) {
	value, err := s.redis.Get(ctx, sessionKeyPrefix+token)
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("loading session: %w", err)
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing session user id: %w", err)
	}

	// Sliding expiry: active sessions stay alive.
	_ = s.redis.Expire(ctx, sessionKeyPrefix+token, s.sessionTTL)

	return userID, nil
}

func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func generateSessionToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

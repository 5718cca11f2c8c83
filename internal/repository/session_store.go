package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quality-service/internal/models"
)

const sessionKeyPrefix = "quality:session:"

// SessionStore persists sessions in Redis so logout revokes them
// immediately regardless of JWT expiry.
type SessionStore interface {
	Save(ctx context.Context, auth *models.AuthContext, ttl time.Duration) error
	Get(ctx context.Context, sessionID uuid.UUID) (*models.AuthContext, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

type sessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a Redis-backed session store
func NewSessionStore(client *redis.Client) SessionStore {
	return &sessionStore{client: client}
}

func (s *sessionStore) Save(ctx context.Context, auth *models.AuthContext, ttl time.Duration) error {
	payload, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.client.Set(ctx, sessionKeyPrefix+auth.SessionID.String(), payload, ttl).Err()
}

func (s *sessionStore) Get(ctx context.Context, sessionID uuid.UUID) (*models.AuthContext, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+sessionID.String()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var auth models.AuthContext
	if err := json.Unmarshal(payload, &auth); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &auth, nil
}

func (s *sessionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID.String()).Err()
}

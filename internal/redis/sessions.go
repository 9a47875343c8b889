package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"carshare/internal/domain"
)

// SessionStore tracks issued session tokens in Redis so logout and
// revocation work across restarts of the auth layer.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

const sessionPrefix = "session:"

// cachedIdentity is the JSON shape stored per session.
type cachedIdentity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// sessionKey derives the Redis key for a token. Tokens are hashed so raw
// JWTs never land in Redis.
func sessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return sessionPrefix + hex.EncodeToString(sum[:])
}

// Save stores the identity for a session token with the given TTL.
func (s *SessionStore) Save(ctx context.Context, token string, identity domain.Identity, ttl time.Duration) error {
	data, err := json.Marshal(cachedIdentity{ID: identity.ID, Name: identity.Name})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(token), data, ttl).Err()
}

// Get retrieves the identity for a session token. Returns nil, nil when the
// session does not exist or has expired.
func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Identity, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &domain.Identity{ID: cached.ID, Name: cached.Name}, nil
}

// Delete revokes a session token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

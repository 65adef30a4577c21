package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/juku001/SellazEngine/internal/shared"
)

// ErrTokenInvalid indicates a missing, expired or revoked bearer token.
var ErrTokenInvalid = errors.New("auth: token invalid")

// TokenStore keeps bearer tokens in Redis, mapping each token to the
// principal it authenticates.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Issue creates a fresh token for the principal.
func (s *TokenStore) Issue(ctx context.Context, p shared.Principal) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.key(token), payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the principal a token authenticates, refreshing its TTL.
func (s *TokenStore) Resolve(ctx context.Context, token string) (shared.Principal, error) {
	if token == "" {
		return shared.Principal{}, ErrTokenInvalid
	}
	payload, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.Principal{}, ErrTokenInvalid
		}
		return shared.Principal{}, err
	}
	var p shared.Principal
	if err := json.Unmarshal(payload, &p); err != nil {
		return shared.Principal{}, ErrTokenInvalid
	}
	_ = s.client.Expire(ctx, s.key(token), s.ttl).Err()
	return p, nil
}

// Revoke deletes a token.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// TTL exposes the configured token lifetime.
func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}

func (s *TokenStore) key(token string) string {
	return "token:" + token
}

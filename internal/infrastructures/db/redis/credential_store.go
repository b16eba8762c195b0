package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	derr "github.com/riverplate/ferryfare-provider/internal/domain/errors"
	"github.com/riverplate/ferryfare-provider/internal/domain/models"
	"github.com/riverplate/ferryfare-provider/internal/domain/ports"
	"github.com/redis/go-redis/v9"
)

type CredentialStore struct {
	redis *redis.Client
}

func NewCredentialStore(redisClient *redis.Client) *CredentialStore {
	return &CredentialStore{redis: redisClient}
}

func (s *CredentialStore) Get(ctx context.Context, market models.MarketCode) (ports.Credential, error) {
	data, err := s.redis.Get(ctx, credentialKey(market)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.Credential{}, derr.ErrCredentialNotFound
		}
		return ports.Credential{}, fmt.Errorf("redis get credential: %w", err)
	}

	var cred ports.Credential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return ports.Credential{}, fmt.Errorf("unmarshal cached credential: %w", err)
	}

	return cred, nil
}

func (s *CredentialStore) Put(ctx context.Context, market models.MarketCode, cred ports.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential for cache: %w", err)
	}

	// The key evicts itself when the credential does; a credential without
	// an expiry stays until superseded.
	var ttl time.Duration
	if !cred.ExpiresAt.IsZero() {
		ttl = time.Until(cred.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}

	if err := s.redis.Set(ctx, credentialKey(market), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}

	return nil
}

func credentialKey(market models.MarketCode) string {
	return fmt.Sprintf("credential:%s", market)
}

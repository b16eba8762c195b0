package redis

import (
	"context"
	"errors"
	"fmt"

	derr "github.com/riverplate/ferryfare-provider/internal/domain/errors"
	"github.com/riverplate/ferryfare-provider/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps the per-market browser cookie snapshot. It is an
// acceleration cache for future credential captures, not required state.
type SessionStore struct {
	redis *redis.Client
}

func NewSessionStore(redisClient *redis.Client) *SessionStore {
	return &SessionStore{redis: redisClient}
}

func (s *SessionStore) Load(ctx context.Context, market models.MarketCode) ([]byte, error) {
	data, err := s.redis.Get(ctx, sessionKey(market)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, derr.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get session snapshot: %w", err)
	}
	return data, nil
}

func (s *SessionStore) Save(ctx context.Context, market models.MarketCode, snapshot []byte) error {
	if len(snapshot) == 0 {
		return nil
	}
	if err := s.redis.Set(ctx, sessionKey(market), snapshot, 0).Err(); err != nil {
		return fmt.Errorf("redis set session snapshot: %w", err)
	}
	return nil
}

func sessionKey(market models.MarketCode) string {
	return fmt.Sprintf("session:%s", market)
}

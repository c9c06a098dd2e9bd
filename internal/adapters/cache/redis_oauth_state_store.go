package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/copperline/accounts-service/internal/ports"
)

const oauthStateKeyPrefix = "accounts:oauth:state:"

// RedisOAuthStateStore keeps authorize/callback state in Redis with a TTL, so
// abandoned flows clean themselves up and replayed states miss.
type RedisOAuthStateStore struct {
	client *redis.Client
}

func NewRedisOAuthStateStore(client *redis.Client) *RedisOAuthStateStore {
	return &RedisOAuthStateStore{client: client}
}

func (s *RedisOAuthStateStore) Put(ctx context.Context, state string, value ports.OAuthAuthState, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, oauthStateKeyPrefix+state, raw, ttl).Err()
}

func (s *RedisOAuthStateStore) Get(ctx context.Context, state string) (*ports.OAuthAuthState, error) {
	raw, err := s.client.Get(ctx, oauthStateKeyPrefix+state).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var value ports.OAuthAuthState
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return &value, nil
}

func (s *RedisOAuthStateStore) Delete(ctx context.Context, state string) error {
	return s.client.Del(ctx, oauthStateKeyPrefix+state).Err()
}

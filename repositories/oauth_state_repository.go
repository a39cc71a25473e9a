package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisOAuthStateRepository struct {
	redis *redis.Client
}

func NewRedisOAuthStateRepository(redisClient *redis.Client) *RedisOAuthStateRepository {
	return &RedisOAuthStateRepository{redis: redisClient}
}

func oauthStateKey(state string) string {
	return fmt.Sprintf("oauth:state:%s", state)
}

func (r *RedisOAuthStateRepository) Save(ctx context.Context, state string, provider string, ttl time.Duration) error {
	return r.redis.Set(ctx, oauthStateKey(state), provider, ttl).Err()
}

// Consume returns the provider the state was issued for and deletes the key,
// so a state can be redeemed at most once.
func (r *RedisOAuthStateRepository) Consume(ctx context.Context, state string) (string, error) {
	return r.redis.GetDel(ctx, oauthStateKey(state)).Result()
}

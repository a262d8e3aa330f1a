package recovery

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	redisclient "github.com/ytvault/archive-server-go/internal/redis"
)

// Storage is the durable backend for the session snapshot.
type Storage interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, data []byte) error
	// Load returns the stored snapshot, or nil when none exists.
	Load(ctx context.Context) ([]byte, error)
}

// RedisStorage keeps the snapshot under a fixed namespace key.
type RedisStorage struct {
	client *redisclient.Client
}

func NewRedisStorage(client *redisclient.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (r *RedisStorage) Save(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, redisclient.SessionsKey, data, 0).Err()
}

func (r *RedisStorage) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, redisclient.SessionsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/classbook-backend/internal/model"
)

// RedisStore keeps the workbook under a single string key.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Load(ctx context.Context) (*model.AppState, bool, error) {
	b, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, failure("redis get", err)
	}
	st, err := decode(b)
	if err != nil {
		return nil, false, err
	}
	return st, true, nil
}

func (r *RedisStore) Save(ctx context.Context, st *model.AppState) error {
	b, err := encode(st)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key, b, 0).Err(); err != nil {
		return failure("redis set", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "storefront:"

// RedisKVStore は redis に保存する。キーには prefix を付ける。
type RedisKVStore struct {
	client *redis.Client
	prefix string
}

// DI
func NewRedisKVStore(client *redis.Client, prefix string) *RedisKVStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisKVStore{client: client, prefix: prefix}
}

func (s *RedisKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

package kv

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implementa Store sobre um client Redis, isolando cada
// namespace lógico por prefixo de chave.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore cria um Store no namespace indicado (ex.: "cred", "cartao").
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, prefix: namespace + ":"}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *RedisStore) PutTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *RedisStore) List(ctx context.Context, cursor string, limit int) ([]string, string, error) {
	var start uint64
	if cursor != "" {
		parsed, err := strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return nil, "", errors.New("cursor inválido")
		}
		start = parsed
	}

	if limit <= 0 {
		limit = 100
	}

	keys, next, err := s.client.Scan(ctx, start, s.prefix+"*", int64(limit)).Result()
	if err != nil {
		return nil, "", err
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, s.prefix))
	}

	if next == 0 {
		return out, "", nil
	}
	return out, strconv.FormatUint(next, 10), nil
}

package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps resolved translations in Redis
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

const pingTimeout = 5 * time.Second

// NewRedisStore creates a new RedisStore with connection pooling.
// It fails if the server does not answer a ping.
func NewRedisStore(connStr string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	goapp.Log.Info().Str("redis", opt.Addr).Int("db", opt.DB).Str("ttl", ttl.String()).Send()
	res := newRedisStore(redis.NewClient(opt), ttl)
	ctx, cf := context.WithTimeout(context.Background(), pingTimeout)
	defer cf()
	if err := res.Ping(ctx); err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}
	return res, nil
}

func newRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) keyTranslation(lang, word string) string {
	return fmt.Sprintf("tr:%s", key(lang, word))
}

// Get implements translate.Store
func (r *RedisStore) Get(ctx context.Context, lang, word string) (string, bool, error) {
	res, err := r.client.Get(ctx, r.keyTranslation(lang, word)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get translation: %w", err)
	}
	return res, true, nil
}

// Save implements translate.Store
func (r *RedisStore) Save(ctx context.Context, lang, word, text string) error {
	goapp.Log.Trace().Str("lang", lang).Str("word", word).Msg("Save translation")
	return r.client.Set(ctx, r.keyTranslation(lang, word), text, r.ttl).Err()
}

// Ping checks the connection
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

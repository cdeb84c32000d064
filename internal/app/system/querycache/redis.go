package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is a Cache shared by every ContactHub instance.
type Redis struct {
	c         *redis.Client
	ttl       time.Duration
	namespace string
}

// NewRedis wraps c. Keys are stored under namespace, which may be empty.
func NewRedis(c *redis.Client, ttl time.Duration, namespace string) *Redis {
	return &Redis{c: c, ttl: ttl, namespace: namespace}
}

func (r *Redis) key(k string) string { return r.namespace + k }

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.c.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.c.Set(ctx, r.key(key), data, r.ttl).Err()
}

// Invalidate scans for each prefix and deletes the matches.
func (r *Redis) Invalidate(ctx context.Context, prefixes ...string) error {
	for _, p := range prefixes {
		keys, err := r.scan(ctx, globEscape(r.key(p))+"*")
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			continue
		}
		if err := r.c.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Redis) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		k, next, err := r.c.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// globEscape quotes the SCAN MATCH metacharacters in s.
func globEscape(s string) string { return globReplacer.Replace(s) }

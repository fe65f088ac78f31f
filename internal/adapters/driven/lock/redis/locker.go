// Package redis provides a cross-process ingestion lock on Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/bioorbit/internal/core/ports/driven"
)

// Defaults for the lock.
const (
	DefaultKey = "bioorbit:ingest:lock"
	DefaultTTL = 30 * time.Minute
)

// releaseScript deletes the key only while it still holds our token.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// Client is the subset of the go-redis client the lock needs.
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *goredis.Cmd
}

// Config configures the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
}

// Locker is a SET NX PX lock with token-checked release.
type Locker struct {
	client Client
	key    string
	ttl    time.Duration
	closer func() error
}

var _ driven.Locker = (*Locker)(nil)

// Dial connects to Redis and pings it.
func Dial(ctx context.Context, cfg Config) (*Locker, error) {
	c := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	l := New(c, cfg.Key, cfg.TTL)
	l.closer = c.Close
	return l, nil
}

// New wraps an existing client. Empty key and zero ttl take the defaults.
func New(client Client, key string, ttl time.Duration) *Locker {
	if key == "" {
		key = DefaultKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Locker{client: client, key: key, ttl: ttl}
}

// TryLock acquires the lock without waiting.
func (l *Locker) TryLock(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring %s: %w", l.key, err)
	}
	if !ok {
		return nil, driven.ErrLockHeld
	}

	release := func(ctx context.Context) error {
		err := l.client.Eval(ctx, releaseScript, []string{l.key}, token).Err()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("releasing %s: %w", l.key, err)
		}
		return nil
	}
	return release, nil
}

// Close closes the connection opened by Dial.
func (l *Locker) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}

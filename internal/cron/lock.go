package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lock keeps two sweepers from working the ledger at once.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock is a SETNX lock with an owner token. The TTL bounds how long a crashed
// sweeper can hold it.
type RedisLock struct {
	store lockStore
	key   string
	ttl   time.Duration
	owner string
}

func NewRedisLock(store lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		return nil, errors.New("lock ttl must be positive")
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release deletes the key only while this process still owns it.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	current, err := l.store.Get(ctx, l.key)
	switch {
	case errors.Is(err, redis.Nil):
		l.owner = ""
		return nil
	case err != nil:
		return fmt.Errorf("read %s owner: %w", l.key, err)
	}
	if current == l.owner {
		if err := l.store.Del(ctx, l.key); err != nil {
			return fmt.Errorf("release %s: %w", l.key, err)
		}
	}
	l.owner = ""
	return nil
}

// NoopLock always grants the lock. It is used when Redis is not configured and only one
// sweeper runs.
type NoopLock struct{}

func (NoopLock) Acquire(context.Context) (bool, error) { return true, nil }
func (NoopLock) Release(context.Context) error         { return nil }

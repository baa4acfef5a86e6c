package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisLease is a best-effort single-holder lock: SET NX with a TTL, refreshed
// by the owner on every acquire. Expiry hands the lease to the next caller if
// the holder dies without releasing.
type RedisLease struct {
	rdb   *goredis.Client
	key   string
	owner string
	ttl   time.Duration
}

func NewRedisLease(rdb *goredis.Client, key, owner string, ttl time.Duration) *RedisLease {
	return &RedisLease{
		rdb:   rdb,
		key:   key,
		owner: owner,
		ttl:   ttl,
	}
}

func (l *RedisLease) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, l.owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set lease key: %w", err)
	}

	if ok {
		return true, nil
	}

	holder, err := l.rdb.Get(ctx, l.key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			// Expired between SETNX and GET. Next tick will grab it.
			return false, nil
		}

		return false, fmt.Errorf("failed to read lease key: %w", err)
	}

	if holder != l.owner {
		return false, nil
	}

	if err := l.rdb.Expire(ctx, l.key, l.ttl).Err(); err != nil {
		return false, fmt.Errorf("failed to refresh lease: %w", err)
	}

	return true, nil
}

func (l *RedisLease) Release(ctx context.Context) error {
	holder, err := l.rdb.Get(ctx, l.key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to read lease key: %w", err)
	}

	if holder != l.owner {
		return nil
	}

	if err := l.rdb.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("failed to delete lease key: %w", err)
	}

	return nil
}

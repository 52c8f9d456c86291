package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultTTL     = 30 * time.Second
	retryInterval  = 50 * time.Millisecond
	maxRetryCount  = 40
	redisKeyPrefix = "lock:"
)

// Redis layers a bsm/redislock lock over a Local one. The Redis half is best-effort:
// when Redis is unreachable or the lock cannot be obtained in time the caller
// proceeds under the local lock and the store's own transaction lock.
type Redis struct {
	local  *Local
	client *redislock.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis wraps an existing go-redis client.
func NewRedis(client redis.UniversalClient, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{
		local:  NewLocal(),
		client: redislock.New(client),
		ttl:    defaultTTL,
		logger: logger,
	}
}

// Connect dials addr and verifies the connection with PING.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 20,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

// Lock takes the local lock, then tries the distributed one.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	unlockLocal, err := r.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}

	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryInterval), maxRetryCount),
	}
	lk, err := r.client.Obtain(ctx, redisKeyPrefix+key, r.ttl, opts)
	switch {
	case errors.Is(err, redislock.ErrNotObtained):
		r.logger.Warn("could not obtain redis lock; proceeding without redis lock", zap.String("key", key))
		lk = nil
	case err != nil:
		r.logger.Warn("error obtaining redis lock; proceeding without redis lock", zap.String("key", key), zap.Error(err))
		lk = nil
	}

	return func() {
		if lk != nil {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if releaseErr := lk.Release(releaseCtx); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
				r.logger.Warn("failed to release redis lock", zap.String("key", key), zap.Error(releaseErr))
			}
			lk = nil
		}
		unlockLocal()
	}, nil
}
